package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maplewood/library/internal/config"
	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/database/members"
	"github.com/maplewood/library/internal/entities"
)

// CreateAdminCommand registers a member with login credentials so the
// session-protected admin endpoints can be used.
type CreateAdminCommand struct {
	Name         string
	Email        string
	Password     string
	DatabasePath string
	BcryptCost   int
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Name, "name", "", "Display name for the admin account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Login email (required)")
	fs.StringVar(&cmd.Password, "password", "", "Login password (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 0, "bcrypt cost for password hashing (0 = library default)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -name <name> -email <email> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a member account with a password for the admin dashboard login.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Name == "" || cmd.Email == "" || cmd.Password == "" {
		return fmt.Errorf("flags -name, -email and -password are all required")
	}
	if len(cmd.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(database.Options{DSN: absDBPath})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := members.NewRepository(db.DB, cmd.BcryptCost)

	member := &entities.Member{
		Name:           cmd.Name,
		Email:          cmd.Email,
		MembershipType: entities.MembershipTypePremium,
	}

	id, err := repo.Register(member, cmd.Password)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return fmt.Errorf("a member with email %s already exists", cmd.Email)
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	fmt.Printf("Admin account created (id %d, email %s)\n", id, cmd.Email)
	return nil
}
