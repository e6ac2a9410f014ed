package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maplewood/library/internal/config"
	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/database/books"
	"github.com/maplewood/library/internal/database/loans"
	"github.com/maplewood/library/internal/database/members"
	"github.com/maplewood/library/internal/entities"
)

// SeedCommand populates the database with a small sample catalog, a few
// members and some loans so the dashboard has something to show.
type SeedCommand struct {
	DatabasePath string
	Verbose      bool
}

func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file to seed")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Insert sample members, books and loans into the database.\n")
		fmt.Fprintf(os.Stderr, "Records that already exist (matched by email or ISBN) are skipped,\n")
		fmt.Fprintf(os.Stderr, "so the command is safe to run more than once.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

type seedLoan struct {
	isbn       string
	email      string
	borrowedAt time.Time
	dueAt      time.Time
	returned   bool
	returnedAt time.Time
	fine       float64
}

func (cmd *SeedCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("Seeding database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(database.Options{DSN: cmd.DatabasePath})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	memberRepo := members.NewRepository(db.DB, 0)
	bookRepo := books.NewRepository(db.DB)
	loanRepo := loans.NewRepository(db.DB)

	now := time.Now()

	sampleMembers := []entities.Member{
		{Name: "John Doe", Phone: "(555) 123-4567", Email: "john.doe@email.com", Address: "123 Main Street, Springfield, IL 62701", MembershipType: entities.MembershipTypeStandard},
		{Name: "Jane Smith", Phone: "(555) 234-5678", Email: "jane.smith@email.com", Address: "456 Oak Avenue, Springfield, IL 62702", MembershipType: entities.MembershipTypePremium},
		{Name: "Robert Johnson", Phone: "(555) 345-6789", Email: "robert.johnson@email.com", Address: "789 Pine Road, Springfield, IL 62703", MembershipType: entities.MembershipTypeScholar},
		{Name: "Emily Davis", Phone: "(555) 456-7890", Email: "emily.davis@email.com", Address: "321 Elm Street, Springfield, IL 62704", MembershipType: entities.MembershipTypeStandard},
		{Name: "Michael Wilson", Phone: "(555) 567-8901", Email: "michael.wilson@email.com", Address: "654 Maple Drive, Springfield, IL 62705", MembershipType: entities.MembershipTypePremium},
	}

	var createdMembers int
	for i := range sampleMembers {
		m := sampleMembers[i]
		if _, err := memberRepo.Create(&m); err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				if cmd.Verbose {
					fmt.Printf("  member %s already exists, skipping\n", m.Email)
				}
				continue
			}
			return fmt.Errorf("failed to create member %q: %w", m.Name, err)
		}
		createdMembers++
	}

	sampleBooks := []entities.Book{
		{ISBN: "9780141439518", Title: "Pride and Prejudice", Author: "Jane Austen", Publisher: "Penguin Classics", Category: "Fiction", PublicationYear: 1813, CopiesAvailable: 3, TotalCopies: 3},
		{ISBN: "9780451524935", Title: "1984", Author: "George Orwell", Publisher: "Signet Classic", Category: "Fiction", PublicationYear: 1949, CopiesAvailable: 2, TotalCopies: 2},
		{ISBN: "9780547928227", Title: "The Hobbit", Author: "J.R.R. Tolkien", Publisher: "Houghton Mifflin", Category: "Fantasy", PublicationYear: 1937, CopiesAvailable: 4, TotalCopies: 4},
		{ISBN: "9780743273565", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald", Publisher: "Scribner", Category: "Fiction", PublicationYear: 1925, CopiesAvailable: 2, TotalCopies: 2},
		{ISBN: "9780061120084", Title: "To Kill a Mockingbird", Author: "Harper Lee", Publisher: "Harper Perennial", Category: "Fiction", PublicationYear: 1960, CopiesAvailable: 3, TotalCopies: 3},
		{ISBN: "9780307474278", Title: "The Da Vinci Code", Author: "Dan Brown", Publisher: "Anchor", Category: "Mystery", PublicationYear: 2003, CopiesAvailable: 2, TotalCopies: 2},
		{ISBN: "9780590353427", Title: "Harry Potter and the Sorcerer's Stone", Author: "J.K. Rowling", Publisher: "Scholastic", Category: "Fantasy", PublicationYear: 1997, CopiesAvailable: 5, TotalCopies: 5},
		{ISBN: "9781451673319", Title: "Fahrenheit 451", Author: "Ray Bradbury", Publisher: "Simon & Schuster", Category: "Science Fiction", PublicationYear: 1953, CopiesAvailable: 2, TotalCopies: 2},
		{ISBN: "9780062315007", Title: "The Alchemist", Author: "Paulo Coelho", Publisher: "HarperOne", Category: "Fiction", PublicationYear: 1988, CopiesAvailable: 3, TotalCopies: 3},
		{ISBN: "9780141187761", Title: "Brave New World", Author: "Aldous Huxley", Publisher: "Penguin Books", Category: "Science Fiction", PublicationYear: 1932, CopiesAvailable: 2, TotalCopies: 2},
	}

	var createdBooks int
	for i := range sampleBooks {
		b := sampleBooks[i]
		if _, err := bookRepo.Create(&b); err != nil {
			if errors.Is(err, database.ErrDuplicateISBN) {
				if cmd.Verbose {
					fmt.Printf("  book %s already exists, skipping\n", b.ISBN)
				}
				continue
			}
			return fmt.Errorf("failed to create book %q: %w", b.Title, err)
		}
		createdBooks++
	}

	// Loans go through the borrow workflow so availability stays in sync.
	sampleLoans := []seedLoan{
		{isbn: "9780141439518", email: "john.doe@email.com", borrowedAt: now, dueAt: now.AddDate(0, 0, 14)},
		{isbn: "9780451524935", email: "jane.smith@email.com", borrowedAt: now, dueAt: now.AddDate(0, 0, 14)},
		{isbn: "9780547928227", email: "robert.johnson@email.com", borrowedAt: now, dueAt: now.AddDate(0, 0, 14)},
		{isbn: "9780743273565", email: "emily.davis@email.com", borrowedAt: now.AddDate(0, 0, -30), dueAt: now.AddDate(0, 0, -16), returned: true, returnedAt: now.AddDate(0, 0, -17)},
		{isbn: "9780590353427", email: "michael.wilson@email.com", borrowedAt: now.AddDate(0, 0, -36), dueAt: now.AddDate(0, 0, -22), fine: 22.00},
	}

	var createdLoans int
	if createdBooks > 0 || createdMembers > 0 {
		for _, sl := range sampleLoans {
			book, err := bookRepo.FindByISBN(sl.isbn)
			if err != nil {
				return fmt.Errorf("failed to look up book %s: %w", sl.isbn, err)
			}
			member, err := memberRepo.FindByEmail(sl.email)
			if err != nil {
				return fmt.Errorf("failed to look up member %s: %w", sl.email, err)
			}

			loanID, err := loanRepo.Borrow(book.ID, member.ID, sl.borrowedAt, sl.dueAt)
			if err != nil {
				return fmt.Errorf("failed to create loan for %q: %w", book.Title, err)
			}
			if sl.returned {
				if err := loanRepo.Return(loanID, sl.returnedAt); err != nil {
					return fmt.Errorf("failed to return loan for %q: %w", book.Title, err)
				}
			}
			if sl.fine > 0 {
				if err := loanRepo.UpdateFine(loanID, sl.fine); err != nil {
					return fmt.Errorf("failed to set fine for %q: %w", book.Title, err)
				}
			}
			createdLoans++
		}
	} else if cmd.Verbose {
		fmt.Println("  database already seeded, skipping loans")
	}

	fmt.Println("\n=== Seed Summary ===")
	fmt.Printf("Members created: %d\n", createdMembers)
	fmt.Printf("Books created: %d\n", createdBooks)
	fmt.Printf("Loans created: %d\n", createdLoans)

	return nil
}
