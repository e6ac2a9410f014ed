// Package members provides database operations for library members,
// including registration and password verification for the admin login.
package members

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/entities"
)

// Repository handles member database operations.
type Repository struct {
	db         *gorm.DB
	bcryptCost int
}

// NewRepository creates a new members repository. bcryptCost applies to
// password hashing on registration; pass 0 to use the bcrypt default.
func NewRepository(db *gorm.DB, bcryptCost int) *Repository {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Repository{db: db, bcryptCost: bcryptCost}
}

func (r *Repository) FindAll() ([]entities.Member, error) {
	var members []entities.Member
	err := r.db.Order("name ASC").Find(&members).Error
	return members, err
}

func (r *Repository) FindByID(id uint) (*entities.Member, error) {
	var member entities.Member
	if err := r.db.First(&member, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *Repository) FindByEmail(email string) (*entities.Member, error) {
	var member entities.Member
	if err := r.db.Where("email = ?", email).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// Create inserts a new member and returns its id. A duplicate email surfaces
// as database.ErrDuplicateEmail.
func (r *Repository) Create(member *entities.Member) (uint, error) {
	if err := r.checkEmailFree(member.Email, 0); err != nil {
		return 0, err
	}

	if member.MembershipDate.IsZero() {
		member.MembershipDate = time.Now()
	}
	if member.MembershipStatus == "" {
		member.MembershipStatus = entities.MembershipStatusActive
	}
	if member.MembershipType == "" {
		member.MembershipType = entities.MembershipTypeStandard
	}

	if err := r.db.Create(member).Error; err != nil {
		return 0, fmt.Errorf("failed to create member: %w", err)
	}
	return member.ID, nil
}

// Register creates a member with a bcrypt-hashed password. The source system
// stored plaintext passwords; this implementation deliberately does not.
func (r *Repository) Register(member *entities.Member, password string) (uint, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}
	member.PasswordHash = string(hash)
	return r.Create(member)
}

// Authenticate verifies email+password and returns the member when the
// credentials match. Unknown email and wrong password are indistinguishable
// to the caller.
func (r *Repository) Authenticate(email, password string) (*entities.Member, error) {
	member, err := r.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if member.PasswordHash == "" {
		return nil, database.ErrNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)); err != nil {
		return nil, database.ErrNotFound
	}
	return member, nil
}

// Update replaces the editable fields of a member.
func (r *Repository) Update(id uint, member *entities.Member) error {
	if err := r.checkEmailFree(member.Email, id); err != nil {
		return err
	}

	fields := map[string]any{
		"name":    member.Name,
		"phone":   member.Phone,
		"email":   member.Email,
		"address": member.Address,
	}
	if member.MembershipStatus != "" {
		fields["membership_status"] = member.MembershipStatus
	}
	if member.MembershipType != "" {
		fields["membership_type"] = member.MembershipType
	}

	result := r.db.Model(&entities.Member{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the membership status. Transitions are free-form; the
// HTTP layer already validated the enum value.
func (r *Repository) UpdateStatus(id uint, status entities.MembershipStatus) error {
	result := r.db.Model(&entities.Member{}).Where("id = ?", id).
		Update("membership_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a member and cascades their loan history, but refuses while
// any loan is still out.
func (r *Repository) Delete(id uint) error {
	if _, err := r.FindByID(id); err != nil {
		return err
	}

	active, err := r.CountActiveLoans(id)
	if err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w: %d loan(s) outstanding", database.ErrMemberHasActiveLoans, active)
	}

	result := r.db.Delete(&entities.Member{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// CountActiveLoans counts loans the member has not returned. Overdue is a
// derived state of Borrowed, so the stored-status predicate covers both.
func (r *Repository) CountActiveLoans(memberID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.BookLoan{}).
		Where("member_id = ? AND status = ?", memberID, entities.LoanStatusBorrowed).
		Count(&count).Error
	return count, err
}

// Search matches members by name, email or phone (case-insensitive partial
// match).
func (r *Repository) Search(query string) ([]entities.Member, error) {
	var members []entities.Member
	pattern := "%" + query + "%"
	err := r.db.
		Where("LOWER(name) LIKE LOWER(?) OR LOWER(email) LIKE LOWER(?) OR phone LIKE ?",
			pattern, pattern, pattern).
		Order("name ASC").
		Find(&members).Error
	return members, err
}

func (r *Repository) checkEmailFree(email string, selfID uint) error {
	var existing entities.Member
	query := r.db.Where("email = ?", email)
	if selfID > 0 {
		query = query.Where("id <> ?", selfID)
	}
	err := query.First(&existing).Error
	if err == nil {
		return database.ErrDuplicateEmail
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
