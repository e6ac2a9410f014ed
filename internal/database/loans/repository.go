// Package loans provides database operations for book loans, including the
// transactional borrow/return workflow that keeps copies_available in step
// with the loan rows.
package loans

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/entities"
)

// Repository handles loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindAll() ([]entities.BookLoan, error) {
	var loans []entities.BookLoan
	err := r.db.Preload("Book").Preload("Member").
		Order("borrow_date DESC, id DESC").
		Find(&loans).Error
	return loans, err
}

func (r *Repository) FindByID(id uint) (*entities.BookLoan, error) {
	var loan entities.BookLoan
	err := r.db.Preload("Book").Preload("Member").First(&loan, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	return &loan, nil
}

func (r *Repository) FindByMemberID(memberID uint) ([]entities.BookLoan, error) {
	var loans []entities.BookLoan
	err := r.db.Preload("Book").
		Where("member_id = ?", memberID).
		Order("borrow_date DESC, id DESC").
		Find(&loans).Error
	return loans, err
}

// FindOverdue returns loans still out past their due date. Overdue is
// evaluated at read time; the stored status stays Borrowed.
func (r *Repository) FindOverdue(now time.Time) ([]entities.BookLoan, error) {
	var loans []entities.BookLoan
	err := r.db.Preload("Book").Preload("Member").
		Where("status = ? AND due_date < ?", entities.LoanStatusBorrowed, today(now)).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// Borrow issues a book to a member as one atomic unit: either the loan row
// exists and the book's availability is one lower, or nothing changed.
//
// The availability check and decrement are a single guarded UPDATE, so
// concurrent borrows of the last copy race on the row write and exactly one
// sees RowsAffected == 1; copies_available can never go negative.
func (r *Repository) Borrow(bookID, memberID uint, borrowDate, dueDate time.Time) (uint, error) {
	var loanID uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("book %d: %w", bookID, database.ErrNotFound)
			}
			return err
		}

		result := tx.Model(&entities.Book{}).
			Where("id = ? AND copies_available > 0", bookID).
			Update("copies_available", gorm.Expr("copies_available - 1"))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrBookUnavailable
		}

		loan := entities.BookLoan{
			BookID:     bookID,
			MemberID:   memberID,
			BorrowDate: borrowDate,
			DueDate:    dueDate,
			Status:     entities.LoanStatusBorrowed,
		}
		if err := tx.Create(&loan).Error; err != nil {
			return fmt.Errorf("failed to create loan: %w", err)
		}
		loanID = loan.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loanID, nil
}

// Return marks a loan returned and restores the book's availability, as one
// atomic unit. The loan update only matches Borrowed rows, so returning an
// already-returned loan (or an unknown id) reports ErrNotFound and changes
// nothing.
func (r *Repository) Return(loanID uint, now time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		returnDate := today(now)
		result := tx.Model(&entities.BookLoan{}).
			Where("id = ? AND status = ?", loanID, entities.LoanStatusBorrowed).
			Updates(map[string]any{
				"status":      entities.LoanStatusReturned,
				"return_date": returnDate,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return database.ErrNotFound
		}

		var loan entities.BookLoan
		if err := tx.First(&loan, loanID).Error; err != nil {
			return err
		}

		// total_copies may have been lowered while the loan was out; the
		// guard caps the increment so availability never exceeds the
		// total and the copies-range CHECK holds.
		return tx.Model(&entities.Book{}).
			Where("id = ? AND copies_available < total_copies", loan.BookID).
			Update("copies_available", gorm.Expr("copies_available + 1")).Error
	})
}

// UpdateFine sets the fine amount on a loan. Negative amounts are rejected
// before the repository is reached, but guard anyway.
func (r *Repository) UpdateFine(loanID uint, amount float64) error {
	if amount < 0 {
		return fmt.Errorf("fine amount must not be negative")
	}
	result := r.db.Model(&entities.BookLoan{}).
		Where("id = ?", loanID).
		Update("fine_amount", amount)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// AccrueFines recomputes fines for every overdue loan as days-overdue times
// the per-day rate. fine_amount only ever grows here, so rerunning the job
// is safe and an explicitly set higher fine is preserved.
func (r *Repository) AccrueFines(rate float64, now time.Time) (int64, error) {
	if rate <= 0 {
		return 0, nil
	}

	overdue, err := r.FindOverdue(now)
	if err != nil {
		return 0, err
	}

	var updated int64
	err = r.db.Transaction(func(tx *gorm.DB) error {
		cutoff := today(now)
		for _, loan := range overdue {
			// Round to whole days so a DST shift cannot shave a day off.
			days := int(math.Round(cutoff.Sub(today(loan.DueDate)).Hours() / 24))
			if days <= 0 {
				continue
			}
			fine := float64(days) * rate
			result := tx.Model(&entities.BookLoan{}).
				Where("id = ? AND fine_amount < ?", loan.ID, fine).
				Update("fine_amount", fine)
			if result.Error != nil {
				return result.Error
			}
			updated += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

func today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
