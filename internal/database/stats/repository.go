// Package stats computes the dashboard aggregates. Everything is read
// straight from the current table contents on each call; there is no cached
// or incrementally maintained state.
package stats

import (
	"time"

	"gorm.io/gorm"

	"github.com/maplewood/library/internal/entities"
)

// Snapshot is the dashboard payload. Field names follow the admin
// frontend's contract.
type Snapshot struct {
	TotalMembers       int64 `json:"totalMembers"`
	NewMembersThisWeek int64 `json:"newMembersThisWeek"`
	TotalBooks         int64 `json:"totalBooks"`
	CategoriesCount    int64 `json:"categoriesCount"`
	ActiveLoans        int64 `json:"activeLoans"`
	OverdueLoans       int64 `json:"overdueLoans"`
	AvailableBooks     int64 `json:"availableBooks"`
	ReturnedCount      int64 `json:"returnedCount"`
	BorrowedCount      int64 `json:"borrowedCount"`
	OverdueCount       int64 `json:"overdueCount"`
}

// Repository handles dashboard aggregate queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Snapshot gathers the dashboard counters. Empty tables produce zeros, never
// an error. Overdue figures use the derived read-time predicate
// (status = Borrowed and due_date < today).
func (r *Repository) Snapshot(now time.Time) (*Snapshot, error) {
	s := &Snapshot{}
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := cutoff.AddDate(0, 0, -7)

	err := r.db.Model(&entities.Member{}).
		Where("membership_status = ?", entities.MembershipStatusActive).
		Count(&s.TotalMembers).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&entities.Member{}).
		Where("membership_date >= ?", weekAgo).
		Count(&s.NewMembersThisWeek).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.Model(&entities.Book{}).Count(&s.TotalBooks).Error; err != nil {
		return nil, err
	}
	err = r.db.Model(&entities.Book{}).
		Distinct("category").Count(&s.CategoriesCount).Error
	if err != nil {
		return nil, err
	}

	var available struct{ Total int64 }
	err = r.db.Model(&entities.Book{}).
		Select("COALESCE(SUM(copies_available), 0) AS total").
		Scan(&available).Error
	if err != nil {
		return nil, err
	}
	s.AvailableBooks = available.Total

	// Every loan still out counts as active; the overdue subset is the
	// derived predicate, so active = borrowed + overdue always holds.
	err = r.db.Model(&entities.BookLoan{}).
		Where("status = ?", entities.LoanStatusBorrowed).
		Count(&s.ActiveLoans).Error
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&entities.BookLoan{}).
		Where("status = ? AND due_date < ?", entities.LoanStatusBorrowed, cutoff).
		Count(&s.OverdueLoans).Error
	if err != nil {
		return nil, err
	}
	s.OverdueCount = s.OverdueLoans
	s.BorrowedCount = s.ActiveLoans - s.OverdueLoans

	err = r.db.Model(&entities.BookLoan{}).
		Where("status = ?", entities.LoanStatusReturned).
		Count(&s.ReturnedCount).Error
	if err != nil {
		return nil, err
	}

	return s, nil
}
