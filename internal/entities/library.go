package entities

import (
	"time"
)

type MembershipType string

const (
	MembershipTypeStandard MembershipType = "Standard"
	MembershipTypePremium  MembershipType = "Premium"
	MembershipTypeScholar  MembershipType = "Scholar"
)

type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "Active"
	MembershipStatusExpired   MembershipStatus = "Expired"
	MembershipStatusSuspended MembershipStatus = "Suspended"
)

// ValidMembershipStatus reports whether s is one of the known member statuses.
func ValidMembershipStatus(s MembershipStatus) bool {
	switch s {
	case MembershipStatusActive, MembershipStatusExpired, MembershipStatusSuspended:
		return true
	}
	return false
}

type LoanStatus string

// Overdue is never written to storage: a loan is overdue when it is still
// Borrowed past its due date. The constant exists for API payloads and the
// derived read-time predicate.
const (
	LoanStatusBorrowed LoanStatus = "Borrowed"
	LoanStatusReturned LoanStatus = "Returned"
	LoanStatusOverdue  LoanStatus = "Overdue"
)

type Member struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	Name             string           `gorm:"size:100;not null;index" json:"name"`
	Email            string           `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone            string           `gorm:"size:20" json:"phone,omitempty"`
	Address          string           `gorm:"type:text" json:"address,omitempty"`
	MembershipType   MembershipType   `gorm:"size:20;default:'Standard'" json:"membership_type"`
	MembershipDate   time.Time        `gorm:"not null" json:"membership_date"`
	MembershipStatus MembershipStatus `gorm:"size:20;default:'Active';index" json:"membership_status"`
	PasswordHash     string           `gorm:"size:100" json:"-"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type Book struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ISBN            string    `gorm:"uniqueIndex;size:13;not null" json:"isbn"`
	Title           string    `gorm:"size:255;not null;index" json:"title"`
	Author          string    `gorm:"size:100;not null;index" json:"author"`
	Publisher       string    `gorm:"size:100" json:"publisher,omitempty"`
	Category        string    `gorm:"size:50;not null" json:"category"`
	PublicationYear int       `json:"publication_year,omitempty"`
	CopiesAvailable int       `gorm:"not null;default:1;check:chk_books_copies_range,copies_available >= 0 AND copies_available <= total_copies" json:"copies_available"`
	TotalCopies     int       `gorm:"not null;default:1" json:"total_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BookLoan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"not null;index" json:"book_id"`
	MemberID   uint       `gorm:"not null;index" json:"member_id"`
	BorrowDate time.Time  `gorm:"not null" json:"borrow_date"`
	DueDate    time.Time  `gorm:"not null;index" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `gorm:"size:20;default:'Borrowed';index" json:"status"`
	FineAmount float64    `gorm:"not null;default:0" json:"fine_amount"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	Book   Book   `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"book,omitempty"`
	Member Member `gorm:"foreignKey:MemberID;constraint:OnDelete:CASCADE" json:"member,omitempty"`
}

// IsOverdue evaluates the read-time overdue predicate against now.
func (l BookLoan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusBorrowed && l.DueDate.Before(truncateToDay(now))
}

// EffectiveStatus returns the status as presented to API clients: Borrowed
// loans past their due date surface as Overdue without a stored transition.
func (l BookLoan) EffectiveStatus(now time.Time) LoanStatus {
	if l.IsOverdue(now) {
		return LoanStatusOverdue
	}
	return l.Status
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
