package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/entities"
)

// LoanStore defines database operations for loans, including the
// transactional borrow/return workflow.
type LoanStore interface {
	FindAll() ([]entities.BookLoan, error)
	FindByID(id uint) (*entities.BookLoan, error)
	FindByMemberID(memberID uint) ([]entities.BookLoan, error)
	FindOverdue(now time.Time) ([]entities.BookLoan, error)
	Borrow(bookID, memberID uint, borrowDate, dueDate time.Time) (uint, error)
	Return(loanID uint, now time.Time) error
	UpdateFine(loanID uint, amount float64) error
}

type LoansController struct {
	store   LoanStore
	members MemberStore
}

func NewLoansController(store LoanStore, members MemberStore) *LoansController {
	return &LoansController{store: store, members: members}
}

const dateLayout = "2006-01-02"

// loanView flattens a loan with the joined book and member columns the
// admin dashboard renders. Status is the effective read-time status, so
// Borrowed loans past their due date surface as Overdue.
type loanView struct {
	ID         uint                `json:"id"`
	BookID     uint                `json:"book_id"`
	MemberID   uint                `json:"member_id"`
	BorrowDate string              `json:"borrow_date"`
	DueDate    string              `json:"due_date"`
	ReturnDate string              `json:"return_date,omitempty"`
	Status     entities.LoanStatus `json:"status"`
	FineAmount float64             `json:"fine_amount"`
	BookTitle  string              `json:"book_title,omitempty"`
	ISBN       string              `json:"isbn,omitempty"`
	MemberName string              `json:"member_name,omitempty"`
}

func newLoanView(loan entities.BookLoan, now time.Time) loanView {
	view := loanView{
		ID:         loan.ID,
		BookID:     loan.BookID,
		MemberID:   loan.MemberID,
		BorrowDate: loan.BorrowDate.Format(dateLayout),
		DueDate:    loan.DueDate.Format(dateLayout),
		Status:     loan.EffectiveStatus(now),
		FineAmount: loan.FineAmount,
		BookTitle:  loan.Book.Title,
		ISBN:       loan.Book.ISBN,
		MemberName: loan.Member.Name,
	}
	if loan.ReturnDate != nil {
		view.ReturnDate = loan.ReturnDate.Format(dateLayout)
	}
	return view
}

func newLoanViews(loans []entities.BookLoan, now time.Time) []loanView {
	views := make([]loanView, 0, len(loans))
	for _, loan := range loans {
		views = append(views, newLoanView(loan, now))
	}
	return views
}

// GetAllLoans returns every loan with book and member details.
// GET /api/loans
func (lc *LoansController) GetAllLoans(c *gin.Context) {
	loans, err := lc.store.FindAll()
	if err != nil {
		respondInternalError(c, err, "get all loans")
		return
	}
	c.JSON(http.StatusOK, newLoanViews(loans, time.Now()))
}

// GetOverdueLoans returns loans still out past their due date.
// GET /api/loans/overdue
func (lc *LoansController) GetOverdueLoans(c *gin.Context) {
	loans, err := lc.store.FindOverdue(time.Now())
	if err != nil {
		respondInternalError(c, err, "get overdue loans")
		return
	}
	c.JSON(http.StatusOK, newLoanViews(loans, time.Now()))
}

// GetLoansByMember returns a member's loan history.
// GET /api/loans/member/:memberId
func (lc *LoansController) GetLoansByMember(c *gin.Context) {
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	loans, err := lc.store.FindByMemberID(memberID)
	if err != nil {
		respondInternalError(c, err, "get loans by member")
		return
	}
	c.JSON(http.StatusOK, newLoanViews(loans, time.Now()))
}

// GetLoan returns a single loan.
// GET /api/loans/:id
func (lc *LoansController) GetLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := lc.store.FindByID(id)
	if err != nil {
		respondRepositoryError(c, err, "Loan", "get loan")
		return
	}
	c.JSON(http.StatusOK, newLoanView(*loan, time.Now()))
}

// CreateLoan issues a book to a member. The availability check and the
// decrement happen atomically in the repository; this handler only
// validates the request shape and the member's standing.
// POST /api/loans
func (lc *LoansController) CreateLoan(c *gin.Context) {
	var req struct {
		BookID     uint   `json:"book_id"`
		MemberID   uint   `json:"member_id"`
		BorrowDate string `json:"borrow_date"`
		DueDate    string `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.BookID == 0 || req.MemberID == 0 || req.BorrowDate == "" || req.DueDate == "" {
		respondBadRequest(c, "Missing required fields")
		return
	}

	borrowDate, err := time.Parse(dateLayout, req.BorrowDate)
	if err != nil {
		respondBadRequest(c, "Invalid borrow_date, expected YYYY-MM-DD")
		return
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		respondBadRequest(c, "Invalid due_date, expected YYYY-MM-DD")
		return
	}

	member, err := lc.members.FindByID(req.MemberID)
	if err != nil {
		respondRepositoryError(c, err, "Member", "create loan")
		return
	}
	if member.MembershipStatus != entities.MembershipStatusActive {
		respondBadRequest(c, "Member is not active")
		return
	}

	loanID, err := lc.store.Borrow(req.BookID, req.MemberID, borrowDate, dueDate)
	if err != nil {
		respondRepositoryError(c, err, "Book", "create loan")
		return
	}
	respondCreated(c, loanID, "Loan created successfully")
}

// ReturnLoan marks a loan returned and restores the book's availability.
// Returning an already-returned loan reports 404.
// POST /api/loans/:id/return
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.store.Return(id, time.Now()); err != nil {
		respondRepositoryError(c, err, "Loan", "return loan")
		return
	}
	respondMessage(c, "Book returned successfully")
}

// UpdateFine sets the fine amount on a loan.
// PATCH /api/loans/:id/fine
func (lc *LoansController) UpdateFine(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Amount *float64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount == nil || *req.Amount < 0 {
		respondBadRequest(c, "Invalid fine amount")
		return
	}

	if err := lc.store.UpdateFine(id, *req.Amount); err != nil {
		respondRepositoryError(c, err, "Loan", "update fine")
		return
	}
	respondMessage(c, "Fine amount updated successfully")
}
