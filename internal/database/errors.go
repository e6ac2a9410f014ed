package database

import "errors"

// Sentinel errors returned by the repositories. The HTTP layer branches on
// these with errors.Is to pick status codes, so repositories must return
// them unwrapped or wrapped with %w.
var (
	ErrNotFound = errors.New("record not found")

	// Conflict family: business-rule or uniqueness violations (HTTP 400).
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrDuplicateISBN        = errors.New("isbn already registered")
	ErrBookUnavailable      = errors.New("book is not available for loan")
	ErrMemberInactive       = errors.New("member is not active")
	ErrMemberHasActiveLoans = errors.New("member has active loans")
)

// IsConflict reports whether err belongs to the conflict family.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrDuplicateISBN) ||
		errors.Is(err, ErrBookUnavailable) ||
		errors.Is(err, ErrMemberInactive) ||
		errors.Is(err, ErrMemberHasActiveLoans)
}
