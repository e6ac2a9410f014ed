package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/maplewood/library/internal/database/books"
	"github.com/maplewood/library/internal/database/loans"
	"github.com/maplewood/library/internal/database/members"
	"github.com/maplewood/library/internal/database/stats"
	"github.com/maplewood/library/internal/http"
	"github.com/maplewood/library/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// BookStore implementations
var _ http.BookStore = (*books.Repository)(nil)

// MemberStore implementations
var _ http.MemberStore = (*members.Repository)(nil)

// LoanStore implementations
var _ http.LoanStore = (*loans.Repository)(nil)

// StatsStore implementations
var _ http.StatsStore = (*stats.Repository)(nil)

// AuthStore implementations
var _ http.AuthStore = (*members.Repository)(nil)

// =============================================================================
// Background Tasks
// =============================================================================

// FineAccruer implementations
var _ tasks.FineAccruer = (*loans.Repository)(nil)
