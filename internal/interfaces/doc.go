// Package interfaces documents the core abstractions used throughout the application.
//
// # Data Access Interfaces
//
//   - BookStore: catalog management and search (internal/http/books.go)
//   - MemberStore: member management (internal/http/members.go)
//   - LoanStore: borrow/return workflow (internal/http/loans.go)
//   - StatsStore: dashboard aggregates (internal/http/stats.go)
//   - AuthStore: registration and login (internal/http/auth.go)
//
// # Background Task Interfaces
//
//   - FineAccruer: recomputes fines for overdue loans (internal/tasks/accrue_fines.go)
//
// # Adding a New Database Domain
//
// To add a new data domain:
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add a compile-time check in checks.go:
//
//     var _ http.SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than
// runtime. See checks.go.
package interfaces
