package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/maplewood/library/internal/entities"
)

func init() {
	// Types stored in session data must be gob-registered.
	gob.Register(time.Time{})
}

// Session data keys
const (
	SessionKeyMemberID = "member_id"
	SessionKeyEmail    = "email"
	SessionKeyLoginAt  = "login_at"
)

// SessionManager wraps scs.SessionManager with library-specific helpers.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager backed by the
// application database. sqlDB is the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, lifetime time.Duration, secureCookies bool) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = "library_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = secureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession starts a fresh session for a member after the password
// check. The token is renewed to prevent session fixation.
func (sm *SessionManager) CreateSession(r *http.Request, member *entities.Member) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyMemberID, int(member.ID))
	sm.Put(r.Context(), SessionKeyEmail, member.Email)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetMemberID retrieves the logged-in member's id, or 0 when anonymous.
func (sm *SessionManager) GetMemberID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyMemberID))
}

// GetEmail retrieves the logged-in member's email.
func (sm *SessionManager) GetEmail(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyEmail)
}

// IsAuthenticated reports whether the request carries a valid session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetMemberID(r) != 0
}
