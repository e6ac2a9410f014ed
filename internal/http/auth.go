package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/auth"
	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/entities"
)

// AuthStore defines the member operations behind login and registration.
// Passwords are bcrypt-hashed by the repository; plaintext never reaches
// storage.
type AuthStore interface {
	Register(member *entities.Member, password string) (uint, error)
	Authenticate(email, password string) (*entities.Member, error)
}

type AuthController struct {
	store    AuthStore
	sessions *auth.SessionManager
}

// NewAuthController creates the auth controller. sessions may be nil, in
// which case login still validates credentials but no cookie is issued.
func NewAuthController(store AuthStore, sessions *auth.SessionManager) *AuthController {
	return &AuthController{store: store, sessions: sessions}
}

// Register creates a member account with a password.
// POST /api/auth/register
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		Address        string `json:"address"`
		MembershipType string `json:"membershipType"`
		Password       string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondBadRequest(c, "Name, email and password are required")
		return
	}

	member := &entities.Member{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        req.Address,
		MembershipType: entities.MembershipType(req.MembershipType),
	}

	id, err := ac.store.Register(member, req.Password)
	if err != nil {
		respondRepositoryError(c, err, "Member", "register")
		return
	}
	respondCreated(c, id, "Account created successfully. You can now login.")
}

// Login verifies credentials and starts a session. Unknown email, wrong
// password and inactive accounts all answer 401 without distinguishing
// which check failed beyond the account-state message.
// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondBadRequest(c, "Email and password are required")
		return
	}

	member, err := ac.store.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Invalid email or password"})
			return
		}
		respondInternalError(c, err, "login")
		return
	}

	if member.MembershipStatus != entities.MembershipStatusActive {
		c.JSON(http.StatusUnauthorized, MessageResponse{Message: "Account is not active. Please contact the library."})
		return
	}

	if ac.sessions != nil {
		if err := ac.sessions.CreateSession(c.Request, member); err != nil {
			respondInternalError(c, err, "login session")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    member,
	})
}

// Logout destroys the current session.
// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessions != nil {
		if err := ac.sessions.DestroySession(c.Request); err != nil {
			respondInternalError(c, err, "logout")
			return
		}
	}
	respondMessage(c, "Logged out")
}

// Status reports whether the request carries a valid session.
// GET /api/auth/status
func (ac *AuthController) Status(c *gin.Context) {
	if ac.sessions == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": ac.sessions.IsAuthenticated(c.Request),
		"email":         ac.sessions.GetEmail(c.Request),
	})
}
