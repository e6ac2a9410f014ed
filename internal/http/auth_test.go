package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplewood/library/internal/auth"
	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/database/members"
	"github.com/maplewood/library/internal/entities"
)

func setupAuthTest(t *testing.T) (*members.Repository, *gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(database.Options{DSN: dbPath})
	require.NoError(t, err)

	repo := members.NewRepository(db.DB, 4)
	controller := NewAuthController(repo, nil)

	router := gin.New()
	router.POST("/api/auth/register", controller.Register)
	router.POST("/api/auth/login", controller.Login)
	router.POST("/api/auth/logout", controller.Logout)
	router.GET("/api/auth/status", controller.Status)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return repo, router, cleanup
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAuthController_Register(t *testing.T) {
	t.Run("creates an account", func(t *testing.T) {
		repo, router, cleanup := setupAuthTest(t)
		defer cleanup()

		w := postJSON(router, "/api/auth/register",
			`{"name":"Jane Smith","email":"jane.smith@email.com","password":"sekrit-pass","membershipType":"Premium"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "You can now login")

		member, err := repo.FindByEmail("jane.smith@email.com")
		require.NoError(t, err)
		assert.Equal(t, entities.MembershipTypePremium, member.MembershipType)
		assert.NotEmpty(t, member.PasswordHash)
	})

	t.Run("requires name, email and password", func(t *testing.T) {
		_, router, cleanup := setupAuthTest(t)
		defer cleanup()

		w := postJSON(router, "/api/auth/register", `{"email":"jane.smith@email.com"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email answers 400", func(t *testing.T) {
		repo, router, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := repo.Register(&entities.Member{Name: "Jane Smith", Email: "jane.smith@email.com"}, "sekrit-pass")
		require.NoError(t, err)

		w := postJSON(router, "/api/auth/register",
			`{"name":"Jane Smith","email":"jane.smith@email.com","password":"other-pass"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthController_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		repo, router, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := repo.Register(&entities.Member{Name: "Jane Smith", Email: "jane.smith@email.com"}, "sekrit-pass")
		require.NoError(t, err)

		w := postJSON(router, "/api/auth/login", `{"email":"jane.smith@email.com","password":"sekrit-pass"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Login successful")
		assert.NotContains(t, w.Body.String(), "$2a$")
	})

	t.Run("wrong password answers 401", func(t *testing.T) {
		repo, router, cleanup := setupAuthTest(t)
		defer cleanup()

		_, err := repo.Register(&entities.Member{Name: "Jane Smith", Email: "jane.smith@email.com"}, "sekrit-pass")
		require.NoError(t, err)

		w := postJSON(router, "/api/auth/login", `{"email":"jane.smith@email.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
	})

	t.Run("unknown email answers the same 401", func(t *testing.T) {
		_, router, cleanup := setupAuthTest(t)
		defer cleanup()

		w := postJSON(router, "/api/auth/login", `{"email":"nobody@email.com","password":"whatever"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
	})

	t.Run("suspended account answers 401", func(t *testing.T) {
		repo, router, cleanup := setupAuthTest(t)
		defer cleanup()

		id, err := repo.Register(&entities.Member{Name: "Jane Smith", Email: "jane.smith@email.com"}, "sekrit-pass")
		require.NoError(t, err)
		require.NoError(t, repo.UpdateStatus(id, entities.MembershipStatusSuspended))

		w := postJSON(router, "/api/auth/login", `{"email":"jane.smith@email.com","password":"sekrit-pass"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Account is not active")
	})
}

func TestAuthController_Status_WithoutSessions(t *testing.T) {
	_, router, cleanup := setupAuthTest(t)
	defer cleanup()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/auth/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	repo, _, cleanup := setupAuthTest(t)
	defer cleanup()

	limiter := auth.NewRateLimiter(auth.RateLimitConfig{MaxRequests: 2, Window: time.Minute})
	defer limiter.Stop()

	router := NewRouter(RouterConfig{
		Auth:            repo,
		AuthRateLimiter: limiter,
	})

	body := `{"email":"nobody@email.com","password":"wrong-pass"}`
	assert.Equal(t, http.StatusUnauthorized, postJSON(router, "/api/auth/login", body).Code)
	assert.Equal(t, http.StatusUnauthorized, postJSON(router, "/api/auth/login", body).Code)

	w := postJSON(router, "/api/auth/login", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Too many authentication attempts")
}
