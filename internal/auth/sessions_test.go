package auth

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maplewood/library/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupSessionManager(t *testing.T) *SessionManager {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "sessions.db")
	sqlDB, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	sm, err := NewSessionManager(sqlDB, time.Hour, false)
	require.NoError(t, err)
	return sm
}

func sessionTestRouter(sm *SessionManager) *gin.Engine {
	router := gin.New()
	router.Use(sm.SessionLoadSave())

	router.POST("/login", func(c *gin.Context) {
		member := &entities.Member{ID: 42, Email: "admin@email.com"}
		if err := sm.CreateSession(c.Request, member); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
	})
	router.POST("/logout", func(c *gin.Context) {
		if err := sm.DestroySession(c.Request); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	})

	protected := router.Group("/admin", sm.RequireSession())
	protected.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"member_id": sm.GetMemberID(c.Request),
			"email":     sm.GetEmail(c.Request),
		})
	})

	return router
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "library_session" {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestSessionManager_Configuration(t *testing.T) {
	sm := setupSessionManager(t)

	assert.Equal(t, "library_session", sm.Cookie.Name)
	assert.True(t, sm.Cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, sm.Cookie.SameSite)
	assert.Equal(t, time.Hour, sm.Lifetime)
}

func TestSessionManager_LoginSetsCookie(t *testing.T) {
	sm := setupSessionManager(t)
	router := sessionTestRouter(sm)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/login", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestSessionManager_ProtectedRoute(t *testing.T) {
	sm := setupSessionManager(t)
	router := sessionTestRouter(sm)

	t.Run("rejects anonymous requests", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin/whoami", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication required")
	})

	t.Run("accepts the session cookie", func(t *testing.T) {
		loginW := httptest.NewRecorder()
		loginReq, _ := http.NewRequest("POST", "/login", nil)
		router.ServeHTTP(loginW, loginReq)
		require.Equal(t, http.StatusOK, loginW.Code)
		cookie := sessionCookie(t, loginW)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/admin/whoami", nil)
		req.AddCookie(cookie)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"member_id":42`)
		assert.Contains(t, w.Body.String(), "admin@email.com")
	})
}

func TestSessionManager_LogoutInvalidatesSession(t *testing.T) {
	sm := setupSessionManager(t)
	router := sessionTestRouter(sm)

	loginW := httptest.NewRecorder()
	loginReq, _ := http.NewRequest("POST", "/login", nil)
	router.ServeHTTP(loginW, loginReq)
	cookie := sessionCookie(t, loginW)

	logoutW := httptest.NewRecorder()
	logoutReq, _ := http.NewRequest("POST", "/logout", nil)
	logoutReq.AddCookie(cookie)
	router.ServeHTTP(logoutW, logoutReq)
	require.Equal(t, http.StatusOK, logoutW.Code)

	// The old token is gone from the store.
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/admin/whoami", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
