package http

import (
	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/auth"
	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/tasks"
)

// RouterConfig carries every dependency the router wires into controllers.
type RouterConfig struct {
	Database *database.Database

	Books   BookStore
	Members MemberStore
	Loans   LoanStore
	Stats   StatsStore
	Auth    AuthStore

	SessionManager  *auth.SessionManager
	AuthRateLimiter *auth.RateLimiter
	TaskClient      *tasks.Client
	FineDailyRate   float64

	StaticPath    string
	CORSOrigin    string
	Version       string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.CORSOrigin != "" {
		router.Use(auth.CORSMiddleware(cfg.CORSOrigin))
	}

	// Session must load before any handler touching it.
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.Books)
	membersController := NewMembersController(cfg.Members)
	loansController := NewLoansController(cfg.Loans, cfg.Members)
	statsController := NewStatsController(cfg.Stats)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Books API. Fixed paths must register before the :id wildcard.
	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/search", booksController.SearchBooks)
	router.GET("/api/books/advanced-search", booksController.AdvancedSearch)
	router.GET("/api/books/suggestions", booksController.GetSuggestions)
	router.GET("/api/books/filter-options", booksController.GetFilterOptions)
	router.GET("/api/books/:id", booksController.GetBook)
	router.POST("/api/books", booksController.CreateBook)
	router.PUT("/api/books/:id", booksController.UpdateBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	// Members API
	router.GET("/api/members", membersController.GetAllMembers)
	router.GET("/api/members/search", membersController.SearchMembers)
	router.GET("/api/members/:id", membersController.GetMember)
	router.POST("/api/members", membersController.CreateMember)
	router.PUT("/api/members/:id", membersController.UpdateMember)
	router.PATCH("/api/members/:id/status", membersController.UpdateMemberStatus)
	router.DELETE("/api/members/:id", membersController.DeleteMember)

	// Loans API
	router.GET("/api/loans", loansController.GetAllLoans)
	router.GET("/api/loans/overdue", loansController.GetOverdueLoans)
	router.GET("/api/loans/member/:memberId", loansController.GetLoansByMember)
	router.GET("/api/loans/:id", loansController.GetLoan)
	router.POST("/api/loans", loansController.CreateLoan)
	router.POST("/api/loans/:id/return", loansController.ReturnLoan)
	router.PATCH("/api/loans/:id/fine", loansController.UpdateFine)

	// Dashboard stats
	router.GET("/api/stats", statsController.GetStats)

	// Auth endpoints
	if cfg.Auth != nil {
		authController := NewAuthController(cfg.Auth, cfg.SessionManager)
		authRoutes := router.Group("/api/auth")
		if cfg.AuthRateLimiter != nil {
			authRoutes.Use(cfg.AuthRateLimiter.Middleware())
		}
		authRoutes.POST("/register", authController.Register)
		authRoutes.POST("/login", authController.Login)
		authRoutes.POST("/logout", authController.Logout)
		authRoutes.GET("/status", authController.Status)
	}

	// Admin task endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient, cfg.FineDailyRate)
		admin := router.Group("/api/admin")
		if cfg.SessionManager != nil {
			admin.Use(cfg.SessionManager.RequireSession())
		}
		admin.POST("/tasks/accrue-fines", tasksController.RunFineAccrual)
	}

	// Admin dashboard assets
	if cfg.StaticPath != "" {
		router.Static("/admin", cfg.StaticPath)
	}

	return router
}
