package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/database"
)

type HealthController struct {
	db      *database.Database
	version string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{db: db, version: version}
}

// Status reports process liveness and storage reachability.
// GET /health
func (hc *HealthController) Status(c *gin.Context) {
	overall := "ok"
	dbStatus := "ok"
	status := http.StatusOK

	sqlDB, err := hc.db.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		overall = "degraded"
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   overall,
		"version":  hc.version,
		"database": dbStatus,
	})
}
