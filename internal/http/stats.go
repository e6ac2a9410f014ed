package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/database/stats"
)

// StatsStore provides the dashboard aggregate snapshot.
type StatsStore interface {
	Snapshot(now time.Time) (*stats.Snapshot, error)
}

type StatsController struct {
	store StatsStore
}

func NewStatsController(store StatsStore) *StatsController {
	return &StatsController{store: store}
}

// GetStats returns the dashboard counters, computed from the current table
// contents on every request.
// GET /api/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	snapshot, err := sc.store.Snapshot(time.Now())
	if err != nil {
		respondInternalError(c, err, "dashboard stats")
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
