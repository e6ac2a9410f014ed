package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/database"
)

// --- Response Types ---

// MessageResponse is the standard body for mutations: an optional id plus a
// human-readable message.
type MessageResponse struct {
	ID      uint   `json:"id,omitempty"`
	Message string `json:"message"`
}

// --- Response Helpers ---

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, MessageResponse{Message: message})
}

func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, MessageResponse{Message: resource + " not found"})
}

// respondInternalError logs the error and returns its message with a 500.
// Stack traces never leave the process.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, MessageResponse{Message: err.Error()})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}

func respondCreated(c *gin.Context, id uint, message string) {
	c.JSON(http.StatusCreated, MessageResponse{ID: id, Message: message})
}

// respondRepositoryError maps the repository error taxonomy to status codes:
// not-found → 404, the conflict family → 400, anything else → 500. The
// originating message is preserved so clients can branch on it.
func respondRepositoryError(c *gin.Context, err error, resource, context string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondNotFound(c, resource)
	case database.IsConflict(err):
		respondBadRequest(c, err.Error())
	default:
		respondInternalError(c, err, context)
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. On failure it responds 400 and returns ok=false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
