package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/tasks"
)

type TasksController struct {
	taskClient *tasks.Client
	fineRate   float64
}

func NewTasksController(taskClient *tasks.Client, fineRate float64) *TasksController {
	return &TasksController{taskClient: taskClient, fineRate: fineRate}
}

// RunFineAccrual enqueues an immediate fine accrual pass over all overdue
// loans, ahead of the next scheduled run.
// POST /api/admin/tasks/accrue-fines
func (tc *TasksController) RunFineAccrual(c *gin.Context) {
	if tc.taskClient == nil {
		c.JSON(http.StatusServiceUnavailable, MessageResponse{Message: "Task queue is disabled"})
		return
	}

	_, err := tc.taskClient.Add(tasks.AccrueFinesTask{Rate: tc.fineRate}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue fine accrual")
		return
	}
	c.JSON(http.StatusAccepted, MessageResponse{Message: "Fine accrual scheduled"})
}
