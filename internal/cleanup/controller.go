package cleanup

import (
	"net/http"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	scheduler *Scheduler
}

func NewController(scheduler *Scheduler) *Controller {
	return &Controller{scheduler: scheduler}
}

// TriggerPass runs an on-demand reconciliation pass
func (c *Controller) TriggerPass(ctx *gin.Context) {
	report, err := c.scheduler.RunNow(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Cleanup pass failed", err.Error())
		return
	}
	response.Success(ctx, "Cleanup pass completed", report)
}

// GetStatus reports the most recent pass
func (c *Controller) GetStatus(ctx *gin.Context) {
	report := c.scheduler.LastReport()
	if report == nil {
		response.Success(ctx, "No cleanup pass has run yet", nil)
		return
	}
	response.Success(ctx, "Cleanup status retrieved successfully", report)
}
