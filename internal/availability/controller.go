package availability

import (
	"net/http"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetAvailability(ctx *gin.Context) {
	partitionKey := ctx.Param("partitionKey")
	if partitionKey == "" {
		response.Error(ctx, http.StatusBadRequest, "Partition key is required", "missing partition key")
		return
	}

	view, err := c.service.GetAvailability(ctx.Request.Context(), partitionKey)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Failed to get availability", err.Error())
		return
	}

	response.Success(ctx, "Availability retrieved successfully", view)
}

func (c *Controller) ListPartitions(ctx *gin.Context) {
	keys, err := c.service.ListPartitions(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to list partitions", err.Error())
		return
	}

	response.Success(ctx, "Partitions retrieved successfully", keys)
}

type adminBlockRequest struct {
	PartitionKey string   `json:"partition_key" binding:"required"`
	ResourceType string   `json:"resource_type" binding:"required,oneof=HAVAN SHOW STALL"`
	UnitIDs      []string `json:"unit_ids" binding:"required,min=1"`
}

func (c *Controller) AdminBlockUnits(ctx *gin.Context) {
	var req adminBlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	actor, _ := middleware.ActorFromContext(ctx)
	if err := c.service.AdminBlockUnits(ctx.Request.Context(), req.PartitionKey, req.ResourceType, req.UnitIDs, actor); err != nil {
		status := http.StatusInternalServerError
		if IsUnavailable(err) {
			status = http.StatusConflict
		}
		response.Error(ctx, status, "Failed to block units", err.Error())
		return
	}

	response.Success(ctx, "Units blocked successfully", nil)
}

type adminReleaseRequest struct {
	PartitionKey string   `json:"partition_key" binding:"required"`
	UnitIDs      []string `json:"unit_ids" binding:"required,min=1"`
}

func (c *Controller) AdminReleaseUnits(ctx *gin.Context) {
	var req adminReleaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	if err := c.service.AdminReleaseUnits(ctx.Request.Context(), req.PartitionKey, req.UnitIDs); err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to release units", err.Error())
		return
	}

	response.Success(ctx, "Units released successfully", nil)
}
