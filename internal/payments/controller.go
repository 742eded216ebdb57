package payments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/bookings"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/middleware"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/internal/shared/utils/response"
	"github.com/A-S-H-U-T-O-S-H-7/Seat-Booking-System-sub004/pkg/logger"

	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 1 << 20

type Controller struct {
	service Service
	log     *logger.Logger
}

func NewController(service Service, log *logger.Logger) *Controller {
	return &Controller{service: service, log: log}
}

type initiateRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
}

func (c *Controller) InitiatePayment(ctx *gin.Context) {
	var req initiateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request data", err.Error())
		return
	}

	userID, _ := middleware.ActorFromContext(ctx)
	initiation, err := c.service.InitiatePayment(ctx.Request.Context(), req.BookingID, userID)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			response.Error(ctx, http.StatusNotFound, "Booking not found", err.Error())
		case errors.Is(err, ErrNotPayable):
			response.Error(ctx, http.StatusConflict, "Booking is not awaiting payment", err.Error())
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to initiate payment", err.Error())
		}
		return
	}

	response.Success(ctx, "Payment initiated successfully", initiation)
}

// HandleCallback receives the gateway's encrypted verdict. The gateway
// delivers encResp over several transports depending on integration
// mode, so all of them are accepted: POST form field, JSON field, raw
// body containing encResp=, and GET query parameter.
func (c *Controller) HandleCallback(ctx *gin.Context) {
	encResp, transport := extractEncResp(ctx)
	if encResp == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"status":  false,
			"message": "Missing encrypted response",
		})
		return
	}

	c.log.LogPaymentCallback(ctx.Request.Context(), transport, len(encResp))

	outcome, err := c.service.HandleCallback(ctx.Request.Context(), encResp)
	if err != nil {
		var decryptErr *DecryptError
		if errors.As(err, &decryptErr) {
			response.Error(ctx, http.StatusBadRequest, "Invalid encrypted response", decryptErr.Error())
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to process payment callback", err.Error())
		return
	}

	response.Success(ctx, "Payment callback processed", outcome)
}

// extractEncResp tries each accepted transport in order and reports
// which one matched.
func extractEncResp(ctx *gin.Context) (string, string) {
	if ctx.Request.Method == http.MethodGet {
		if v := ctx.Query("encResp"); v != "" {
			return v, "query"
		}
		return "", ""
	}

	contentType := ctx.ContentType()

	if strings.Contains(contentType, "application/x-www-form-urlencoded") ||
		strings.Contains(contentType, "multipart/form-data") {
		if v := ctx.PostForm("encResp"); v != "" {
			return v, "form"
		}
	}

	body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, maxCallbackBody))
	if err != nil {
		return "", ""
	}

	if strings.Contains(contentType, "application/json") {
		var payload struct {
			EncResp string `json:"encResp"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.EncResp != "" {
			return payload.EncResp, "json"
		}
	}

	// Raw body fallback: some gateway modes post an unlabeled
	// encResp=... text payload
	if v := encRespFromRaw(string(body)); v != "" {
		return v, "raw"
	}
	return "", ""
}

func encRespFromRaw(body string) string {
	idx := strings.Index(body, "encResp=")
	if idx < 0 {
		return ""
	}
	v := body[idx+len("encResp="):]
	if amp := strings.IndexByte(v, '&'); amp >= 0 {
		v = v[:amp]
	}
	return strings.TrimSpace(v)
}
