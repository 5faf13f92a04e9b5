package webhook

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/service"
)

// maxBodyBytes bounds a single webhook delivery
const maxBodyBytes = 1 << 20

// Handler receives Razorpay payment webhooks
type Handler struct {
	capture service.CaptureService
	logger  *zap.Logger
}

// NewHandler creates a new webhook handler
func NewHandler(capture service.CaptureService, logger *zap.Logger) *Handler {
	return &Handler{
		capture: capture,
		logger:  logger,
	}
}

// Handle processes a webhook delivery. Every delivery that could be read is
// answered 200 with the capture outcome; failures land in the error log.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	result := h.capture.Capture(c.Request.Context(), body, c.GetHeader(SignatureHeader))

	h.logger.Info("Webhook processed",
		zap.String("status", result.Status),
		zap.String("donation", result.Donation),
		zap.String("error_log", result.ErrorLog))

	c.JSON(http.StatusOK, result)
}
