package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/service"
)

type WebhookHandler struct {
	settlementService service.SettlementService
}

func NewWebhookHandler(settlementService service.SettlementService) *WebhookHandler {
	return &WebhookHandler{settlementService: settlementService}
}

// HandleSettlement accepts the payment-provider callback. The contract is
// strict: 400 for an unreadable body or missing uid, 404 when no record
// carries the uid, 500 for storage failures, 200 otherwise.
func (h *WebhookHandler) HandleSettlement(c *gin.Context) {
	var event entity.SettlementEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload: " + err.Error()})
		return
	}

	result, err := h.settlementService.Apply(c.Request.Context(), &event)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrMissingBookingUID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "booking uid is required"})
		case errors.Is(err, entity.ErrNoCorrelatedRecord):
			c.JSON(http.StatusNotFound, gin.H{"error": "no record matches booking uid"})
		default:
			logrus.WithError(err).WithField("booking_uid", event.BookingUID).Error("Settlement failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "settlement failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "settlement applied",
		"table":   result.Kind,
		"id":      result.ID,
		"status":  result.Status,
	})
}
