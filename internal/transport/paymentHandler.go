package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/service"
)

type PaymentHandler struct {
	settlementService service.SettlementService
}

func NewPaymentHandler(settlementService service.SettlementService) *PaymentHandler {
	return &PaymentHandler{settlementService: settlementService}
}

type verifyMockRequest struct {
	UID string `json:"uid" binding:"required"`
}

// VerifyMock confirms a mock-mode payment session. Disabled when the
// provider runs live.
func (h *PaymentHandler) VerifyMock(c *gin.Context) {
	var req verifyMockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.settlementService.VerifyMockPayment(c.Request.Context(), req.UID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrMockModeDisabled):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, entity.ErrNoCorrelatedRecord):
			c.JSON(http.StatusNotFound, gin.H{"error": "no record matches booking uid"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

type healRequest struct {
	Kind string `json:"kind" binding:"required,oneof=registrations tickets"`
	ID   string `json:"id" binding:"required"`
}

// Heal mints a synthetic booking uid for a record created before the
// provider call succeeded. Records that already carry a uid are left alone.
func (h *PaymentHandler) Heal(c *gin.Context) {
	var req healRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	uid, err := h.settlementService.HealBookingUID(c.Request.Context(), entity.RecordKind(req.Kind), req.ID)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrBookingUIDExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, entity.ErrRegistrationNotFound), errors.Is(err, entity.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_uid": uid})
}
