package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/service"
	"github.com/prakida/festival-backend/internal/transport/middleware"
)

type AccommodationHandler struct {
	accommodationService service.AccommodationService
}

func NewAccommodationHandler(accommodationService service.AccommodationService) *AccommodationHandler {
	return &AccommodationHandler{accommodationService: accommodationService}
}

func (h *AccommodationHandler) Book(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req service.BookAccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.accommodationService.Book(c.Request.Context(), identity, &req)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidMember), errors.Is(err, entity.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *AccommodationHandler) GetBookings(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	refresh := c.Query("refresh") == "true"

	bookings, err := h.accommodationService.GetBookings(c.Request.Context(), identity, refresh)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetRoster classifies the members of the user's registrations into
// booked, pending and remaining accommodation buckets.
func (h *AccommodationHandler) GetRoster(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	buckets, err := h.accommodationService.Roster(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, entity.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, buckets)
}
