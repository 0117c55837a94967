package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prakida/festival-backend/internal/entity"
	"github.com/prakida/festival-backend/internal/service"
	"github.com/prakida/festival-backend/internal/transport/middleware"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetRegistrations returns the merged member-view plus creator-view team
// list. ?refresh=true bypasses the cache.
func (h *DashboardHandler) GetRegistrations(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	refresh := c.Query("refresh") == "true"

	registrations, err := h.dashboardService.GetUserRegistrations(c.Request.Context(), identity, refresh)
	if err != nil {
		if errors.Is(err, entity.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"registrations": registrations,
		"count":         len(registrations),
	})
}

func (h *DashboardHandler) GetTickets(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	tickets, err := h.dashboardService.GetUserTickets(c.Request.Context(), identity.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets": tickets,
		"count":   len(tickets),
	})
}
