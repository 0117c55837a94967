package transport

import (
	"github.com/gin-gonic/gin"

	"github.com/prakida/festival-backend/config"
	"github.com/prakida/festival-backend/internal/transport/middleware"
	"github.com/prakida/festival-backend/pkg/auth"
)

// Handlers bundles everything InitRoutes needs to wire the router.
type Handlers struct {
	Webhook       *WebhookHandler
	Registration  *RegistrationHandler
	Ticket        *TicketHandler
	Dashboard     *DashboardHandler
	Accommodation *AccommodationHandler
	Payment       *PaymentHandler
	Admin         *AdminHandler
}

func InitRoutes(cfg *config.AuthConfig, verifier auth.Verifier, h *Handlers) *gin.Engine {

	router := gin.New()
	// Non-POST hits on /webhook must answer 405, not 404.
	router.HandleMethodNotAllowed = true

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// Provider callback, no auth: the provider only knows the booking uid.
	router.POST("/webhook", h.Webhook.HandleSettlement)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(verifier))
	{
		api.POST("/registrations", h.Registration.Create)
		api.POST("/tickets", h.Ticket.Buy)

		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("/registrations", h.Dashboard.GetRegistrations)
			dashboard.GET("/tickets", h.Dashboard.GetTickets)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/mock/verify", h.Payment.VerifyMock)
			payments.POST("/heal", h.Payment.Heal)
		}

		accommodation := api.Group("/accommodation")
		{
			accommodation.POST("/book", h.Accommodation.Book)
			accommodation.GET("/bookings", h.Accommodation.GetBookings)
			accommodation.GET("/roster", h.Accommodation.GetRoster)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AdminOnly(cfg.AdminEmails))
		{
			admin.GET("/registrations", h.Admin.GetAllRegistrations)
			admin.GET("/registrations/export", h.Admin.ExportRegistrations)
			admin.GET("/tickets", h.Admin.GetAllTickets)
			admin.PATCH("/registrations/:id/payment", h.Admin.UpdateRegistrationPayment)
			admin.PATCH("/tickets/:id/payment", h.Admin.UpdateTicketPayment)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
