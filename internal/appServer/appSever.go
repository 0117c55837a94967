package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prakida/festival-backend/config"
	repository "github.com/prakida/festival-backend/internal/database/postgres"
	rediscache "github.com/prakida/festival-backend/internal/database/redis"
	"github.com/prakida/festival-backend/internal/service"
	"github.com/prakida/festival-backend/internal/transport"
	"github.com/prakida/festival-backend/internal/worker"
	"github.com/prakida/festival-backend/pkg/auth"
	"github.com/prakida/festival-backend/pkg/mailer"
	"github.com/prakida/festival-backend/pkg/postgres"
	"github.com/prakida/festival-backend/pkg/redis"
	"github.com/prakida/festival-backend/pkg/tiqr"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run database migrations
	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	registrationRepo := repository.NewRegistrationRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	accommodationRepo := repository.NewAccommodationRepository(db)

	// Dashboard cache is optional: without Redis every dashboard read goes
	// straight to Postgres.
	var dashboardCache *rediscache.DashboardCache
	if cfg.Redis.Host != "" {
		redisClient := redis.NewRedisClient(&cfg.Redis)
		defer redisClient.Close()
		dashboardCache = rediscache.NewDashboardCache(redisClient, cfg.App.CacheTTL)
		logrus.Info("Dashboard cache initialized")
	} else {
		logrus.Warn("Redis host not provided, dashboard caching disabled")
	}

	// Payment provider, auth verifier and transactional mailer
	provider := tiqr.New(&cfg.Tiqr, cfg.App.BaseURL)
	logrus.Infof("Payment provider initialized in %s mode", provider.Mode())

	verifier := auth.New(&cfg.Auth)

	// The nil check happens before the interface assignment so a disabled
	// mailer stays a nil ConfirmationSender.
	var notifier service.ConfirmationSender
	if confirmationMailer := mailer.New(&cfg.Email); confirmationMailer != nil {
		notifier = confirmationMailer
	} else {
		logrus.Warn("Email api key not provided, confirmation emails disabled")
	}

	// Initialize services
	dashboardService := service.NewDashboardService(registrationRepo, ticketRepo, dashboardCache)
	registrationService := service.NewRegistrationService(registrationRepo, provider, dashboardService)
	ticketService := service.NewTicketService(ticketRepo, provider)
	accommodationService := service.NewAccommodationService(accommodationRepo, registrationRepo, provider)
	settlementService := service.NewSettlementService(registrationRepo, ticketRepo, dashboardService, notifier, provider.Mode())

	// Start accommodation status refresh worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshWorker := worker.NewStatusRefreshWorker(accommodationService, cfg.Worker.RefreshInterval, cfg.Worker.BatchSize)
	go refreshWorker.Start(ctx)
	logrus.Info("Status refresh worker started")

	// Initialize handlers
	handlers := &transport.Handlers{
		Webhook:       transport.NewWebhookHandler(settlementService),
		Registration:  transport.NewRegistrationHandler(registrationService),
		Ticket:        transport.NewTicketHandler(ticketService),
		Dashboard:     transport.NewDashboardHandler(dashboardService),
		Accommodation: transport.NewAccommodationHandler(accommodationService),
		Payment:       transport.NewPaymentHandler(settlementService),
		Admin:         transport.NewAdminHandler(registrationService, ticketService),
	}

	// Setup HTTP server
	if cfg.Server.Env == "production" || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(&cfg.Auth, verifier, handlers)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
