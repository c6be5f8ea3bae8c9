package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/pawhub/petcare-api/internal/config"
	"github.com/pawhub/petcare-api/internal/email"
	appointmentHandler "github.com/pawhub/petcare-api/internal/handler/appointment"
	authHandler "github.com/pawhub/petcare-api/internal/handler/auth"
	availabilityHandler "github.com/pawhub/petcare-api/internal/handler/availability"
	prometheusHandler "github.com/pawhub/petcare-api/internal/handler/prometheus"
	professionalHandler "github.com/pawhub/petcare-api/internal/handler/professional"
	refundHandler "github.com/pawhub/petcare-api/internal/handler/refund"
	"github.com/pawhub/petcare-api/internal/middleware"
	"github.com/pawhub/petcare-api/internal/repository/postgres"
	"github.com/pawhub/petcare-api/internal/router"
	appointmentService "github.com/pawhub/petcare-api/internal/service/appointment"
	authService "github.com/pawhub/petcare-api/internal/service/auth"
	availabilityService "github.com/pawhub/petcare-api/internal/service/availability"
	eventService "github.com/pawhub/petcare-api/internal/service/event"
	notificationService "github.com/pawhub/petcare-api/internal/service/notification"
	professionalService "github.com/pawhub/petcare-api/internal/service/professional"
	refundService "github.com/pawhub/petcare-api/internal/service/refund"
	"github.com/pawhub/petcare-api/pkg/auth"
	"github.com/pawhub/petcare-api/pkg/logger"
	"github.com/pawhub/petcare-api/pkg/messaging/redis"
	"github.com/pawhub/petcare-api/pkg/metrics"
	"github.com/pawhub/petcare-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	professionalRepo := postgres.NewProfessionalRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	refundRepo := postgres.NewRefundRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Metrics share the registry served on /metrics.
	promH := prometheusHandler.New()
	appMetrics := metrics.NewMetrics(promH.Registry(), "petcare", "api")

	broker, err := redis.NewRedisBroker(cfg.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	emailSvc := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	// Services
	jwtSvc := auth.NewJWTService(cfg.ToJWTConfig())
	eventSvc := eventService.NewService(outboxRepo)
	notifSvc := notificationService.NewService(notificationRepo, emailSvc, broker, appLogger, appMetrics)
	professionalSvc := professionalService.NewService(professionalRepo, emailSvc, appLogger)
	authSvc := authService.NewService(professionalRepo, jwtSvc)
	availabilitySvc := availabilityService.NewService(availabilityRepo, professionalRepo, notifSvc, eventSvc, appLogger, appMetrics)
	refundSvc := refundService.NewService(refundRepo, appointmentRepo, notifSvc, eventSvc, cfg.Refund.ProcessingFeePercent, appLogger, appMetrics)
	appointmentSvc := appointmentService.NewService(appointmentRepo, refundSvc, notifSvc, eventSvc, appLogger, appMetrics)

	// Handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	authH := authHandler.NewHandler(authSvc)
	professionalH := professionalHandler.NewHandler(professionalSvc)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	refundH := refundHandler.NewHandler(refundSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsConfig.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.Security.AllowedHeaders
	}

	routerConfig := router.Config{
		CORSConfig: corsConfig,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}

	r := router.NewRouter(
		authMiddleware,
		authH,
		professionalH,
		availabilityH,
		appointmentH,
		refundH,
		promH,
		routerConfig,
	)
	r.Setup()

	// Outbox relay publishes committed events to the broker.
	outboxCtx, cancelOutbox := context.WithCancel(context.Background())
	defer cancelOutbox()
	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), appLogger, appMetrics)
	go outboxProcessor.Start(outboxCtx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	cancelOutbox()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}
