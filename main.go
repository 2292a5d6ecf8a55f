package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindease/config"
	"mindease/cron"
	"mindease/database"
	reconciliationRepo "mindease/database/repository/reconciliation"
	"mindease/handlers"
	"mindease/middleware"
	"mindease/models"
	"mindease/routes"
	"mindease/services/appointment"
	"mindease/services/backend"
	"mindease/services/booking"
	"mindease/services/listing"
	"mindease/services/notification"
	"mindease/services/profile"
	"mindease/services/reconciliation"
	"mindease/services/videoroom"
	"mindease/services/wallet"
	"mindease/services/workflow"
	"mindease/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	database.InitDB()
	utils.InitRedis()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))
	stripe.Key = cfg.StripeKey

	// stores.
	sessions := utils.NewRedisSessionStore(utils.GetSessionClient(), time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	if cfg.SessionEncryptionKey != "" {
		sealer, err := utils.NewTokenSealer(cfg.SessionEncryptionKey)
		if err != nil {
			logger.Sugar().Fatalf("main: invalid SESSION_ENCRYPTION_KEY: %v", err)
		}
		sessions.WithSealer(sealer)
	} else if config.IsProduction() {
		logger.Warn("main: SESSION_ENCRYPTION_KEY not set, backend tokens are stored in clear")
	}
	cache := utils.GetCacheClient()
	flows := booking.NewRedisFlowStore(cache, time.Duration(cfg.BookingFlowTTLMinutes)*time.Minute)
	forms := profile.NewRedisFormStore(utils.NewJSONStore[profile.Form](cache, utils.ProfileFormPrefix, utils.ViewStateTTL))
	browse := listing.NewRedisBrowseStore(utils.NewJSONStore[listing.BrowseState](cache, utils.BrowseStatePrefix, utils.ViewStateTTL))
	incidents := reconciliationRepo.NewMongoIncidentRepo()

	// services.
	api := backend.NewClient(cfg.BackendAPIURL, cfg.MediaBaseURL, config.BackendTimeout(), sessions, logger)
	projector := appointment.NewProjector(config.Location(), logger)

	queue := asynq.NewClient(cron.QueueRedisOpt())
	defer queue.Close()
	reconcileService := reconciliation.NewService(incidents, api, sessions, queue, cfg.ReconcileMaxAttempts, logger).
		WithFlowLock(flows)

	prices := models.PriceTable{
		models.ModeVideo:   cfg.PriceVideo,
		models.ModeVoice:   cfg.PriceVoice,
		models.ModeMessage: cfg.PriceMessage,
	}
	bookingService := booking.NewService(
		api,
		flows,
		booking.NewPricing(api, prices, logger),
		booking.NewStripeGateway(cfg.StripeKey, logger),
		reconcileService,
		logger,
	)
	workflowService := workflow.NewService(api, projector, logger)
	walletService := wallet.NewService(api, cfg.MinWithdrawalAmount, logger)
	profileService := profile.NewService(api, forms, logger)

	notificationService, err := notification.NewDefaultNotificationService(api, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	tokens, err := videoroom.NewTokenIssuer(cfg.ZegoAppID, cfg.ZegoServerSecret, time.Duration(cfg.ZegoTokenTTLSeconds)*time.Second)
	if err != nil {
		if !errors.Is(err, videoroom.ErrTokenNotConfigured) {
			logger.Sugar().Fatalf("main: invalid room token configuration: %v", err)
		}
		logger.Warn("main: room tokens disabled", zap.Error(err))
		tokens = nil
	}
	roomService := videoroom.NewService(api, projector, tokens, logger)

	// background reconciliation.
	worker := cron.InitReconcileWorker(reconcileService, logger)
	sweeper, err := cron.NewSweeper(cfg.ReconcileSweepSpec, reconcileService.Sweep, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid RECONCILE_SWEEP_SPEC %q: %v", cfg.ReconcileSweepSpec, err)
	}
	sweeper.Start()

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(monitorCtx, []*redis.Client{cache, utils.GetSessionClient()}, database.MongoClient, api.Ping)

	// handlers.
	handlerBundle := &handlers.HandlerBundle{
		Sessions:            sessions,
		SessionHandler:      handlers.NewSessionHandler(sessions, cfg.BackendJWTSecret),
		AppointmentHandler:  handlers.NewAppointmentHandler(workflowService, roomService),
		TherapistHandler:    handlers.NewTherapistHandler(api, browse),
		BookingHandler:      handlers.NewBookingHandler(bookingService),
		WalletHandler:       handlers.NewWalletHandler(walletService),
		ProfileHandler:      handlers.NewProfileHandler(profileService, sessions),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		AdminHandler:        handlers.NewAdminHandler(reconcileService),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	sweeper.Stop()
	worker.Shutdown()
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: failed to close MongoDB", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
	_ = logger.Sync()
}
