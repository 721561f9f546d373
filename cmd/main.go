package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sharath018/workshop-checkin-backend/config"
	"github.com/sharath018/workshop-checkin-backend/database"
	"github.com/sharath018/workshop-checkin-backend/internal/auditlog"
	"github.com/sharath018/workshop-checkin-backend/internal/auth"
	"github.com/sharath018/workshop-checkin-backend/internal/checkin"
	"github.com/sharath018/workshop-checkin-backend/internal/lib/logger/sl"
	"github.com/sharath018/workshop-checkin-backend/internal/metrics"
	"github.com/sharath018/workshop-checkin-backend/internal/notification"
	"github.com/sharath018/workshop-checkin-backend/internal/outbox"
	"github.com/sharath018/workshop-checkin-backend/internal/workshop"
	"github.com/sharath018/workshop-checkin-backend/routes"
	"github.com/sharath018/workshop-checkin-backend/utils"
)

// @title Workshop Check-in API
// @version 1.0
// @description Workshop catalogue with capacity-safe check-in.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	logger := setupLogger(cfg.Env)
	logger.Info("starting application", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.Connect(cfg)
	if cfg.DBDriver == config.DriverSQLite || cfg.Env != config.EnvProd {
		logger.Info("running database migrations")
		if err := database.Migrate(db,
			&auth.User{},
			&workshop.Workshop{},
			&checkin.CheckIn{},
			&auditlog.AuditLog{},
			&outbox.Event{},
		); err != nil {
			logger.Error("migration failed", sl.Err(err))
			os.Exit(1)
		}
	}

	rdb, err := utils.InitRedis(ctx, cfg)
	if err != nil {
		logger.Warn("continuing without redis", sl.Err(err))
	}

	var publisher notification.Publisher
	if rdb != nil {
		publisher = rdb
		defer rdb.Close()
	}
	var pusher notification.PushSender
	fcm, err := utils.InitFirebase(ctx, cfg)
	switch {
	case err == nil:
		pusher = fcm
	case errors.Is(err, utils.ErrFirebaseDisabled):
		logger.Info("push notifications disabled")
	default:
		logger.Warn("continuing without push notifications", sl.Err(err))
	}

	m := metrics.New()
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))

	authSvc, err := auth.NewService(logger, auth.NewRepository(db), cfg)
	if err != nil {
		logger.Error("auth init failed", sl.Err(err))
		os.Exit(1)
	}

	workshopRepo := workshop.NewRepository(db)
	workshopSvc := workshop.NewService(logger, workshopRepo, auditSvc,
		workshop.WithListLimit(cfg.WorkshopsListLimit),
		workshop.WithNotifier(notification.NewService(logger, publisher, pusher)),
	)

	events := outbox.NewRepository(db)
	engine := checkin.NewEngine(logger, checkin.NewRepository(db), workshopRepo, auditSvc,
		checkin.WithOverlapTolerance(cfg.OverlapTolerance),
		checkin.WithMetrics(m),
		checkin.WithEvents(events),
	)

	var sender *outbox.Sender
	if len(cfg.KafkaBrokers) > 0 {
		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()

		sender = outbox.NewSender(logger, producer, events)
		sender.StartProducing(ctx, cfg.OutboxBatchSize, cfg.OutboxInterval)
	} else {
		logger.Info("KAFKA_BROKERS not set, outbox events stay in the database")
	}

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(m.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if err := routes.Setup(router, cfg, routes.Deps{
		Log:       logger,
		DB:        db,
		Redis:     rdb,
		Metrics:   m,
		Auth:      authSvc,
		Audit:     auditSvc,
		Workshops: workshopSvc,
		Engine:    engine,
	}); err != nil {
		logger.Error("route setup failed", sl.Err(err))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("stopping application")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", sl.Err(err))
	}
	if sender != nil {
		sender.StopSending()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("application stopped")
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case config.EnvDev:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return logger
}
