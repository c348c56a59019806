package main

import (
	"context"
	"log"
	"net/http"

	"github.com/Eursukkul/campus-events/config"
	"github.com/Eursukkul/campus-events/internal/consumer"
	"github.com/Eursukkul/campus-events/internal/handler"
	"github.com/Eursukkul/campus-events/internal/middleware"
	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/service"
	"github.com/Eursukkul/campus-events/internal/state"
	"github.com/Eursukkul/campus-events/pkg/database"
	"github.com/Eursukkul/campus-events/pkg/logger"
	"github.com/Eursukkul/campus-events/pkg/notifylog"
	"github.com/Eursukkul/campus-events/pkg/rabbitmq"
	"github.com/Eursukkul/campus-events/pkg/storage"
	"github.com/Eursukkul/campus-events/pkg/validate"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.NewPostgresDB(cfg.DSN(), repository.Tables()...)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}

	// Repositories
	eventRepo := repository.NewEventRepository(db, cfg.StoreTimeout)
	regRepo := repository.NewRegistrationRepository(db, cfg.StoreTimeout)
	feedbackRepo := repository.NewFeedbackRepository(db, cfg.StoreTimeout)
	profileRepo := repository.NewProfileRepository(db, cfg.StoreTimeout)

	// In-memory view of the store
	mirror := state.NewMirror()
	syncer := service.NewSyncer(eventRepo, regRepo, feedbackRepo, mirror, zl)
	if err := syncer.Refresh(ctx); err != nil {
		zl.Warn("initial refresh incomplete", zap.Error(err))
	}

	// Notification log
	redisClient := notifylog.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()
	logStore := notifylog.NewStore[models.Notification](redisClient, zl)
	if err := logStore.Ping(ctx); err != nil {
		zl.Warn("notification log unreachable", zap.Error(err))
	}
	notifSvc := service.NewNotificationService(logStore, cfg.ReminderHorizon, zl)
	if err := notifSvc.Load(ctx); err != nil {
		zl.Warn("failed to load notification log", zap.Error(err))
	}

	// RabbitMQ: domain events out, pushes in. The service runs without a broker.
	var publisher service.Publisher
	if p, err := rabbitmq.NewPublisher(cfg.RabbitURL, zl); err != nil {
		zl.Warn("rabbitmq publisher disabled", zap.Error(err))
	} else {
		defer p.Close()
		publisher = p
	}

	if mq, err := rabbitmq.NewConsumer(cfg.RabbitURL, rabbitmq.PushQueueName, rabbitmq.PushRoutingKey, zl); err != nil {
		zl.Warn("push consumer disabled", zap.Error(err))
	} else {
		defer mq.Close()
		msgs, err := mq.Consume()
		if err != nil {
			zl.Fatal("failed to start consuming", zap.Error(err))
		}
		consumer.NewPushConsumer(notifSvc, cfg.StoreTimeout, zl).Start(msgs)
	}

	// Event images
	var images service.ImageStore
	if cfg.S3.Bucket != "" && cfg.S3.AccessKeyID != "" {
		s3, err := storage.NewS3Storage(ctx, cfg.S3, zl)
		if err != nil {
			zl.Fatal("failed to configure image storage", zap.Error(err))
		}
		images = s3
	} else {
		zl.Info("image uploads disabled, no storage credentials")
	}

	// Services
	eventSvc := service.NewEventService(eventRepo, mirror, validate.New(), notifSvc, publisher, images, cfg.MaxImageBytes, syncer, zl)
	regSvc := service.NewRegistrationService(regRepo, eventRepo, mirror, notifSvc, publisher, syncer, zl)
	feedbackSvc := service.NewFeedbackService(feedbackRepo, regRepo, eventRepo, mirror, syncer, zl)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(zl)
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			zl.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "campus-events"})
	})

	api := e.Group("/api/v1", middleware.Auth([]byte(cfg.JWTSecret), profileRepo, zl))
	handler.NewEventHandler(eventSvc).RegisterRoutes(api.Group("/events"))
	handler.NewRegistrationHandler(regSvc).RegisterRoutes(api)
	handler.NewFeedbackHandler(feedbackSvc).RegisterRoutes(api)
	handler.NewNotificationHandler(notifSvc, mirror, zl).RegisterRoutes(api.Group("/notifications"))
	handler.NewAnalyticsHandler(syncer, mirror, zl).RegisterRoutes(api)

	zl.Info("campus events starting", zap.String("port", cfg.ServerPort))
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
