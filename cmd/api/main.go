package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/civiclens/civiclens-api/api/swagger"
	"github.com/civiclens/civiclens-api/internal/handler"
	"github.com/civiclens/civiclens-api/internal/middleware"
	"github.com/civiclens/civiclens-api/internal/repository"
	"github.com/civiclens/civiclens-api/internal/service"
	"github.com/civiclens/civiclens-api/pkg/cache"
	"github.com/civiclens/civiclens-api/pkg/config"
	"github.com/civiclens/civiclens-api/pkg/database"
	"github.com/civiclens/civiclens-api/pkg/jobs"
	"github.com/civiclens/civiclens-api/pkg/logger"
	corsmiddleware "github.com/civiclens/civiclens-api/pkg/middleware/cors"
	reqidmiddleware "github.com/civiclens/civiclens-api/pkg/middleware/requestid"
	"github.com/civiclens/civiclens-api/pkg/storage"
)

// @title CivicLens API
// @version 1.0.0
// @description Community issue reporting backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, statistics caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var blobs storage.BlobStore
	switch cfg.Media.Backend {
	case "s3":
		blobs, err = storage.NewS3BlobStore(context.Background(), cfg.Media)
	default:
		blobs, err = storage.NewLocalBlobStore(cfg.Media.LocalDir, cfg.Media.PublicBaseURL)
	}
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob store", "backend", cfg.Media.Backend, "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	reportRepo := repository.NewReportRepository(db)
	mediaRepo := repository.NewMediaRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "civiclens-api",
	})

	notifierSvc := service.NewNotifierService(subscriptionRepo, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, logr)
	notifierSvc.Queue().Start(context.Background())
	defer notifierSvc.Queue().Stop()

	commentSvc := service.NewCommentService(commentRepo, reportRepo, userRepo, notifierSvc, nil, logr)

	reportSvc := service.NewReportService(service.ReportServiceParams{
		Reports:    reportRepo,
		Media:      mediaRepo,
		Users:      userRepo,
		Categories: categoryRepo,
		Comments:   commentSvc,
		Notifier:   notifierSvc,
		Blobs:      blobs,
		Logger:     logr,
	})

	statsSvc := service.NewStatsService(service.StatsServiceParams{
		Stats:   statsRepo,
		Reports: reportSvc,
		Cache:   redisClient,
		Config:  cfg.Stats,
		Metrics: metricsSvc,
		Logger:  logr,
	})

	categorySvc := service.NewCategoryService(categoryRepo, nil, logr)
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, reportRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if local, ok := blobs.(*storage.LocalBlobStore); ok {
		r.Static("/media", local.BaseDir())
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authSvc, handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Reports:       handler.NewReportHandler(reportSvc, statsSvc, metricsSvc),
		Comments:      handler.NewCommentHandler(commentSvc, metricsSvc),
		Categories:    handler.NewCategoryHandler(categorySvc),
		Subscriptions: handler.NewSubscriptionHandler(subscriptionSvc),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
