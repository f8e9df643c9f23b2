package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/skillswap-api/api/swagger"
	"github.com/noah-isme/skillswap-api/internal/handler"
	"github.com/noah-isme/skillswap-api/internal/middleware"
	"github.com/noah-isme/skillswap-api/internal/models"
	"github.com/noah-isme/skillswap-api/internal/repository"
	"github.com/noah-isme/skillswap-api/internal/service"
	"github.com/noah-isme/skillswap-api/pkg/cache"
	"github.com/noah-isme/skillswap-api/pkg/config"
	"github.com/noah-isme/skillswap-api/pkg/database"
	"github.com/noah-isme/skillswap-api/pkg/jobs"
	"github.com/noah-isme/skillswap-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/skillswap-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/skillswap-api/pkg/middleware/requestid"
)

// @title SkillSwap API
// @version 1.0.0
// @description Peer-to-peer skill exchange marketplace
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
		logr.Sugar().Warnw("redis unavailable, analytics cache disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	swapRepo := repository.NewSwapRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	notifier := service.NewNotifier(notificationRepo, logr, jobs.QueueConfig{
		Workers:    cfg.Notifier.Workers,
		BufferSize: cfg.Notifier.BufferSize,
	})
	notifier.Start(ctx)
	defer notifier.Stop()

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "skillswap-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	swapSvc := service.NewSwapService(swapRepo, userRepo, validate, logr, cfg.Swaps.ResponseWindow,
		service.WithSwapNotifier(notifier))
	reviewSvc := service.NewReviewService(reviewRepo, swapRepo, validate, logr, notifier)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	adminSvc := service.NewAdminService(userRepo, swapRepo, reviewRepo, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheRepo, logr, cfg.Analytics.CacheTTL)
	exportSvc := service.NewExportService(analyticsRepo, logr, cfg.Exports.MaxRows)

	if cfg.Swaps.SweepEnabled {
		sweeper := service.NewExpirySweeper(swapRepo, logr, cfg.Swaps.SweepInterval)
		sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	swapHandler := handler.NewSwapHandler(swapSvc, metricsSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, analyticsSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	users := api.Group("/users")
	{
		users.GET("", userHandler.Search)
		users.PUT("/me", middleware.JWT(authSvc), userHandler.UpdateMe)
		users.GET("/:id", userHandler.Get)
		users.GET("/:id/reviews", reviewHandler.ListForUser)
	}

	swaps := api.Group("/swaps", middleware.JWT(authSvc))
	{
		swaps.POST("", swapHandler.Create)
		swaps.GET("", swapHandler.List)
		swaps.GET("/:id", swapHandler.Get)
		swaps.PUT("/:id", swapHandler.Update)
		swaps.DELETE("/:id", swapHandler.Delete)
		swaps.POST("/:id/accept", swapHandler.Accept)
		swaps.POST("/:id/reject", swapHandler.Reject)
		swaps.POST("/:id/cancel", swapHandler.Cancel)
		swaps.POST("/:id/complete", swapHandler.Complete)
		swaps.POST("/:id/reviews", reviewHandler.Create)
	}

	notifications := api.Group("/notifications", middleware.JWT(authSvc))
	{
		notifications.GET("", notificationHandler.List)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:id/ban", adminHandler.BanUser)
		admin.POST("/users/:id/unban", adminHandler.UnbanUser)
		admin.DELETE("/reviews/:id", adminHandler.DeleteReview)
		admin.GET("/analytics", adminHandler.Analytics)
		admin.GET("/export/swaps", adminHandler.ExportSwaps)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
