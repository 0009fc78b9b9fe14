package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/pulseplan/pulseplan-api/api/swagger"
	"github.com/pulseplan/pulseplan-api/internal/handler"
	"github.com/pulseplan/pulseplan-api/internal/middleware"
	"github.com/pulseplan/pulseplan-api/internal/repository"
	"github.com/pulseplan/pulseplan-api/internal/service"
	"github.com/pulseplan/pulseplan-api/pkg/cache"
	"github.com/pulseplan/pulseplan-api/pkg/config"
	"github.com/pulseplan/pulseplan-api/pkg/database"
	"github.com/pulseplan/pulseplan-api/pkg/jobs"
	"github.com/pulseplan/pulseplan-api/pkg/logger"
	corsmiddleware "github.com/pulseplan/pulseplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/pulseplan/pulseplan-api/pkg/middleware/requestid"
)

// @title PulsePlan API
// @version 0.1.0
// @description Engagement-driven scheduling optimizer
// @BasePath /
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}
	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analysis.SlotsCacheTTL, logr, redisClient != nil)

	engagementRepo := repository.NewEngagementRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	var analysisSvc *service.AnalysisService
	queue := jobs.NewQueue("engagement-analysis", func(ctx context.Context, job jobs.Job) error {
		return analysisSvc.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers: cfg.Analysis.WorkerConcurrency,
		Logger:  logr,
	})
	analysisSvc = service.NewAnalysisService(taskRepo, engagementRepo, slotRepo, queue, cacheSvc, metricsSvc, logr, service.AnalysisServiceConfig{
		ScoreScale:        cfg.Analysis.ScoreScale,
		ConfidenceSamples: cfg.Analysis.ConfidenceSamples,
		TopSlotsPerDay:    cfg.Analysis.TopSlotsPerDay,
		MaxRecords:        cfg.Analysis.MaxRecords,
		StaleTaskCeiling:  cfg.Analysis.StaleTaskCeiling,
	})
	slotSvc := service.NewSlotService(slotRepo, cacheSvc, logr, service.SlotServiceConfig{
		ScoreScale: cfg.Analysis.ScoreScale,
		CacheTTL:   cfg.Analysis.SlotsCacheTTL,
	})
	calendarSvc := service.NewCalendarService(calendarRepo, metricsSvc, logr, cfg.Calendar.MaxPageSize)
	authSvc := service.NewAuthService(cfg.JWT.Secret)

	queue.Start(ctx)
	defer queue.Stop()
	analysisSvc.RecoverPending(ctx)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.Analysis.SweepSchedule, func() {
		analysisSvc.SweepStale(ctx)
	}); err != nil {
		logr.Sugar().Fatalw("invalid sweep schedule", "schedule", cfg.Analysis.SweepSchedule, "error", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
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

	analysisHandler := handler.NewAnalysisHandler(analysisSvc)
	slotHandler := handler.NewSlotHandler(slotSvc)
	insightHandler := handler.NewInsightHandler(slotSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.POST("/analysis", analysisHandler.Request)
		api.GET("/analysis/status", analysisHandler.Status)

		api.GET("/slots", slotHandler.List)
		api.GET("/slots/export", slotHandler.Export)

		api.GET("/insights", insightHandler.Get)

		api.GET("/events", calendarHandler.List)
		api.POST("/events", calendarHandler.Create)
		api.GET("/events/:id", calendarHandler.Get)
		api.PUT("/events/:id", calendarHandler.Update)
		api.DELETE("/events/:id", calendarHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
