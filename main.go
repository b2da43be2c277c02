package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	"github.com/aniketsuryawanshi1/recipe-hub-api/config"
	"github.com/aniketsuryawanshi1/recipe-hub-api/controller"
	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	"github.com/aniketsuryawanshi1/recipe-hub-api/db"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/middleware"
	"github.com/aniketsuryawanshi1/recipe-hub-api/service"
	"github.com/aniketsuryawanshi1/recipe-hub-api/tasks"
	"github.com/aniketsuryawanshi1/recipe-hub-api/throttle"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	if err := db.InitPostgres(); err != nil {
		logger.Fatal("Failed to initialize Postgres", zap.Error(err))
	}
	defer db.ClosePostgres()

	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Event bus and cache invalidation.
	eventBus := util.NewEventBus()
	eventBus.Start(ctx)
	cache := db.NewCache(db.RedisClient, config.GetDuration("redis.defaultCacheTTL"))
	cacheService := util.NewCacheService(cache)
	cacheService.RegisterInvalidation(eventBus)

	// Audit trail.
	auditRepo, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
	if err != nil {
		logger.Fatal("Failed to initialize Elasticsearch", zap.Error(err))
	}
	auditSvc := audit.NewService(auditRepo)

	// Data access.
	userDAO := dao.NewUserDAO(db.Pool, auditSvc)
	categoryDAO := dao.NewCategoryDAO(db.Pool)
	recipeDAO := dao.NewRecipeDAO(db.Pool, auditSvc)
	ratingDAO := dao.NewRatingDAO(db.Pool, auditSvc)
	favoriteDAO := dao.NewFavoriteDAO(db.Pool, auditSvc)
	imageDAO := dao.NewImageDAO(db.Pool, auditSvc)

	// Background workers and scheduled jobs.
	imageProcessor := tasks.NewImageProcessor(
		config.GetInt("worker.imageQueueSize"),
		config.GetInt("worker.imageWorkers"),
		3)
	imageProcessor.Start(ctx)

	notification := util.NewNotificationService()
	scheduler, err := tasks.NewScheduler(
		tasks.NewDigestJob(userDAO, recipeDAO, notification),
		tasks.NewExportJob(userDAO, notification),
		tasks.NewCleanupJob())
	if err != nil {
		logger.Fatal("Failed to initialize scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Services.
	validation := util.NewValidationUtil()
	userService := service.NewUserService(userDAO, validation)
	recipeService := service.NewRecipeService(recipeDAO, categoryDAO, cacheService, eventBus, validation)
	ratingService := service.NewRatingService(ratingDAO, eventBus, validation)
	favoriteService := service.NewFavoriteService(favoriteDAO, eventBus)
	imageService := service.NewImageService(imageDAO, eventBus, validation, imageProcessor)

	// Throttle scopes. Authenticated endpoints compose all role scopes; a
	// principal is only ever counted under its own.
	limiter := db.NewSlidingWindowLimiter(db.RedisClient)
	window := config.GetDuration("throttle.window")
	roleThrottles := []throttle.Throttle{
		throttle.NewCustomerThrottle(limiter, config.GetInt("throttle.customer"), window),
		throttle.NewSellerThrottle(limiter, config.GetInt("throttle.seller"), window),
		throttle.NewAdminThrottle(limiter, config.GetInt("throttle.admin"), window),
	}
	anonThrottle := throttle.NewAnonThrottle(limiter, config.GetInt("throttle.anon"), window)

	// HTTP API.
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(), middleware.Auth())

	api := router.Group("/api")
	controller.NewAuthController(userService, auditSvc, anonThrottle).RegisterRoutes(api)
	controller.NewRecipeController(recipeService, auditSvc, roleThrottles...).RegisterRoutes(api)
	controller.NewRatingController(ratingService, recipeService, auditSvc, roleThrottles...).RegisterRoutes(api)
	controller.NewFavoriteController(favoriteService, recipeService, auditSvc, roleThrottles...).RegisterRoutes(api)
	controller.NewImageController(imageService, recipeService, auditSvc, roleThrottles...).RegisterRoutes(api)

	server := &http.Server{
		Addr:    ":" + config.GetString("server.port"),
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	imageProcessor.Stop()
}
