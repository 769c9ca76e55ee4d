package main

import (
	"context"
	"go-rail-booking/config"
	"go-rail-booking/internal/cache"
	"go-rail-booking/internal/database"
	"go-rail-booking/internal/handler"
	"go-rail-booking/internal/middleware"
	"go-rail-booking/internal/queue"
	"go-rail-booking/internal/repository"
	"go-rail-booking/internal/service"
	"go-rail-booking/internal/worker"
	"log"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories
	trainRepo := repository.NewTrainRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewBookingEventRepository(pool)

	// Redis-backed collaborators
	routeCache := cache.NewRouteAvailabilityCache(rdb, 0)
	eventQueue, err := queue.NewRedisStreamEventQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize event queue: %v", err)
	}

	// Audit worker drains booking events into booking_events.
	auditWorker := worker.NewAuditWorker(eventRepo, eventQueue)
	if err := auditWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start audit worker: %v", err)
	}

	// Services
	authService := service.NewAuthService(userRepo, cfg.Auth)
	trainService := service.NewTrainService(pool, trainRepo, bookingRepo, routeCache, cfg.Database.LockTimeout)
	bookingService := service.NewBookingService(pool, bookingRepo, trainRepo, routeCache, eventQueue, cfg.Database.LockTimeout)

	// HTTP layer
	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	authMW := middleware.RequireAuth(authService)
	adminMW := middleware.RequireAdmin()

	handler.NewAuthHandler(authService).RegisterRoutes(router, authMW)
	handler.NewTrainHandler(trainService).RegisterRoutes(router, authMW, adminMW)
	handler.NewBookingHandler(bookingService).RegisterRoutes(router, authMW)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}
