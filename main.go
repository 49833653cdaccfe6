package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/database"
	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/handlers"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/monitoring"
	"task-tracker/backend/internal/services"
	"task-tracker/backend/internal/store"
	"task-tracker/backend/internal/worker"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	poolConfig := &database.PoolConfig{
		DSN:             cfg.GetDatabaseDSN(),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		LogLevel:        logger.Warn,
	}
	pool, err := database.NewDatabasePool(poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.DB.AutoMigrate(&models.Task{}, &models.User{}); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	cacheConfig := &cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisCache := cache.NewRedisCache(cacheConfig)
	defer redisCache.Close()

	if err := redisCache.Health(); err != nil {
		log.Printf("Redis unavailable at startup, continuing degraded: %v", err)
	}

	jobQueue := worker.NewJobQueue(redisCache.Client())
	auditWorker := worker.NewWorker(worker.WorkerConfig{
		RedisClient: redisCache.Client(),
		Queues:      cfg.Worker.Queues,
	})
	auditWorker.RegisterHandler(worker.JobTypeLinkAudit, worker.LogLinkAudit)
	auditWorker.Start(cfg.Worker.Concurrency)
	defer auditWorker.Stop()

	taskStore := store.NewTaskStore(pool.DB)
	userStore := store.NewUserStore(pool.DB)

	eng := engine.New(taskStore, userStore,
		engine.WithAuditSink(monitoring.NewCountingSink(jobQueue)))

	taskService := services.NewCachedTaskService(services.NewTaskService(eng, taskStore), redisCache)
	userService := services.NewCachedUserService(services.NewUserService(eng, userStore), redisCache)

	monitoring.RegisterHealthCheck("database", func(ctx context.Context) error {
		return pool.Health()
	})
	monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
		return redisCache.Health()
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(monitoring.MetricsMiddleware())

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstSize,
			cfg.RateLimit.CleanupInterval,
		)
		defer limiter.Stop()
		router.Use(limiter.Middleware())
	}

	api := router.Group("/api")
	handlers.NewTaskHandler(taskService).RegisterRoutes(api)
	handlers.NewUserHandler(userService).RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "OK", "data": nil})
	})
	router.GET("/metrics", monitoring.MetricsHandler())
	router.GET("/health", monitoring.HealthHandler())
	router.GET("/ready", monitoring.ReadinessHandler())
	router.GET("/live", monitoring.LivenessHandler())

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
