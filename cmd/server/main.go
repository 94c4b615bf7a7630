package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soundscape-server/internal/analysis"
	"soundscape-server/internal/config"
	"soundscape-server/internal/handler"
	"soundscape-server/internal/messaging"
	"soundscape-server/internal/middleware"
	"soundscape-server/internal/oracle"
	"soundscape-server/internal/patterns"
	"soundscape-server/internal/repository"
	"soundscape-server/internal/service"
	"soundscape-server/pkg/database"
	sharedLogger "soundscape-server/pkg/logger"
	"soundscape-server/pkg/migration"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		Development: cfg.Env == "development",
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	cfg.LogSummary(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Analysis engine ---
	set, err := patterns.Load(cfg.PatternsFile)
	if err != nil {
		logger.Fatal("Failed to load pattern configuration", zap.String("path", cfg.PatternsFile), zap.Error(err))
	}
	engineOpts, err := cfg.EngineOptions(logger)
	if err != nil {
		logger.Fatal("Invalid analysis configuration", zap.Error(err))
	}
	engine := analysis.NewEngine(set, engineOpts...)

	emotions, err := oracle.New(cfg.OracleConfig(), logger)
	if err != nil {
		logger.Fatal("Failed to create emotion oracle", zap.Error(err))
	}

	// --- External connections ---
	var pgPool *pgxpool.Pool
	if cfg.DBHost != "" {
		pgPool, err = database.NewPostgresPool(ctx, database.PostgresConfig{
			DSN:         cfg.GetDSN(),
			MaxConns:    cfg.DBMaxConns,
			IdleTimeout: cfg.DBIdleTimeout,
		}, database.DefaultRetryPolicy, logger)
		if err != nil {
			logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer pgPool.Close()

		if cfg.DBAutoMigrate {
			migrator := migration.NewMigrator(migration.Config{
				MigrationsFS:   repository.MigrationsFS,
				MigrationsPath: repository.MigrationsDir,
			}, pgPool, logger)
			if err := migrator.Up(ctx); err != nil {
				logger.Fatal("Failed to apply database migrations", zap.Error(err))
			}
		}
	} else {
		logger.Warn("DB_HOST is not set, book-addressed requests will answer 503")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, database.DefaultRetryPolicy, logger)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	// --- Dependency injection ---
	var content repository.ContentProvider
	if pgPool != nil {
		content = repository.NewPgContentRepository(pgPool, logger)
		if redisClient != nil {
			content = repository.NewRedisContentCache(content, redisClient, cfg.ContentCacheTTL, logger)
		}
	}
	soundscapeService := service.NewSoundscapeService(engine, content, emotions, logger)

	// --- Batch consumer ---
	var consumer *messaging.AnalysisTaskConsumer
	if cfg.RabbitMQURL != "" {
		mqConn, err := database.ConnectRabbitMQ(ctx, cfg.RabbitMQURL, database.DefaultRetryPolicy, logger)
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer closeRabbitMQ(mqConn, logger)

		publisher, err := messaging.NewRabbitMQResultPublisher(mqConn, cfg.AnalysisResultQueue, logger)
		if err != nil {
			logger.Fatal("Failed to create result publisher", zap.Error(err))
		}
		defer publisher.Close()

		consumer, err = messaging.NewAnalysisTaskConsumer(mqConn, cfg.AnalysisTaskQueue, soundscapeService, publisher, logger)
		if err != nil {
			logger.Fatal("Failed to create AnalysisTaskConsumer", zap.Error(err))
		}
		go func() {
			if err := consumer.StartConsuming(); err != nil {
				logger.Error("AnalysisTaskConsumer stopped with error", zap.Error(err))
				return
			}
			logger.Info("AnalysisTaskConsumer stopped gracefully")
		}()
	}

	// --- HTTP server ---
	router := newRouter(cfg, soundscapeService, redisClient, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	logger.Info("Shutting down server...")

	if consumer != nil {
		_ = consumer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exiting")
}

func newRouter(cfg *config.Config, svc service.SoundscapeService, redisClient *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(middleware.ZapLoggingMiddlewareForGin(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	p := ginprometheus.NewPrometheus("gin")

	handler.NewSoundscapeHandler(svc, middleware.DefaultMaxBodyBytes, logger).
		RegisterRoutes(router, rateLimitMiddleware(cfg, redisClient))

	// После регистрации роутов, чтобы /metrics не попал под rate limit
	p.Use(router)
	return router
}

// rateLimitMiddleware ограничивает /api/v1 по IP. Без Redis счетчики хранятся в памяти процесса.
func rateLimitMiddleware(cfg *config.Config, redisClient *redis.Client) gin.HandlerFunc {
	var store ratelimit.Store
	if redisClient != nil {
		store = ratelimit.RedisStore(&ratelimit.RedisOptions{
			RedisClient: redisClient,
			Rate:        time.Minute,
			Limit:       cfg.RateLimitPerMinute,
		})
	} else {
		store = ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
			Rate:  time.Minute,
			Limit: cfg.RateLimitPerMinute,
		})
	}

	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			zap.L().Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			c.String(http.StatusTooManyRequests, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

func closeRabbitMQ(conn *amqp.Connection, logger *zap.Logger) {
	if err := conn.Close(); err != nil {
		logger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
	}
}
