package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"fittrack/internal/clock"
	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/kvstore"
	"fittrack/internal/logger"
	"fittrack/internal/metrics"
	"fittrack/internal/notify"
	"fittrack/internal/password"
	"fittrack/internal/ratelimit"
	"fittrack/internal/registry"
	"fittrack/internal/server"
	"fittrack/internal/services"
	"fittrack/internal/token"
	"fittrack/internal/validator"
)

// @title           FitTrack API
// @version         1.0
// @description     FitTrack records workouts, nutrition, water and weight, and turns them into streaks and achievements.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

// @securityDefinitions.apikey CSRFToken
// @in header
// @name X-CSRF-Token
// @description CSRF value returned with the session token.

func main() {
	// Initialize logger (use APP_ENV if available, default to development)
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()
	ctx := context.Background()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	db := dbManager.DB()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metricsManager := metrics.NewManager("fittrack", reg)

	clk := clock.Real()

	// Key-value store and rate limiter
	var store kvstore.Store
	var limiter ratelimit.Limiter
	switch appConfig.StoreDriver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = kvstore.NewRedis(client, appConfig.RedisPrefix)
		limiter = ratelimit.NewRedis(client, appConfig.RedisPrefix+"ratelimit:", appConfig.MaxLoginAttempts, appConfig.AttemptWindow)
	case "memory", "sql":
		if appConfig.StoreDriver == "memory" {
			store = kvstore.NewMemory()
		} else {
			store = kvstore.NewSQL(db)
		}
		mem := ratelimit.NewMemory(appConfig.MaxLoginAttempts, appConfig.AttemptWindow, clk)
		go pruneLoop(mem, appConfig.AttemptWindow)
		limiter = mem
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", appConfig.StoreDriver)
	}
	log.Infow("Key-value store ready", "driver", appConfig.StoreDriver)

	// User registry
	users := registry.New(store)
	if err := users.Load(ctx); err != nil {
		return fmt.Errorf("failed to load user registry: %w", err)
	}
	log.Infow("User registry loaded", "users", users.Len())

	// Initialize services
	tokens := token.NewManager(token.Config{
		Secret:      appConfig.SessionSecret,
		ResetSecret: appConfig.ResetSecret,
		SessionTTL:  appConfig.SessionTTL,
		RememberTTL: appConfig.RememberTTL,
		ResetTTL:    appConfig.ResetTTL,
	}, clk)

	authService := services.NewAuthService(services.AuthDeps{
		Users:    users,
		Consumed: registry.NewConsumedTokens(store),
		Tokens:   tokens,
		Hasher:   password.NewHasher(appConfig.PasswordIterations),
		Notifier: notify.NewLogNotifier(log),
		Clock:    clk,
		Metrics:  metricsManager,
		Config: services.AuthConfig{
			MaxLoginAttempts: appConfig.MaxLoginAttempts,
			AttemptWindow:    appConfig.AttemptWindow,
			LockoutDuration:  appConfig.LockoutDuration,
			TwoFactorTTL:     appConfig.TwoFactorTTL,
		},
	})
	activityService := services.NewActivityService(db)
	progressService := services.NewProgressService(db, clk, appConfig.Location(), metricsManager)
	auditService := services.NewAuditService(db)

	validator.Register()

	router := server.NewRouter(server.Deps{
		Auth:           authService,
		Activity:       activityService,
		Progress:       progressService,
		Audit:          auditService,
		AuthLimiter:    limiter,
		Metrics:        metricsManager,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		MetricsAPIKey:  appConfig.MetricsAPIKey,
	})

	log.Infof("Starting FitTrack server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// pruneLoop drops idle rate-limit entries once per window.
func pruneLoop(limiter *ratelimit.Memory, window time.Duration) {
	ticker := time.NewTicker(window)
	defer ticker.Stop()
	for range ticker.C {
		if n := limiter.Prune(); n > 0 {
			logger.Get().Debugw("Pruned rate limit entries", "count", n)
		}
	}
}
