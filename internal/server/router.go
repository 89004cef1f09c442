// Package server assembles the HTTP routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"fittrack/internal/handlers"
	"fittrack/internal/metrics"
	"fittrack/internal/middleware"
	"fittrack/internal/ratelimit"
	"fittrack/internal/services"

	_ "fittrack/internal/docs" // Import swagger docs
)

// Deps are the services and infrastructure the router is built from.
type Deps struct {
	Auth     services.AuthServicer
	Activity services.ActivityServicer
	Progress services.ProgressServicer
	Audit    services.AuditServicer

	// AuthLimiter throttles the public /auth routes per client IP.
	AuthLimiter ratelimit.Limiter
	Metrics     *metrics.Manager

	// MetricsHandler is served at /metrics behind MetricsAPIKey when set.
	MetricsHandler http.Handler
	MetricsAPIKey  string
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(d Deps) *gin.Engine {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Audit)
	activityHandler := handlers.NewActivityHandler(d.Activity, d.Audit)
	progressHandler := handlers.NewProgressHandler(d.Progress)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	if d.Metrics != nil {
		router.Use(middleware.RequestMetrics(d.Metrics))
	}
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.CSRFHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.MetricsHandler != nil {
		router.GET("/metrics", middleware.APIKeyMiddleware(d.MetricsAPIKey), gin.WrapH(d.MetricsHandler))
	}

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(d.AuthLimiter, "auth:", d.Metrics))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/2fa/verify", authHandler.VerifyTwoFactor)
	auth.POST("/password/forgot", authHandler.ForgotPassword)
	auth.POST("/password/verify", authHandler.VerifyResetCode)
	auth.POST("/password/reset", authHandler.ResetPassword)

	v1.GET("/progress/achievements", progressHandler.GetCatalogue)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(d.Auth))

	protected.GET("/auth/session", authHandler.Session)
	protected.POST("/auth/logout", authHandler.Logout)
	protected.PUT("/auth/2fa", authHandler.SetTwoFactor)
	protected.GET("/auth/activity", authHandler.Activity)

	workouts := protected.Group("/workouts")
	workouts.POST("", activityHandler.LogWorkout)
	workouts.GET("", activityHandler.ListWorkouts)
	workouts.DELETE("/:id", activityHandler.DeleteWorkout)

	nutrition := protected.Group("/nutrition")
	nutrition.POST("", activityHandler.LogNutrition)
	nutrition.GET("", activityHandler.ListNutrition)

	water := protected.Group("/water")
	water.POST("", activityHandler.LogWater)
	water.GET("", activityHandler.ListWater)

	weights := protected.Group("/weights")
	weights.POST("", activityHandler.LogWeight)
	weights.GET("", activityHandler.ListWeights)

	protected.GET("/profile", activityHandler.GetProfile)
	protected.PUT("/profile", activityHandler.UpdateProfile)

	protected.GET("/progress", progressHandler.GetProgress)
	protected.POST("/progress/preview", progressHandler.PreviewProgress)

	return router
}
