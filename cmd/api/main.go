package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/account"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/cache"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/collections"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/config"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/database"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/generator"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/logging"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/metrics"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/middleware"
	"github.com/VrajDobariya82/Text-to-image-convertor-server/internal/tracing"
)

type API struct {
	accounts     *account.Service
	generator    *generator.Service
	collections  *collections.Service
	userCache    *cache.Cache
	cacheTTL     time.Duration
	db           *database.DB
	logger       *logging.Logger
	maxBodyBytes int64
}

func main() {
	// CONFIG_PATH is optional; without it the config comes from env vars
	// and defaults
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(logging.Config(cfg.Logging))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}
	middleware.SetJWTSecret(cfg.Auth.JWTSecret)

	// Tracing
	if cfg.Tracing.Enabled {
		_, closer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			logger.Fatalf("Failed to initialize tracer: %v", err)
		}
		defer closer.Close()
	}

	// Database
	db, err := database.New(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	// Cache is optional; without Redis every read goes to the store
	userCache, err := cache.NewCache(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, running without user cache")
		userCache = nil
	} else {
		defer userCache.Close()
	}

	// External provider
	provider := generator.NewClient(cfg.Provider, logger)
	if !provider.Usable() {
		logger.Warn("Provider API key missing or malformed, all generations will use the fallback image")
	}

	api := &API{
		accounts:     account.NewService(repo, logger, cfg.Auth.TokenTTL),
		generator:    generator.NewService(repo, provider, logger),
		collections:  collections.NewService(repo, logger),
		userCache:    userCache,
		cacheTTL:     cfg.Redis.TTL,
		db:           db,
		logger:       logger,
		maxBodyBytes: cfg.Server.MaxBodyBytes,
	}

	// Metrics server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.ErrorWithErr("Metrics server failed", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(ctx)
		}()
	}

	// Setup router
	router := setupRouter(api)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server running on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

func setupRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(api.logger))
	router.Use(middleware.CORS())
	router.Use(middleware.BodyLimit(api.maxBodyBytes))

	// Root and health
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API running")
	})
	router.GET("/health", api.healthCheck)

	users := router.Group("/api/users")
	{
		users.POST("/register", api.registerUser)
		users.POST("/login", api.loginUser)

		authed := users.Group("", middleware.JWTAuth())
		{
			authed.GET("/verify", api.verifySession)
			authed.GET("/profile", api.getUserProfile)
			authed.GET("/credits", api.getUserCredits)

			authed.POST("/favorites", api.addFavorite)
			authed.GET("/favorites", api.getFavorites)
			authed.DELETE("/favorites/:id", api.removeFavorite)

			authed.POST("/history", api.addHistory)
			authed.GET("/history", api.getHistory)
		}
	}

	images := router.Group("/api/images", middleware.JWTAuth())
	{
		images.POST("/generate-image", api.generateImage)
	}

	return router
}

// Health check endpoint
func (api *API) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if api.db != nil {
		if err := api.db.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
	}

	status := gin.H{"status": "healthy"}
	if api.userCache != nil {
		if err := api.userCache.Ping(ctx); err != nil {
			// Cache loss degrades reads but the API still works
			status["cache"] = "unavailable"
		}
	}

	c.JSON(http.StatusOK, status)
}
