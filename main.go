package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/msafryx/carelum-backend/auth"
	"github.com/msafryx/carelum-backend/config"
	"github.com/msafryx/carelum-backend/controllers"
	"github.com/msafryx/carelum-backend/discovery"
	"github.com/msafryx/carelum-backend/logging"
	"github.com/msafryx/carelum-backend/metrics"
	"github.com/msafryx/carelum-backend/migrations"
	"github.com/msafryx/carelum-backend/observability"
	"github.com/msafryx/carelum-backend/routes"
	"github.com/msafryx/carelum-backend/security"
	"github.com/msafryx/carelum-backend/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	flushSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		logger.Warn("sentry init failed", zap.Error(err))
	}
	defer flushSentry()

	client, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() { _ = client.Close() }()

	if err := migrations.Up(client.DB()); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	logger.Info("database ready")

	provider := auth.NewHTTPProvider(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.ProviderTimeout)
	resolver := auth.NewResolver(provider, client, logger)
	engine := discovery.NewEngine(client)
	ct := controllers.New(client, engine, logger)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(security.CORSMiddleware())
	r.Use(metrics.Middleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")
	routes.Register(api, ct, resolver)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.CaptureErr(err)
		logger.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
