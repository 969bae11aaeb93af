package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"medication-tracker-server/internal/config"
	"medication-tracker-server/internal/drugdata"
	"medication-tracker-server/internal/jobs"
	"medication-tracker-server/internal/middleware"
	"medication-tracker-server/internal/models"
	"medication-tracker-server/internal/routes"
	"medication-tracker-server/internal/tracker"
	"medication-tracker-server/internal/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file loaded", slog.Any("err", err))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Error loading config", slog.Any("err", err))
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("Error", slog.Any("err", err))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := models.InitDB(models.DatabaseConfig{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Silent: !cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("while connecting to database: %w", err)
	}

	var summarizer drugdata.Summarizer = drugdata.StaticSummarizer{}
	if cfg.OpenAI.APIKey != "" {
		summarizer = drugdata.NewOpenAISummarizer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		slog.Info("Drug summaries generated with OpenAI")
	}

	queue := jobs.NewQueue(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	queue.Start()
	dispatcher := jobs.NewDispatcher(
		queue,
		db,
		drugdata.NewSimulatedChecker(cfg.Jobs.InteractionProbability, uint64(time.Now().UnixNano())),
		drugdata.SimulatedLabels{},
		summarizer,
	)

	service := tracker.NewService(db, dispatcher)

	if err := utils.RegisterValidators(); err != nil {
		return fmt.Errorf("while registering validators: %w", err)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, service, cfg)

	server := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Port),
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("while serving: %w", err)
		}
	case sig := <-signalCh:
		slog.Info("Shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Error shutting down server", slog.Any("err", err))
	}
	if err := queue.Shutdown(ctx); err != nil {
		slog.Error("Background tasks did not finish", slog.Any("err", err))
	}
	return nil
}
