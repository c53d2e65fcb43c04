package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"launchdash/internal/api"
	"launchdash/internal/api/handlers"
	"launchdash/internal/service"
	"launchdash/pkg/config"
	"launchdash/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting launchdash service",
		zap.String("financeSource", cfg.Sources.FinanceWorkbookURL),
		zap.String("taskSource", cfg.Sources.TaskExportURL))

	// One shared client for the outbound source fetches; the pipelines
	// themselves hold no other state between requests.
	client := &http.Client{Timeout: cfg.Sources.FetchTimeout}

	// Initialize services
	financeService := service.NewFinanceService(&cfg.Sources, client, appLogger)
	taskService := service.NewTaskService(&cfg.Sources, client, appLogger)

	// Initialize handlers
	financeHandler := handlers.NewFinanceHandler(financeService, appLogger)
	taskHandler := handlers.NewTaskHandler(taskService, appLogger)

	// Setup router
	app := api.SetupRouter(&cfg.Server, financeHandler, taskHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
