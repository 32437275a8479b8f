package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"expensero/internal/api"
	"expensero/internal/api/handlers"
	"expensero/internal/repository"
	"expensero/internal/service"
	"expensero/pkg/auth"
	"expensero/pkg/config"
	"expensero/pkg/logger"
	"expensero/pkg/postgres"

	"go.uber.org/zap"
)

// @title Expensero API
// @version 1.0
// @description Expense management backend with AI receipt extraction

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting expensero service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	expenseRepo := repository.NewExpenseRepository(db, appLogger)

	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	authService := service.NewAuthService(userRepo, jwtManager, appLogger)

	visionService, err := service.NewVisionService(&cfg.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize vision service", zap.Error(err))
	}

	extractionService := service.NewExtractionService(visionService, appLogger)
	expenseService := service.NewExpenseService(expenseRepo, appLogger)

	authHandler := handlers.NewAuthHandler(authService, appLogger)
	extractHandler := handlers.NewExtractHandler(extractionService, appLogger)
	expenseHandler := handlers.NewExpenseHandler(expenseService, appLogger)

	app := api.SetupRouter(authHandler, extractHandler, expenseHandler, jwtManager, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
