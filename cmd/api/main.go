package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielolamide0/WurldMarket-sub001/gen/docs/swagger"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/app"
	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/config"
)

// @title WurldMarket Auth API
// @version 1.0
// @description Account login, verification codes and credential migration for the WurldMarket marketplace.
// @BasePath /
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if base := cfg.App.APIBasePath(); base != "" {
		swagger.SwaggerInfo.BasePath = base
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Printf("application stopped: %v", err)
		os.Exit(1)
	}
}
