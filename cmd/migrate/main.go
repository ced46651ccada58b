package main

import (
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"flashdeck/internal/config"
	"flashdeck/internal/database"
	"flashdeck/internal/logger"
)

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg := config.Load()

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	zl.Info("database connection established", zap.String("type", cfg.DatabaseType))

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	zl.Info("migrations completed")
}
