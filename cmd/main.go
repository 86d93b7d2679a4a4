package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/memeforge/memeforge/internal/app"
	"github.com/memeforge/memeforge/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()

	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	if err := app.EnsureDirs(cfg); err != nil {
		log.Fatal("Could not prepare working directories", "error", err)
	}

	if cfg.Segmind.APIKey == "" {
		log.Warn("SEGMIND_API_KEY is not set; meme generation will be disabled")
	}

	router := app.Build(log, cfg)

	log.Info("Server listening", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
