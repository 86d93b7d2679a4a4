package app

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/memeforge/memeforge/internal/http/handlers"
	"github.com/memeforge/memeforge/internal/intake"
	"github.com/memeforge/memeforge/internal/platform/logger"
	"github.com/memeforge/memeforge/internal/platform/segmind"
	"github.com/memeforge/memeforge/internal/server"
	"github.com/memeforge/memeforge/internal/services"
	"github.com/memeforge/memeforge/internal/store"
	"github.com/memeforge/memeforge/internal/templates"
)

// EnsureDirs creates the working directories up front. A service that cannot
// stage uploads or persist artifacts must not start.
func EnsureDirs(cfg Config) error {
	for _, dir := range []string{cfg.UploadsDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Build wires the whole service together.
func Build(log *logger.Logger, cfg Config) *gin.Engine {
	provider := segmind.New(log, cfg.Segmind)
	registry := templates.NewRegistry(log, cfg.TemplatesDir)
	uploadIntake := intake.NewIntake(log, cfg.UploadsDir)
	outputStore := store.New(log, cfg.OutputDir)
	generator := services.NewGenerationService(log, provider, outputStore)

	memeHandler := handlers.NewMemeHandler(log, registry, uploadIntake, generator, outputStore, provider)
	healthHandler := handlers.NewHealthHandler()

	return server.NewRouter(server.RouterConfig{
		Log:           log,
		HealthHandler: healthHandler,
		MemeHandler:   memeHandler,
		OutputDir:     cfg.OutputDir,
		WebDir:        cfg.WebDir,
	})
}
