package server

import (
	"github.com/gin-gonic/gin"

	"github.com/memeforge/memeforge/internal/http/handlers"
	"github.com/memeforge/memeforge/internal/http/middleware"
	"github.com/memeforge/memeforge/internal/platform/logger"
	"github.com/memeforge/memeforge/internal/services"
)

type RouterConfig struct {
	Log           *logger.Logger
	HealthHandler *handlers.HealthHandler
	MemeHandler   *handlers.MemeHandler

	OutputDir string
	WebDir    string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.CORS())

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	// Canonical routes.
	router.GET("/meme-templates", cfg.MemeHandler.ListTemplates)
	router.POST("/generate-meme", cfg.MemeHandler.GenerateMeme)
	router.GET("/ai-status", cfg.MemeHandler.AIStatus)
	router.GET("/check-file/:filename", cfg.MemeHandler.CheckFile)
	router.GET("/list-files", cfg.MemeHandler.ListFiles)

	// Legacy aliases: same handlers on the old /api paths, so responses and
	// status codes are identical by construction.
	api := router.Group("/api")
	{
		api.GET("/meme-templates", cfg.MemeHandler.ListTemplates)
		api.POST("/generate-meme", cfg.MemeHandler.GenerateMeme)
		api.GET("/ai-status", cfg.MemeHandler.AIStatus)
		api.GET("/check-file/:filename", cfg.MemeHandler.CheckFile)
		api.GET("/list-files", cfg.MemeHandler.ListFiles)
	}

	// Generated videos, plus the legacy /output mount for old clients.
	router.Static(services.PublicPrefix, cfg.OutputDir)
	router.Static("/output", cfg.OutputDir)

	if cfg.WebDir != "" {
		router.StaticFile("/", cfg.WebDir+"/index.html")
		router.StaticFile("/app.js", cfg.WebDir+"/app.js")
		router.StaticFile("/style.css", cfg.WebDir+"/style.css")
	}

	return router
}
