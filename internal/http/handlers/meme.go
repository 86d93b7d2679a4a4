package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/memeforge/memeforge/internal/http/response"
	"github.com/memeforge/memeforge/internal/intake"
	"github.com/memeforge/memeforge/internal/platform/apierr"
	"github.com/memeforge/memeforge/internal/platform/logger"
	"github.com/memeforge/memeforge/internal/platform/segmind"
	"github.com/memeforge/memeforge/internal/services"
	"github.com/memeforge/memeforge/internal/store"
	"github.com/memeforge/memeforge/internal/templates"
)

type MemeHandler struct {
	log       *logger.Logger
	registry  *templates.Registry
	intake    *intake.Intake
	generator *services.GenerationService
	store     *store.Store
	provider  segmind.Client
}

func NewMemeHandler(
	log *logger.Logger,
	registry *templates.Registry,
	in *intake.Intake,
	generator *services.GenerationService,
	st *store.Store,
	provider segmind.Client,
) *MemeHandler {
	return &MemeHandler{
		log:       log.With("handler", "MemeHandler"),
		registry:  registry,
		intake:    in,
		generator: generator,
		store:     st,
		provider:  provider,
	}
}

// GET /meme-templates
func (h *MemeHandler) ListTemplates(c *gin.Context) {
	list, err := h.registry.List()
	if err != nil {
		h.log.Error("Template listing failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, errors.New("failed to list meme templates"))
		return
	}
	out := make([]gin.H, 0, len(list))
	for _, t := range list {
		out = append(out, gin.H{"id": t.ID, "name": t.Name})
	}
	response.RespondOK(c, gin.H{"templates": out})
}

// POST /generate-meme
//
// Multipart fields: "image" (file), "template" (string), "settings"
// (JSON-encoded string, optional). The staged upload is released on every
// exit path.
func (h *MemeHandler) GenerateMeme(c *gin.Context) {
	up, err := h.intake.Accept(c)
	if err != nil {
		response.RespondError(c, apierr.StatusOf(err, http.StatusBadRequest), err)
		return
	}
	defer up.Release()

	templateID := strings.TrimSpace(c.PostForm("template"))
	if templateID == "" {
		response.RespondError(c, http.StatusBadRequest, fmt.Errorf("missing template field"))
		return
	}
	tpl, err := h.registry.Resolve(templateID)
	if err != nil {
		response.RespondError(c, apierr.StatusOf(err, http.StatusNotFound), err)
		return
	}

	settings, err := services.ParseSettings(c.PostForm("settings"))
	if err != nil {
		response.RespondError(c, apierr.StatusOf(err, http.StatusBadRequest), err)
		return
	}

	artifact, err := h.generator.Generate(c.Request.Context(), up, tpl, settings)
	if err != nil {
		h.log.Error("Generation failed", "template", tpl.ID, "error", err)
		response.RespondProviderError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"url":     artifact.PublicURL,
		"method":  "segmind",
		"success": true,
	})
}

// GET /ai-status
func (h *MemeHandler) AIStatus(c *gin.Context) {
	if h.provider.Available() {
		response.RespondOK(c, gin.H{
			"available": true,
			"message":   "AI video generation is available",
		})
		return
	}
	response.RespondOK(c, gin.H{
		"available": false,
		"message":   "AI video generation is disabled: no API key configured",
	})
}

// GET /check-file/:filename
func (h *MemeHandler) CheckFile(c *gin.Context) {
	filename := c.Param("filename")
	if err := store.ValidateFilename(filename); err != nil || !h.store.Exists(filename) {
		response.RespondOK(c, gin.H{"exists": false})
		return
	}
	size, err := h.store.Stat(filename)
	if err != nil {
		response.RespondOK(c, gin.H{"exists": false})
		return
	}
	response.RespondOK(c, gin.H{
		"exists":    true,
		"size":      size,
		"path":      h.store.Path(filename),
		"publicUrl": services.PublicPrefix + "/" + filename,
	})
}

// GET /list-files
func (h *MemeHandler) ListFiles(c *gin.Context) {
	files, err := h.store.List()
	if err != nil {
		h.log.Error("Output listing failed", "error", err)
		response.RespondError(c, http.StatusInternalServerError, errors.New("failed to list generated files"))
		return
	}
	response.RespondOK(c, gin.H{
		"files": files,
		"count": len(files),
	})
}
