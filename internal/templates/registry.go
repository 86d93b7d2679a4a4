package templates

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/memeforge/memeforge/internal/platform/apierr"
	"github.com/memeforge/memeforge/internal/platform/logger"
)

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".avi":  true,
	".mkv":  true,
}

// OverlayRegion is the face placement hint for a template, in source pixels.
type OverlayRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Template is one source video the user can animate their photo into.
// Identity is the video filename; presence on disk is the whole lifecycle.
type Template struct {
	ID              string
	Name            string
	SourceVideoPath string
	PromptText      string
	Overlay         OverlayRegion

	// Provider parameter overrides from the sidecar, zero when unset.
	MotionIntensity int
	DurationSeconds int
	FPS             int
}

type Registry struct {
	log *logger.Logger
	dir string
}

func NewRegistry(log *logger.Logger, dir string) *Registry {
	return &Registry{
		log: log.With("service", "TemplateRegistry"),
		dir: dir,
	}
}

// sidecar is the optional <id>.json next to a template video.
type sidecar struct {
	Prompt          string         `json:"prompt"`
	Overlay         *OverlayRegion `json:"overlay"`
	MotionIntensity int            `json:"motion_intensity"`
	DurationSeconds int            `json:"duration_seconds"`
	FPS             int            `json:"fps"`
}

// List scans the template directory on every call, so dropping a video file
// into the directory is all it takes to publish a template.
func (r *Registry) List() ([]Template, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "template_dir_unreadable",
			fmt.Errorf("read template directory: %w", err))
	}
	out := make([]Template, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !videoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, r.build(e.Name()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Resolve confirms the identified template still exists on disk. Stale or
// malicious identifiers come back as a 404.
func (r *Registry) Resolve(id string) (*Template, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, apierr.New(http.StatusNotFound, "template_not_found",
			fmt.Errorf("unknown template %q", id))
	}
	if !videoExtensions[strings.ToLower(filepath.Ext(id))] {
		return nil, apierr.New(http.StatusNotFound, "template_not_found",
			fmt.Errorf("unknown template %q", id))
	}
	info, err := os.Stat(filepath.Join(r.dir, id))
	if err != nil || info.IsDir() {
		return nil, apierr.New(http.StatusNotFound, "template_not_found",
			fmt.Errorf("unknown template %q", id))
	}
	t := r.build(id)
	return &t, nil
}

func (r *Registry) build(id string) Template {
	t := Template{
		ID:              id,
		Name:            displayName(id),
		SourceVideoPath: filepath.Join(r.dir, id),
	}
	t.PromptText = t.Name
	r.applySidecar(&t)
	return t
}

func (r *Registry) applySidecar(t *Template) {
	base := strings.TrimSuffix(t.ID, filepath.Ext(t.ID))
	raw, err := os.ReadFile(filepath.Join(r.dir, base+".json"))
	if err != nil {
		return
	}
	var sc sidecar
	if err := json.Unmarshal(raw, &sc); err != nil {
		r.log.Warn("Ignoring malformed template sidecar", "template", t.ID, "error", err)
		return
	}
	if strings.TrimSpace(sc.Prompt) != "" {
		t.PromptText = strings.TrimSpace(sc.Prompt)
	}
	if sc.Overlay != nil {
		t.Overlay = *sc.Overlay
	}
	t.MotionIntensity = sc.MotionIntensity
	t.DurationSeconds = sc.DurationSeconds
	t.FPS = sc.FPS
}

func displayName(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}
