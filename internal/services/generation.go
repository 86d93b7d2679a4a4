package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/memeforge/memeforge/internal/intake"
	"github.com/memeforge/memeforge/internal/platform/logger"
	"github.com/memeforge/memeforge/internal/platform/segmind"
	"github.com/memeforge/memeforge/internal/store"
	"github.com/memeforge/memeforge/internal/templates"
)

// PublicPrefix is the static mount the output store is served under.
const PublicPrefix = "/memes"

// Base inference parameters; per-template sidecars and user settings
// override the motion, fps and duration knobs.
const (
	defaultSampler         = "euler_a"
	defaultSteps           = 25
	defaultGuidanceScale   = 7.5
	defaultWidth           = 1024
	defaultHeight          = 576
	defaultMotionIntensity = 127
	defaultFPS             = 24
	defaultDuration        = 4
)

// Artifact is one generated video, addressable through the public mount.
type Artifact struct {
	Filename  string
	Path      string
	PublicURL string
}

type GenerationService struct {
	log      *logger.Logger
	provider segmind.Client
	store    *store.Store
}

func NewGenerationService(log *logger.Logger, provider segmind.Client, st *store.Store) *GenerationService {
	return &GenerationService{
		log:      log.With("service", "GenerationService"),
		provider: provider,
		store:    st,
	}
}

// Generate runs one image-to-video call and persists the result. The artifact
// file only appears in the store after the provider returned a full payload,
// so the public namespace never exposes partial output.
func (g *GenerationService) Generate(ctx context.Context, up *intake.Upload, tpl *templates.Template, settings Settings) (*Artifact, error) {
	imageBytes, err := up.Bytes()
	if err != nil {
		return nil, err
	}

	params := mergeParams(tpl, settings)
	video, err := g.provider.Generate(ctx, segmind.GenerateRequest{
		ImageBytes: imageBytes,
		ImageMIME:  up.MimeType,
		Prompt:     tpl.PromptText,
		Params:     params,
	})
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("meme-%d-%s.mp4", time.Now().UnixMilli(), uuid.NewString()[:8])
	path, err := g.store.Write(filename, video)
	if err != nil {
		return nil, err
	}

	g.log.Info("Generated meme video",
		"template", tpl.ID,
		"filename", filename,
		"bytes", len(video),
	)
	return &Artifact{
		Filename:  filename,
		Path:      path,
		PublicURL: PublicPrefix + "/" + filename,
	}, nil
}

// mergeParams layers provider defaults, template sidecar overrides and the
// request settings, in that order.
func mergeParams(tpl *templates.Template, s Settings) segmind.Params {
	p := segmind.Params{
		Sampler:         defaultSampler,
		Steps:           defaultSteps,
		GuidanceScale:   defaultGuidanceScale,
		Seed:            rand.Int63(),
		Width:           defaultWidth,
		Height:          defaultHeight,
		MotionIntensity: defaultMotionIntensity,
		FPS:             defaultFPS,
		DurationSeconds: defaultDuration,
	}
	if tpl.MotionIntensity > 0 {
		p.MotionIntensity = tpl.MotionIntensity
	}
	if tpl.FPS > 0 {
		p.FPS = tpl.FPS
	}
	if tpl.DurationSeconds > 0 {
		p.DurationSeconds = tpl.DurationSeconds
	}
	if s.MotionIntensity > 0 {
		p.MotionIntensity = s.MotionIntensity
	}
	if s.FPS > 0 {
		p.FPS = s.FPS
	}
	if s.DurationSeconds > 0 {
		p.DurationSeconds = s.DurationSeconds
	}
	if s.Seed > 0 {
		p.Seed = s.Seed
	}
	return p
}
