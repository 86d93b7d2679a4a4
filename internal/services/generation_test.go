package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/memeforge/memeforge/internal/intake"
	"github.com/memeforge/memeforge/internal/platform/logger"
	"github.com/memeforge/memeforge/internal/platform/segmind"
	"github.com/memeforge/memeforge/internal/store"
	"github.com/memeforge/memeforge/internal/templates"
)

type fakeProvider struct {
	video []byte
	err   error
	last  segmind.GenerateRequest
}

func (f *fakeProvider) Generate(ctx context.Context, req segmind.GenerateRequest) ([]byte, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.video, nil
}

func (f *fakeProvider) Available() bool { return true }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func stagedUpload(t *testing.T, payload []byte) *intake.Upload {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload-1.jpg")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("stage upload: %v", err)
	}
	return &intake.Upload{TempPath: path, MimeType: "image/jpeg", SizeBytes: int64(len(payload))}
}

func TestParseSettings(t *testing.T) {
	t.Parallel()

	s, err := ParseSettings("")
	if err != nil || s != (Settings{}) {
		t.Fatalf("empty settings should yield defaults: %+v %v", s, err)
	}

	s, err = ParseSettings(`{"motion_intensity": 200, "fps": 30, "seed": 7}`)
	if err != nil {
		t.Fatalf("ParseSettings: %v", err)
	}
	if s.MotionIntensity != 200 || s.FPS != 30 || s.Seed != 7 {
		t.Fatalf("unexpected settings: %+v", s)
	}

	for _, raw := range []string{
		"{broken",
		`{"unknown_knob": 1}`,
		`{"motion_intensity": 300}`,
		`{"duration_seconds": 99}`,
		`{"fps": -1}`,
		`{"seed": -5}`,
	} {
		if _, err := ParseSettings(raw); err == nil {
			t.Fatalf("ParseSettings(%q) should fail", raw)
		}
	}
}

func TestMergeParamsPrecedence(t *testing.T) {
	t.Parallel()
	tpl := &templates.Template{MotionIntensity: 180, FPS: 30, DurationSeconds: 6}

	p := mergeParams(tpl, Settings{})
	if p.MotionIntensity != 180 || p.FPS != 30 || p.DurationSeconds != 6 {
		t.Fatalf("template overrides not applied: %+v", p)
	}
	if p.Sampler != defaultSampler || p.Steps != defaultSteps {
		t.Fatalf("base params lost: %+v", p)
	}

	p = mergeParams(tpl, Settings{MotionIntensity: 90, Seed: 1234})
	if p.MotionIntensity != 90 {
		t.Fatalf("user setting should win over template: %+v", p)
	}
	if p.Seed != 1234 {
		t.Fatalf("explicit seed not applied: %+v", p)
	}

	p = mergeParams(&templates.Template{}, Settings{})
	if p.MotionIntensity != defaultMotionIntensity || p.FPS != defaultFPS || p.DurationSeconds != defaultDuration {
		t.Fatalf("defaults missing: %+v", p)
	}
}

func TestGenerateWritesUniqueArtifacts(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{video: []byte("video-bytes")}
	outputStore := store.New(testLogger(t), t.TempDir())
	g := NewGenerationService(testLogger(t), provider, outputStore)
	tpl := &templates.Template{ID: "psy_entrance.mp4", PromptText: "psy entrance"}

	first, err := g.Generate(context.Background(), stagedUpload(t, []byte("img")), tpl, Settings{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := g.Generate(context.Background(), stagedUpload(t, []byte("img")), tpl, Settings{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if first.Filename == second.Filename {
		t.Fatal("artifact filenames must be unique per request")
	}

	namePattern := regexp.MustCompile(`^meme-\d+-[0-9a-f]{8}\.mp4$`)
	for _, a := range []*Artifact{first, second} {
		if !namePattern.MatchString(a.Filename) {
			t.Fatalf("unexpected artifact name: %q", a.Filename)
		}
		if a.PublicURL != PublicPrefix+"/"+a.Filename {
			t.Fatalf("unexpected public url: %q", a.PublicURL)
		}
		size, err := outputStore.Stat(a.Filename)
		if err != nil || size == 0 {
			t.Fatalf("artifact %s should exist with nonzero size: %v", a.Filename, err)
		}
	}

	if provider.last.Prompt != "psy entrance" {
		t.Fatalf("template prompt not forwarded: %q", provider.last.Prompt)
	}
	if provider.last.ImageMIME != "image/jpeg" {
		t.Fatalf("upload mime not forwarded: %q", provider.last.ImageMIME)
	}
}

func TestGenerateLeavesNoArtifactOnProviderFailure(t *testing.T) {
	t.Parallel()
	provider := &fakeProvider{err: errors.New("boom")}
	outDir := t.TempDir()
	outputStore := store.New(testLogger(t), outDir)
	g := NewGenerationService(testLogger(t), provider, outputStore)

	_, err := g.Generate(context.Background(), stagedUpload(t, []byte("img")),
		&templates.Template{ID: "psy_entrance.mp4"}, Settings{})
	if err == nil {
		t.Fatal("expected provider failure to propagate")
	}
	entries, readErr := os.ReadDir(outDir)
	if readErr != nil {
		t.Fatalf("read output dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatal("failed generation must not leave files in the output store")
	}
}
