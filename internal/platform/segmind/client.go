package segmind

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/memeforge/memeforge/internal/platform/envutil"
	"github.com/memeforge/memeforge/internal/platform/logger"
)

var (
	// ErrUnconfigured means no API key is present; generation is disabled.
	ErrUnconfigured = errors.New("segmind API key is not configured")

	// ErrEmptyResponse means the remote call succeeded but carried no video bytes.
	ErrEmptyResponse = errors.New("segmind returned an empty video payload")
)

// RejectionError is a non-success status from the Segmind API.
type RejectionError struct {
	StatusCode int
	Body       string
}

func (e *RejectionError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("segmind rejected the API key (status %d): %s", e.StatusCode, e.Body)
	case e.StatusCode == http.StatusTooManyRequests:
		return fmt.Sprintf("segmind rate limit exceeded (status %d): %s", e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("segmind request failed (status %d): %s", e.StatusCode, e.Body)
	}
}

// GenerateRequest carries one image-to-video generation call.
type GenerateRequest struct {
	ImageBytes []byte
	ImageMIME  string
	Prompt     string
	Params     Params
}

// Params are the inference knobs sent to the model.
type Params struct {
	Sampler         string
	Steps           int
	GuidanceScale   float64
	Seed            int64
	Width           int
	Height          int
	MotionIntensity int
	FPS             int
	DurationSeconds int
}

// Client is the image-to-video generation capability. The HTTP implementation
// talks to Segmind; tests substitute their own.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) ([]byte, error)
	Available() bool
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:  strings.TrimSpace(os.Getenv("SEGMIND_API_KEY")),
		BaseURL: envutil.Str("SEGMIND_BASE_URL", "https://api.segmind.com"),
		Model:   envutil.Str("SEGMIND_MODEL", "svd-img2video"),
		Timeout: envutil.Seconds("SEGMIND_TIMEOUT_SECONDS", 120*time.Second),
	}
}

func NewFromEnv(log *logger.Logger) Client {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.segmind.com"
	}
	if cfg.Model == "" {
		cfg.Model = "svd-img2video"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &client{
		log:        log.With("client", "SegmindClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func (c *client) Available() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

type generateBody struct {
	Image           string  `json:"image"`
	Prompt          string  `json:"prompt,omitempty"`
	Sampler         string  `json:"sampler"`
	Steps           int     `json:"steps"`
	GuidanceScale   float64 `json:"guidance_scale"`
	Seed            int64   `json:"seed"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	MotionBucketID  int     `json:"motion_bucket_id"`
	FPS             int     `json:"fps"`
	DurationSeconds int     `json:"duration"`
	Base64          bool    `json:"base64"`
}

// Generate sends one image-to-video call and returns the raw video bytes.
// A single attempt only; the caller surfaces failures to the user.
func (c *client) Generate(ctx context.Context, req GenerateRequest) ([]byte, error) {
	if !c.Available() {
		return nil, ErrUnconfigured
	}
	if len(req.ImageBytes) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}

	mimeType := req.ImageMIME
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(req.ImageBytes))

	body := generateBody{
		Image:           dataURL,
		Prompt:          req.Prompt,
		Sampler:         req.Params.Sampler,
		Steps:           req.Params.Steps,
		GuidanceScale:   req.Params.GuidanceScale,
		Seed:            req.Params.Seed,
		Width:           req.Params.Width,
		Height:          req.Params.Height,
		MotionBucketID:  req.Params.MotionIntensity,
		FPS:             req.Params.FPS,
		DurationSeconds: req.Params.DurationSeconds,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal segmind request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + "/v1/" + c.cfg.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build segmind request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("segmind transport failure: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, &RejectionError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	video, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read segmind response: %w", err)
	}
	if len(video) == 0 {
		return nil, ErrEmptyResponse
	}

	c.log.Info("Segmind generation complete",
		"model", c.cfg.Model,
		"bytes", len(video),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return video, nil
}
