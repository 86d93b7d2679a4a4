package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/memeforge/memeforge/internal/platform/apierr"
)

// Settings are the user-tunable generation knobs carried in the multipart
// "settings" field. Every recognized field is enumerated here; anything else
// is rejected at the boundary.
type Settings struct {
	MotionIntensity int   `json:"motion_intensity"`
	DurationSeconds int   `json:"duration_seconds"`
	FPS             int   `json:"fps"`
	Seed            int64 `json:"seed"`
}

// ParseSettings decodes and validates the settings field. An empty field is
// fine and means defaults.
func ParseSettings(raw string) (Settings, error) {
	var s Settings
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Settings{}, apierr.New(http.StatusBadRequest, "malformed_settings",
			fmt.Errorf("malformed settings: %w", err))
	}
	if err := s.validate(); err != nil {
		return Settings{}, apierr.New(http.StatusBadRequest, "invalid_settings", err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.MotionIntensity < 0 || s.MotionIntensity > 255 {
		return fmt.Errorf("motion_intensity must be between 0 and 255")
	}
	if s.DurationSeconds < 0 || s.DurationSeconds > 10 {
		return fmt.Errorf("duration_seconds must be between 0 and 10")
	}
	if s.FPS < 0 || s.FPS > 60 {
		return fmt.Errorf("fps must be between 0 and 60")
	}
	if s.Seed < 0 {
		return fmt.Errorf("seed must not be negative")
	}
	return nil
}
