package app

import (
	"github.com/memeforge/memeforge/internal/platform/envutil"
	"github.com/memeforge/memeforge/internal/platform/logger"
	"github.com/memeforge/memeforge/internal/platform/segmind"
)

type Config struct {
	Port         string
	TemplatesDir string
	UploadsDir   string
	OutputDir    string
	WebDir       string

	Segmind segmind.Config
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:         envutil.Str("PORT", "5000"),
		TemplatesDir: envutil.Str("TEMPLATES_DIR", "./assets/templates"),
		UploadsDir:   envutil.Str("UPLOADS_DIR", "./uploads"),
		OutputDir:    envutil.Str("OUTPUT_DIR", "./public/memes"),
		WebDir:       envutil.Str("WEB_DIR", "./web"),
		Segmind:      segmind.ConfigFromEnv(),
	}
	log.Debug("Configuration loaded",
		"port", cfg.Port,
		"templates_dir", cfg.TemplatesDir,
		"uploads_dir", cfg.UploadsDir,
		"output_dir", cfg.OutputDir,
	)
	return cfg
}
