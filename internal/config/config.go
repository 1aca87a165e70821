package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"filter-forge/internal/logger"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultImagePath     = "input.jpg"
	DefaultBlurMaxRadius = 15
	DefaultBlurStride    = 1
	DefaultFrameRate     = 60
	DefaultMaxRenderDim  = 1024
	DefaultWindowWidth   = 1280
	DefaultWindowHeight  = 720
)

// Config holds process settings. Values come from an optional .env file and
// the environment, environment winning.
type Config struct {
	ImagePath     string
	LogLevel      logger.LogLevel
	LogFormat     string
	BlurMaxRadius int
	BlurStride    int
	FrameRate     int
	MaxRenderDim  int
	WindowWidth   int
	WindowHeight  int
}

func Default() Config {
	return Config{
		ImagePath:     DefaultImagePath,
		LogLevel:      logger.InfoLevel,
		LogFormat:     "console",
		BlurMaxRadius: DefaultBlurMaxRadius,
		BlurStride:    DefaultBlurStride,
		FrameRate:     DefaultFrameRate,
		MaxRenderDim:  DefaultMaxRenderDim,
		WindowWidth:   DefaultWindowWidth,
		WindowHeight:  DefaultWindowHeight,
	}
}

// Load reads envFiles (missing files are ignored) and then the environment.
// With no arguments it looks for ".env" in the working directory.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return Config{}, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, f, err)
		}
	}

	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("FILTER_FORGE_IMAGE"); v != "" {
		cfg.ImagePath = v
	}

	level, err := logger.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "1" {
		level = logger.DebugLevel
	}
	cfg.LogLevel = level

	switch f := strings.ToLower(os.Getenv("LOG_FORMAT")); f {
	case "":
	case "console", "json":
		cfg.LogFormat = f
	default:
		return Config{}, fmt.Errorf("%w: LOG_FORMAT %q", ErrInvalidConfig, f)
	}

	ints := []struct {
		key      string
		dst      *int
		min, max int
	}{
		{"BLUR_MAX_RADIUS", &cfg.BlurMaxRadius, 1, 25},
		{"BLUR_STRIDE", &cfg.BlurStride, 1, 2},
		{"FRAME_RATE", &cfg.FrameRate, 1, 240},
		{"MAX_RENDER_DIM", &cfg.MaxRenderDim, 0, 16384},
		{"WINDOW_WIDTH", &cfg.WindowWidth, 320, 16384},
		{"WINDOW_HEIGHT", &cfg.WindowHeight, 240, 16384},
	}
	for _, field := range ints {
		raw := os.Getenv(field.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, field.key, raw)
		}
		if n < field.min || n > field.max {
			return Config{}, fmt.Errorf("%w: %s=%d outside [%d, %d]", ErrInvalidConfig, field.key, n, field.min, field.max)
		}
		*field.dst = n
	}

	return cfg, nil
}

// NewLogger builds the process logger described by the config.
func (c Config) NewLogger() logger.Logger {
	if c.LogFormat == "json" {
		return logger.NewJSONLogger(c.LogLevel)
	}
	return logger.NewConsoleLogger(c.LogLevel)
}
