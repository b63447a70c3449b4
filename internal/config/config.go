package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"blear/internal/logger"
)

type FormFactor string

const (
	FormFactorPhone  FormFactor = "phone"
	FormFactorTablet FormFactor = "tablet"
)

type Backend string

const (
	BackendImaging Backend = "imaging"
	BackendOpenCV  Backend = "opencv"
)

// Config represents the editor configuration loaded from environment variables.
type Config struct {
	AppEnv     string
	LogLevel   logger.LogLevel
	FormFactor FormFactor
	// LargeScreen shrinks the blur radius multiplier for large phone
	// displays.
	LargeScreen bool

	FastDebounce   time.Duration
	SettleDebounce time.Duration

	Backend            Backend
	AlbumDir           string
	BundledPhotosDir   string
	MaxSourceDimension int
}

// Load reads optional .env files and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")
	return FromEnv()
}

// FromEnv builds a Config from the environment only.
func FromEnv() (*Config, error) {
	level, err := logger.ParseLevel(getEnv("LOG_LEVEL", ""))
	if err != nil {
		return nil, err
	}
	if os.Getenv("DEBUG") == "1" {
		level = logger.DebugLevel
	}

	form := FormFactor(strings.ToLower(getEnv("BLEAR_FORM_FACTOR", string(FormFactorPhone))))
	if form != FormFactorPhone && form != FormFactorTablet {
		return nil, fmt.Errorf("BLEAR_FORM_FACTOR must be phone or tablet, got %q", form)
	}

	fastDefault := 60
	if form == FormFactorTablet {
		fastDefault = 100
	}

	fast, err := getEnvMillis("BLEAR_FAST_DEBOUNCE_MS", fastDefault)
	if err != nil {
		return nil, err
	}
	settle, err := getEnvMillis("BLEAR_SETTLE_DEBOUNCE_MS", 200)
	if err != nil {
		return nil, err
	}
	if settle < fast {
		return nil, fmt.Errorf("settle debounce (%s) must not be shorter than fast debounce (%s)", settle, fast)
	}

	backend := Backend(strings.ToLower(getEnv("BLEAR_BACKEND", string(BackendImaging))))
	if backend != BackendImaging && backend != BackendOpenCV {
		return nil, fmt.Errorf("BLEAR_BACKEND must be imaging or opencv, got %q", backend)
	}

	maxDim, err := getEnvInt("BLEAR_MAX_SOURCE_DIMENSION", 2048)
	if err != nil {
		return nil, err
	}
	if maxDim < 64 {
		return nil, fmt.Errorf("BLEAR_MAX_SOURCE_DIMENSION must be at least 64, got %d", maxDim)
	}

	largeScreen, err := getEnvBool("BLEAR_LARGE_SCREEN", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           level,
		FormFactor:         form,
		LargeScreen:        largeScreen,
		FastDebounce:       fast,
		SettleDebounce:     settle,
		Backend:            backend,
		AlbumDir:           getEnv("BLEAR_ALBUM_DIR", defaultAlbumDir()),
		BundledPhotosDir:   getEnv("BLEAR_BUNDLED_PHOTOS_DIR", "Bundled Photos"),
		MaxSourceDimension: maxDim,
	}

	return cfg, nil
}

func (c *Config) IsTablet() bool {
	return c.FormFactor == FormFactorTablet
}

func defaultAlbumDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "Blear"
	}
	return filepath.Join(home, "Pictures", "Blear")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}

func getEnvMillis(key string, fallback int) (time.Duration, error) {
	ms, err := getEnvInt(key, fallback)
	if err != nil {
		return 0, err
	}
	if ms <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
