// Package config loads runtime settings from the environment.
package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// Environment variable names
const (
	EnvAddress     = "STARTERKIT_ADDRESS"
	EnvDBPath      = "STARTERKIT_DB_PATH"
	EnvUploadDir   = "STARTERKIT_UPLOAD_DIR"
	EnvPublicURL   = "STARTERKIT_PUBLIC_URL"
	EnvLogLevel    = "STARTERKIT_LOG_LEVEL"
	EnvMaxUploadMB = "STARTERKIT_MAX_UPLOAD_MB"
	EnvUploadRate  = "STARTERKIT_UPLOAD_RATE"
)

// maxUploadMB is the largest upload size whose byte count fits in an int64
const maxUploadMB = math.MaxInt64 >> 20

// Config holds everything the server needs at startup
type Config struct {
	Address        string // listen address, e.g. ":8000"
	DBPath         string // DuckDB file
	UploadDir      string // where uploaded files are written
	PublicURL      string // base used to build file URLs
	LogLevel       string
	MaxUploadBytes int64
	UploadRate     int // uploads per minute per client
}

// Default returns the development configuration
func Default() *Config {
	return &Config{
		Address:        ":8000",
		DBPath:         "./data/starterkit.ddb",
		UploadDir:      "./uploads",
		PublicURL:      "http://localhost:8000",
		LogLevel:       "info",
		MaxUploadBytes: 32 << 20,
		UploadRate:     60,
	}
}

// Load reads an optional .env file, then overlays environment variables on the defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.LogErr(err, "failed to read .env file")
	}
	return FromEnv()
}

// FromEnv overlays environment variables on the defaults without touching .env
func FromEnv() (*Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvAddress); v != "" {
		cfg.Address = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvUploadDir); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv(EnvPublicURL); v != "" {
		cfg.PublicURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv(EnvMaxUploadMB); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil || mb <= 0 || mb > maxUploadMB {
			return nil, serr.New("invalid " + EnvMaxUploadMB + " value, expected a positive integer no larger than " + strconv.FormatInt(maxUploadMB, 10))
		}
		cfg.MaxUploadBytes = mb << 20
	}

	if v := os.Getenv(EnvUploadRate); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil || rate <= 0 {
			return nil, serr.New("invalid " + EnvUploadRate + " value, expected a positive integer")
		}
		cfg.UploadRate = rate
	}

	return cfg, nil
}
