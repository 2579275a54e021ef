package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration resolved from an optional .env file
// and the environment.
type Config struct {
	// DataDir is preloaded on startup when set.
	DataDir string
	// AllowedDirs bounds every dataset path a client may load.
	AllowedDirs []string

	// Passphrase enables the access gate on load_dataset when non-empty.
	Passphrase string

	EnableExports  bool
	ThresholdsFile string
	LogLevel       string
	TokenModel     string

	MaxConcurrentRequests int
	MaxOpenDatasets       int
	OperationTimeout      time.Duration
	DatasetIdleTTL        time.Duration

	// TranscriptMaxExchanges caps each ask_question transcript.
	TranscriptMaxExchanges int
}

// Load reads the given env files (".env" when none are passed) and resolves
// the configuration. Missing env files are not an error.
func Load(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	cfg := Config{
		DataDir:               getEnvString("HRPULSE_DATA_DIR", ""),
		ThresholdsFile:        getEnvString("HRPULSE_THRESHOLDS_FILE", ""),
		LogLevel:              getEnvString("HRPULSE_LOG_LEVEL", "info"),
		TokenModel:            getEnvString("HRPULSE_TOKEN_MODEL", DefaultTokenModel),
		EnableExports:         getEnvBool("HRPULSE_ENABLE_EXPORTS", false),
		MaxConcurrentRequests: getEnvInt("HRPULSE_MAX_CONCURRENT", DefaultMaxConcurrentRequests),
		MaxOpenDatasets:       getEnvInt("HRPULSE_MAX_DATASETS", DefaultMaxOpenDatasets),
		OperationTimeout:      getEnvDuration("HRPULSE_OPERATION_TIMEOUT", DefaultOperationTimeout),
		DatasetIdleTTL:        getEnvDuration("HRPULSE_DATASET_TTL", DefaultDatasetIdleTTL),

		TranscriptMaxExchanges: getEnvInt("HRPULSE_TRANSCRIPT_MAX", DefaultTranscriptMaxExchanges),
	}

	if list := os.Getenv("HRPULSE_ALLOWED_DIRS"); list != "" {
		for _, d := range filepath.SplitList(list) {
			if d = strings.TrimSpace(d); d != "" {
				cfg.AllowedDirs = append(cfg.AllowedDirs, d)
			}
		}
	}
	// The preload directory is implicitly allowed.
	if cfg.DataDir != "" && len(cfg.AllowedDirs) == 0 {
		cfg.AllowedDirs = []string{cfg.DataDir}
	}

	cfg.Passphrase = strings.TrimSpace(os.Getenv("HRPULSE_PASSPHRASE"))
	if cfg.Passphrase == "" && getEnvBool("HRPULSE_ACCESS_GATE", false) {
		cfg.Passphrase = DefaultPassphrase
	}

	if cfg.TranscriptMaxExchanges <= 0 {
		cfg.TranscriptMaxExchanges = DefaultTranscriptMaxExchanges
	}
	if cfg.MaxConcurrentRequests <= 0 || cfg.MaxOpenDatasets <= 0 {
		return Config{}, fmt.Errorf("config: limits must be positive (concurrent=%d datasets=%d)", cfg.MaxConcurrentRequests, cfg.MaxOpenDatasets)
	}
	return cfg, nil
}

func getEnvString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
