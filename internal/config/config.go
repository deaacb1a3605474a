package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageModeAuto   = "auto"
	StorageModeMemory = "memory"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

var validStorageModes = map[string]bool{
	StorageModeAuto:   true,
	StorageModeMemory: true,
}

type Config struct {
	ServerPort  string
	AppEnv      string
	LogLevel    string
	StorageMode string
	Mongo       MongoConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if !validStorageModes[c.StorageMode] {
		return fmt.Errorf("invalid STORAGE_MODE %q: must be one of auto, memory", c.StorageMode)
	}
	if c.StorageMode == StorageModeAuto {
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORAGE_MODE is auto")
		}
		if c.Mongo.Database == "" || c.Mongo.Collection == "" {
			return fmt.Errorf("MONGODB_DATABASE and MONGODB_COLLECTION must not be empty")
		}
	}
	if c.Mongo.ConnectTimeout <= 0 {
		return fmt.Errorf("invalid MONGODB_CONNECT_TIMEOUT: must be a positive duration")
	}
	if c.Mongo.OperationTimeout <= 0 {
		return fmt.Errorf("invalid MONGODB_OPERATION_TIMEOUT: must be a positive duration")
	}
	return nil
}

type MongoConfig struct {
	URI              string
	Database         string
	Collection       string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

func Load() Config {
	return Config{
		ServerPort:  envOrDefault("SERVER_PORT", "8080"),
		AppEnv:      envOrDefault("APP_ENV", "local"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		StorageMode: strings.ToLower(envOrDefault("STORAGE_MODE", StorageModeAuto)),
		Mongo: MongoConfig{
			URI:              envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
			Database:         envOrDefault("MONGODB_DATABASE", "todo"),
			Collection:       envOrDefault("MONGODB_COLLECTION", "todos"),
			ConnectTimeout:   envDuration("MONGODB_CONNECT_TIMEOUT", 5*time.Second),
			OperationTimeout: envDuration("MONGODB_OPERATION_TIMEOUT", 5*time.Second),
		},
	}
}

// LoadDotEnv populates the environment from a .env file when running locally.
// Variables that are already set take precedence, and a missing file is ignored.
func LoadDotEnv(path string) error {
	if env := os.Getenv("APP_ENV"); env != "" && env != "local" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envDuration returns 0 for unparsable values so Validate can reject them.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
