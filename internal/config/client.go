package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends understood by store.Open.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Secrets mirrors the optional secrets YAML file kept next to the client.
type Secrets struct {
	WorkerURL string `yaml:"worker_url"`
}

// ClientConfig holds the settings of the advisor client.
//
// The gateway URL is resolved in this order:
//  1. WorkerURLOverride (ADVISOR_WORKER_URL)
//  2. Secrets.WorkerURL (worker_url in the secrets file)
//  3. absent
type ClientConfig struct {
	WorkerURLOverride string
	Secrets           Secrets
	Catalog           string
	Storage           string
	StoragePath       string
	RedisURL          string
	DatabaseURL       string
	WebSearch         bool
	PromptsFile       string
	TimeoutSeconds    int
	Log               LogConfig
}

// WorkerURL returns the resolved gateway URL, or "" when none is configured.
func (c ClientConfig) WorkerURL() string {
	if v := strings.TrimSpace(c.WorkerURLOverride); v != "" {
		return v
	}
	return strings.TrimSpace(c.Secrets.WorkerURL)
}

func LoadClient() (ClientConfig, error) {
	_ = godotenv.Load()
	cfg := ClientConfig{
		WorkerURLOverride: os.Getenv("ADVISOR_WORKER_URL"),
		Catalog:           getEnvDefault("ADVISOR_CATALOG", "products.json"),
		Storage:           strings.ToLower(getEnvDefault("ADVISOR_STORAGE", StorageFile)),
		StoragePath:       getEnvDefault("ADVISOR_STORAGE_PATH", defaultStoragePath()),
		RedisURL:          os.Getenv("REDIS_URL"),
		DatabaseURL:       os.Getenv("DB_URL"),
		WebSearch:         getEnvBoolDefault("ADVISOR_WEB_SEARCH", false),
		PromptsFile:       os.Getenv("PROMPTS_FILE"),
		TimeoutSeconds:    getEnvIntDefault("ADVISOR_TIMEOUT_SECONDS", 0),
		Log: LogConfig{
			Level:  getEnvDefault("LOG_LEVEL", "info"),
			Format: getEnvDefault("LOG_FORMAT", "text"),
			File:   os.Getenv("LOG_FILE"),
		},
	}
	secrets, err := LoadSecrets(getEnvDefault("ADVISOR_SECRETS_FILE", "secrets.yaml"))
	if err != nil {
		return cfg, err
	}
	cfg.Secrets = secrets
	switch cfg.Storage {
	case StorageFile, StorageMemory, StorageRedis, StoragePostgres:
	default:
		return cfg, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	return cfg, nil
}

// LoadSecrets reads the secrets file. A missing file is not an error.
func LoadSecrets(path string) (Secrets, error) {
	var s Secrets
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("read secrets %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("parse secrets %s: %w", path, err)
	}
	return s, nil
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return filepath.Join(".routine-advisor", "storage.json")
	}
	return filepath.Join(home, ".routine-advisor", "storage.json")
}
