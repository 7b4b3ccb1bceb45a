package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the gateway server settings.
type Config struct {
	Port string
	// AllowedOrigins governs /api/health and /api/products only. The relay
	// routes always answer with a wildcard origin.
	AllowedOrigins []string
	// Upstream chat-completion provider
	OpenAIAPIKey    string
	Model           string
	Temperature     float32
	ChatURL         string
	UpstreamTimeout int
	// Optional web search provider
	BraveAPIKey    string
	BraveSearchURL string
	// Static catalog served to clients
	CatalogPath string
	PromptsFile string
	// Requests per minute per client IP; 0 disables the limiter
	RateLimitPerMinute int
	Log                LogConfig
}

// LogConfig is shared by the server and the client.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:               getEnvDefault("PORT", "8080"),
		AllowedOrigins:     getEnvListDefault("ALLOWED_ORIGINS", []string{"*"}),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		Model:              getEnvDefault("OPENAI_MODEL", "gpt-4o"),
		Temperature:        float32(getEnvFloatDefault("OPENAI_TEMPERATURE", 0.6)),
		ChatURL:            getEnvDefault("OPENAI_CHAT_URL", "https://api.openai.com/v1/chat/completions"),
		UpstreamTimeout:    getEnvIntDefault("UPSTREAM_TIMEOUT_SECONDS", 60),
		BraveAPIKey:        os.Getenv("BRAVE_API_KEY"),
		BraveSearchURL:     getEnvDefault("BRAVE_SEARCH_URL", "https://api.search.brave.com/res/v1/web/search"),
		CatalogPath:        getEnvDefault("CATALOG_PATH", "products.json"),
		PromptsFile:        os.Getenv("PROMPTS_FILE"),
		RateLimitPerMinute: getEnvIntDefault("RATE_LIMIT_PER_MINUTE", 0),
		Log:                loadLogConfig(),
	}
	if cfg.OpenAIAPIKey == "" {
		logrus.Warn("OPENAI_API_KEY is not set; upstream calls will fail until provided")
	}
	return cfg
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvDefault("LOG_LEVEL", "info"),
		Format: getEnvDefault("LOG_FORMAT", "json"),
		File:   os.Getenv("LOG_FILE"),
	}
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvListDefault(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			s := strings.TrimSpace(p)
			if s != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloatDefault(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
