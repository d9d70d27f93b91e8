package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort  string
	LogLevel string

	GeminiBaseURL string
	GeminiModel   string
	GeminiAPIKey  string

	MaxUploadBytes int64

	APIRateLimitRPS   int
	APIRateLimitBurst int

	GenerationBreakerEnabled bool
}

// FileEnvVar points at an optional YAML config file. Precedence is
// defaults, then file, then environment.
const FileEnvVar = "DOCCHAT_CONFIG_FILE"

func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	overlayEnv(&cfg)
	return cfg, nil
}

func defaults() Config {
	return Config{
		APIPort:  "8080",
		LogLevel: "info",

		GeminiBaseURL: "https://generativelanguage.googleapis.com",
		GeminiModel:   "gemini-2.0-flash",

		MaxUploadBytes: 10 << 20,

		APIRateLimitRPS:   10,
		APIRateLimitBurst: 20,

		GenerationBreakerEnabled: true,
	}
}

type fileConfig struct {
	APIPort  *string `yaml:"api_port"`
	LogLevel *string `yaml:"log_level"`

	Gemini struct {
		BaseURL *string `yaml:"base_url"`
		Model   *string `yaml:"model"`
		APIKey  *string `yaml:"api_key"`
	} `yaml:"gemini"`

	MaxUploadBytes *int64 `yaml:"max_upload_bytes"`

	RateLimit struct {
		RPS   *int `yaml:"rps"`
		Burst *int `yaml:"burst"`
	} `yaml:"rate_limit"`

	GenerationBreakerEnabled *bool `yaml:"generation_breaker_enabled"`
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	setString(&cfg.APIPort, file.APIPort)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.GeminiBaseURL, file.Gemini.BaseURL)
	setString(&cfg.GeminiModel, file.Gemini.Model)
	setString(&cfg.GeminiAPIKey, file.Gemini.APIKey)
	if file.MaxUploadBytes != nil {
		cfg.MaxUploadBytes = *file.MaxUploadBytes
	}
	if file.RateLimit.RPS != nil {
		cfg.APIRateLimitRPS = *file.RateLimit.RPS
	}
	if file.RateLimit.Burst != nil {
		cfg.APIRateLimitBurst = *file.RateLimit.Burst
	}
	if file.GenerationBreakerEnabled != nil {
		cfg.GenerationBreakerEnabled = *file.GenerationBreakerEnabled
	}
	return nil
}

func overlayEnv(cfg *Config) {
	cfg.APIPort = mustEnv("API_PORT", cfg.APIPort)
	cfg.LogLevel = mustEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.GeminiBaseURL = mustEnv("GEMINI_BASE_URL", cfg.GeminiBaseURL)
	cfg.GeminiModel = mustEnv("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiAPIKey = mustEnv("GEMINI_API_KEY", cfg.GeminiAPIKey)

	cfg.MaxUploadBytes = mustEnvInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.APIRateLimitRPS = mustEnvInt("API_RATE_LIMIT_RPS", cfg.APIRateLimitRPS)
	cfg.APIRateLimitBurst = mustEnvInt("API_RATE_LIMIT_BURST", cfg.APIRateLimitBurst)

	cfg.GenerationBreakerEnabled = mustEnvBool("GENERATION_BREAKER_ENABLED", cfg.GenerationBreakerEnabled)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
