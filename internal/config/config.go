package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SupportedLanguages maps the language codes accepted for learning and
// native languages to the names used in generation prompts.
var SupportedLanguages = map[string]string{
	"en": "English",
	"ru": "Russian",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"nl": "Dutch",
	"kz": "Kazakh",
}

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string
	// LogFormat is "text" or "json".
	LogFormat string

	GeminiAPIKey      string
	GeminiBaseURL     string
	GeminiModel       string
	ImagenModel       string
	GenerationTimeout time.Duration
	DictionaryBaseURL string

	ImageWorkerCount      int
	ImageQueueSize        int
	SessionTTL            time.Duration
	MaxPromptEnhancements int

	DefaultLearningLanguage string
	DefaultNativeLanguage   string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	apiKey := envOr("GEMINI_API_KEY", "")
	if apiKey == "" {
		apiKey = envOr("GOOGLE_CLOUD_API_KEY", "")
	}

	return Config{
		Addr:      envOr("ADDR", ":8080"),
		DBPath:    envOr("DB_PATH", "file:mnemoflash.db"),
		LogLevel:  envOr("LOG_LEVEL", "INFO"),
		LogFormat: envOr("LOG_FORMAT", "text"),

		GeminiAPIKey:      apiKey,
		GeminiBaseURL:     envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-1.5-flash"),
		ImagenModel:       envOr("IMAGEN_MODEL", "imagen-3.0-generate-002"),
		GenerationTimeout: time.Duration(envIntOr("GENERATION_TIMEOUT_SECONDS", 60)) * time.Second,
		DictionaryBaseURL: envOr("DICTIONARY_BASE_URL", "https://api.dictionaryapi.dev/api/v2/entries"),

		ImageWorkerCount:      envIntOr("IMAGE_WORKER_COUNT", 2),
		ImageQueueSize:        envIntOr("IMAGE_QUEUE_SIZE", 32),
		SessionTTL:            time.Duration(envIntOr("SESSION_TTL_MINUTES", 60)) * time.Minute,
		MaxPromptEnhancements: envIntOr("MAX_PROMPT_ENHANCEMENTS", 2),

		DefaultLearningLanguage: envOr("DEFAULT_LEARNING_LANGUAGE", "en"),
		DefaultNativeLanguage:   envOr("DEFAULT_NATIVE_LANGUAGE", "ru"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if strings.TrimSpace(c.GeminiBaseURL) == "" {
		errs = append(errs, errors.New("GEMINI_BASE_URL cannot be empty"))
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		errs = append(errs, errors.New("GEMINI_MODEL cannot be empty"))
	}
	if c.GenerationTimeout <= 0 {
		errs = append(errs, errors.New("GENERATION_TIMEOUT_SECONDS must be positive"))
	}
	if c.ImageWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("IMAGE_WORKER_COUNT must be at least 1, got %d", c.ImageWorkerCount))
	}
	if c.ImageQueueSize < 1 {
		errs = append(errs, fmt.Errorf("IMAGE_QUEUE_SIZE must be at least 1, got %d", c.ImageQueueSize))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL_MINUTES must be positive"))
	}
	if c.MaxPromptEnhancements < 0 || c.MaxPromptEnhancements > 10 {
		errs = append(errs, fmt.Errorf("MAX_PROMPT_ENHANCEMENTS must be between 0 and 10, got %d", c.MaxPromptEnhancements))
	}
	if _, ok := SupportedLanguages[c.DefaultLearningLanguage]; !ok {
		errs = append(errs, fmt.Errorf("DEFAULT_LEARNING_LANGUAGE %q is not supported", c.DefaultLearningLanguage))
	}
	if _, ok := SupportedLanguages[c.DefaultNativeLanguage]; !ok {
		errs = append(errs, fmt.Errorf("DEFAULT_NATIVE_LANGUAGE %q is not supported", c.DefaultNativeLanguage))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
