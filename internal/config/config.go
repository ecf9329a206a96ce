package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/stemsi/exstem-quiz/internal/model"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// RedisURL is optional. When empty, analytics hits are only logged.
	RedisURL string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
	// QuestionsFile overrides the embedded question bank when set.
	QuestionsFile    string
	AnalyticsEnabled bool
	TickInterval     time.Duration

	// Defaults applied to the quiz settings screen on startup.
	DefaultQuestionCount int
	DefaultTimeLimit     string
	DefaultShuffle       bool
	DefaultHints         bool
	DefaultShowCorrect   bool
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "pretty"),
		RedisURL:             getEnv("REDIS_URL", ""),
		AllowedOrigins:       parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		QuestionsFile:        getEnv("QUESTIONS_FILE", ""),
		AnalyticsEnabled:     getEnvBool("ANALYTICS_ENABLED", true),
		TickInterval:         time.Duration(getEnvInt("TICK_INTERVAL_MS", 1000)) * time.Millisecond,
		DefaultQuestionCount: getEnvInt("DEFAULT_QUESTION_COUNT", 50),
		DefaultTimeLimit:     getEnv("DEFAULT_TIME_LIMIT", "120"),
		DefaultShuffle:       getEnvBool("DEFAULT_SHUFFLE", true),
		DefaultHints:         getEnvBool("DEFAULT_HINTS", true),
		DefaultShowCorrect:   getEnvBool("DEFAULT_SHOW_CORRECT", true),
	}
}

// QuizDefaults returns the startup quiz settings. Unknown question counts or
// time limits fall back to model.DefaultQuizConfig.
func (c *Config) QuizDefaults() model.QuizConfig {
	q := model.DefaultQuizConfig()
	if n := model.QuestionCount(c.DefaultQuestionCount); n.Valid() {
		q.QuestionCount = n
	}
	if t := model.TimeLimit(c.DefaultTimeLimit); t.Valid() {
		q.TimeLimit = t
	}
	q.ShuffleEnabled = c.DefaultShuffle
	q.HintsAllowed = c.DefaultHints
	q.ShowCorrectAnswer = c.DefaultShowCorrect
	return q
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
