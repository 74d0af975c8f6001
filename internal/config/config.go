package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at startup and passed by value into every layer.
// Nothing mutates it after Load returns.
type Config struct {
	Port        string
	Environment string

	// Credentials the /quiz endpoints verify against and the chain submits with.
	QuizEmail  string
	QuizSecret string

	// Optional LLM fallback. Empty key means the built-in strategies run alone.
	OpenAIKey   string
	OpenAIModel string

	// Budgets and limits.
	TotalWorkTimeout  time.Duration
	HTTPTimeout       time.Duration
	BrowserNavTimeout time.Duration
	MaxAttempts       int
	MaxPayloadBytes   int

	// Answer generation: "heuristic" or "deterministic".
	AnswerStrategy string

	// Renderer: "http" or "chrome".
	Renderer string

	// Pacing. Delays stay on by default; RandSeed != 0 pins the random source
	// so tests can assert on bounded ranges.
	PacingEnabled bool
	RandSeed      int64

	// Optional collaborators. Empty values disable the component.
	DatabaseURL string
	RedisURL    string

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine in containerized deployments; the environment is
	// already populated there.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENVIRONMENT", "development"),

		QuizEmail:  strings.TrimSpace(os.Getenv("QUIZ_EMAIL")),
		QuizSecret: strings.TrimSpace(os.Getenv("QUIZ_SECRET")),

		OpenAIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel: getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		TotalWorkTimeout:  getDurationSeconds("TOTAL_WORK_TIMEOUT", 150),
		HTTPTimeout:       getDurationSeconds("HTTP_TIMEOUT", 30),
		BrowserNavTimeout: getDurationSeconds("BROWSER_NAV_TIMEOUT", 90),
		MaxAttempts:       getInt("MAX_ATTEMPTS", 5),
		MaxPayloadBytes:   getInt("MAX_PAYLOAD_BYTES", 1<<20),

		AnswerStrategy: getEnv("ANSWER_STRATEGY", "heuristic"),
		Renderer:       getEnv("RENDERER", "http"),

		PacingEnabled: getBool("PACING_ENABLED", true),
		RandSeed:      int64(getInt("RAND_SEED", 0)),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		Events: loadEventConfig(),
	}

	if cfg.QuizEmail == "" || cfg.QuizSecret == "" {
		return nil, fmt.Errorf("QUIZ_EMAIL and QUIZ_SECRET must be set")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getDurationSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getInt(key, defaultSeconds)) * time.Second
}
