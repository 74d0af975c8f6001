package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("QUIZ_EMAIL", "solver@example.com")
	t.Setenv("QUIZ_SECRET", "initial-secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "solver@example.com", cfg.QuizEmail)
	assert.Equal(t, "initial-secret", cfg.QuizSecret)
	assert.Equal(t, 150*time.Second, cfg.TotalWorkTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 90*time.Second, cfg.BrowserNavTimeout)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 1<<20, cfg.MaxPayloadBytes)
	assert.Equal(t, "heuristic", cfg.AnswerStrategy)
	assert.Equal(t, "http", cfg.Renderer)
	assert.True(t, cfg.PacingEnabled)
	assert.Zero(t, cfg.RandSeed)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	t.Setenv("QUIZ_EMAIL", "")
	t.Setenv("QUIZ_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUIZ_EMAIL and QUIZ_SECRET")
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("TOTAL_WORK_TIMEOUT", "60")
	t.Setenv("MAX_ATTEMPTS", "2")
	t.Setenv("ANSWER_STRATEGY", "deterministic")
	t.Setenv("RENDERER", "chrome")
	t.Setenv("PACING_ENABLED", "false")
	t.Setenv("RAND_SEED", "42")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Minute, cfg.TotalWorkTimeout)
	assert.Equal(t, 2, cfg.MaxAttempts)
	assert.Equal(t, "deterministic", cfg.AnswerStrategy)
	assert.Equal(t, "chrome", cfg.Renderer)
	assert.False(t, cfg.PacingEnabled)
	assert.Equal(t, int64(42), cfg.RandSeed)
}

func TestLoadConfig_TrimsCredentials(t *testing.T) {
	t.Setenv("QUIZ_EMAIL", "  solver@example.com  ")
	t.Setenv("QUIZ_SECRET", " initial-secret ")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "solver@example.com", cfg.QuizEmail)
	assert.Equal(t, "initial-secret", cfg.QuizSecret)
}

func TestLoadConfig_BadNumbersFallBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MAX_ATTEMPTS", "not-a-number")
	t.Setenv("PACING_ENABLED", "maybe")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.True(t, cfg.PacingEnabled)
}
