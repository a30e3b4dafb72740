package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonatankoch/kanbanboard/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Empty(t, cfg.SessionFile)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("KANBAN_API_URL", "http://kanban.local:9000")
	t.Setenv("KANBAN_SESSION_FILE", "/tmp/session.json")
	t.Setenv("KANBAN_HTTP_TIMEOUT_SECONDS", "30")
	t.Setenv("KANBAN_DEBUG", "true")

	cfg := config.Load()

	assert.Equal(t, "http://kanban.local:9000", cfg.APIBaseURL)
	assert.Equal(t, "/tmp/session.json", cfg.SessionFile)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Debug)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("KANBAN_HTTP_TIMEOUT_SECONDS", "soon")
	t.Setenv("KANBAN_DEBUG", "yep")

	cfg := config.Load()

	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.Debug)
}
