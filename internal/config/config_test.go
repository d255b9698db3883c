package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textassist/engine/internal/openai"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TEXTASSIST_DATA_DIR", "/tmp/textassist-config")
	t.Setenv(EnvDebug, "")
	t.Setenv(EnvSelectionFile, "")
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvFakeOpenAI, "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/textassist-config", cfg.DataDir)
	assert.Equal(t, openai.DefaultBaseURL, cfg.BaseURL)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.FakeOpenAI)
	assert.Empty(t, cfg.SelectionFile)
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TEXTASSIST_DATA_DIR", "/tmp/textassist-config")
	t.Setenv(EnvDebug, "yes")
	t.Setenv(EnvSelectionFile, "/tmp/selection.yaml")
	t.Setenv(EnvBaseURL, "https://proxy.example.com")
	t.Setenv(EnvFakeOpenAI, "1")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.FakeOpenAI)
	assert.Equal(t, "/tmp/selection.yaml", cfg.SelectionFile)
	assert.Equal(t, "https://proxy.example.com", cfg.BaseURL)
}

func TestValidate(t *testing.T) {
	cfg := Config{DataDir: "/tmp/x", BaseURL: "http://api.openai.com"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BaseURL")

	cfg = Config{BaseURL: openai.DefaultBaseURL}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DataDir")
}
