package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 180*time.Second, cfg.RequestTimeout)
	assert.Equal(t, filepath.Join(cfg.ConfigDir, "credential.json"), cfg.CredentialFile)
	assert.Equal(t, filepath.Join(cfg.ConfigDir, "history.db"), cfg.HistoryDBPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("QUANTDESK_API_URL", "https://quant.example.com")
	t.Setenv("QUANTDESK_TIMEOUT_SECONDS", "30")
	t.Setenv("QUANTDESK_HOME", home)
	t.Setenv("QUANTDESK_DEBUG", "1")

	cfg := Load()

	assert.Equal(t, "https://quant.example.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, home, cfg.ConfigDir)
	assert.Equal(t, filepath.Join(home, "credential.json"), cfg.CredentialFile)
	assert.True(t, cfg.Debug)
}

func TestBadTimeoutIsIgnored(t *testing.T) {
	t.Setenv("QUANTDESK_TIMEOUT_SECONDS", "not-a-number")
	cfg := Load()
	assert.Equal(t, 180*time.Second, cfg.RequestTimeout)
}

func TestEnsureDirectories(t *testing.T) {
	home := t.TempDir()
	t.Setenv("QUANTDESK_HOME", filepath.Join(home, "nested", "quantdesk"))

	cfg := Load()
	require.NoError(t, cfg.EnsureDirectories())

	for _, dir := range []string{cfg.ConfigDir, cfg.ResultsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
