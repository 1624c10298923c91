package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client settings. Values come from defaults, an
// optional .env file, and QUANTDESK_* environment variables, in that
// order of increasing precedence.
type Config struct {
	APIBaseURL     string        `json:"api_base_url"`
	RequestTimeout time.Duration `json:"request_timeout"`

	ConfigDir      string `json:"config_dir"`
	ResultsDir     string `json:"results_dir"`
	CredentialFile string `json:"credential_file"`
	HistoryDBPath  string `json:"history_db_path"`

	Debug bool `json:"debug"`
}

// credentialFilename is the single fixed name the session token is
// persisted under.
const credentialFilename = "credential.json"

// Load builds the configuration. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if v := os.Getenv("QUANTDESK_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("QUANTDESK_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if v := os.Getenv("QUANTDESK_HOME"); v != "" {
		cfg.ConfigDir = v
		cfg.ResultsDir = filepath.Join(v, "results")
		cfg.CredentialFile = filepath.Join(v, credentialFilename)
		cfg.HistoryDBPath = filepath.Join(v, "history.db")
	}
	if v := os.Getenv("QUANTDESK_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}

	return cfg
}

func defaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home, _ = os.Getwd()
	}
	configDir := filepath.Join(home, ".quantdesk")

	return &Config{
		APIBaseURL:     "http://localhost:8000",
		RequestTimeout: 180 * time.Second,
		ConfigDir:      configDir,
		ResultsDir:     filepath.Join(configDir, "results"),
		CredentialFile: filepath.Join(configDir, credentialFilename),
		HistoryDBPath:  filepath.Join(configDir, "history.db"),
		Debug:          false,
	}
}

// EnsureDirectories creates the directories the client writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ConfigDir, c.ResultsDir, filepath.Dir(c.HistoryDBPath)}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
