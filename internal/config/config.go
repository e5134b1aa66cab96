// Package config loads, normalizes, and validates crossfade configuration.
//
// Values come from repository defaults, then an optional TOML file, then
// environment fallbacks for credentials (SPOTIFY_CLIENT_ID,
// YOUTUBE_API_KEY, CROSSFADE_POSTGRES_DSN or the DB_* family). Always obtain
// settings through Load so downstream code receives expanded paths and
// validated policies.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains on-disk locations.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// Storage selects the persistence backend.
type Storage struct {
	Driver      string `toml:"driver"` // sqlite or postgres
	SQLitePath  string `toml:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn"`
}

// Destinations names the tables a run writes.
type Destinations struct {
	Tracks       string `toml:"tracks"`
	Videos       string `toml:"videos"`
	Correlations string `toml:"correlations"`
}

// Persistence holds the conflict policy per destination.
type Persistence struct {
	Tracks       string `toml:"tracks"`
	Videos       string `toml:"videos"`
	Correlations string `toml:"correlations"`
}

// Matching tunes the correlation engine.
type Matching struct {
	Threshold  int  `toml:"threshold"`
	Workers    int  `toml:"workers"`
	StemTokens bool `toml:"stem_tokens"`
}

// Spotify contains Web API credentials and the playlist charting each
// market.
type Spotify struct {
	ClientID     string            `toml:"client_id"`
	ClientSecret string            `toml:"client_secret"`
	TokenURL     string            `toml:"token_url"`
	BaseURL      string            `toml:"base_url"`
	Playlists    map[string]string `toml:"playlists"`
}

// YouTube contains Data API settings.
type YouTube struct {
	APIKey     string   `toml:"api_key"`
	BaseURL    string   `toml:"base_url"`
	Regions    []string `toml:"regions"`
	MaxResults int      `toml:"max_results"`
}

// HTTP tunes the shared retrying client.
type HTTP struct {
	MaxRetries     int `toml:"max_retries"`
	BackoffMS      int `toml:"backoff_ms"`
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// API configures the read-only dashboard server.
type API struct {
	Bind string `toml:"bind"`
}

// Config encapsulates all configuration values.
type Config struct {
	Paths        Paths        `toml:"paths"`
	Storage      Storage      `toml:"storage"`
	Destinations Destinations `toml:"destinations"`
	Persistence  Persistence  `toml:"persistence"`
	Matching     Matching     `toml:"matching"`
	Spotify      Spotify      `toml:"spotify"`
	YouTube      YouTube      `toml:"youtube"`
	HTTP         HTTP         `toml:"http"`
	Logging      Logging      `toml:"logging"`
	API          API          `toml:"api"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, normalizes and validates a configuration file. An
// empty path searches the per-user location, then ./crossfade.toml. A
// missing file is not an error: defaults apply and exists is false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("crossfade.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the data directory and the SQLite file's
// parent.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir}
	if c.Storage.Driver == DriverSQLite && c.Storage.SQLitePath != ":memory:" {
		dirs = append(dirs, filepath.Dir(c.Storage.SQLitePath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath is the file serializing pipeline runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "crossfade.lock")
}

// Tables returns the destination names as domain values.
func (c *Config) Tables() domain.Destinations {
	return domain.Destinations{
		Tracks:       c.Destinations.Tracks,
		Videos:       c.Destinations.Videos,
		Correlations: c.Destinations.Correlations,
	}
}

// Policies returns the parsed conflict policies for tracks, videos and
// correlations. Load has already validated them.
func (c *Config) Policies() (tracks, videos, correlations domain.ConflictPolicy) {
	tracks, _ = domain.ParseConflictPolicy(c.Persistence.Tracks)
	videos, _ = domain.ParseConflictPolicy(c.Persistence.Videos)
	correlations, _ = domain.ParseConflictPolicy(c.Persistence.Correlations)
	return tracks, videos, correlations
}

// Enabled reports whether the Spotify extractor has enough to run.
func (s Spotify) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != "" && len(s.Playlists) > 0
}

// Enabled reports whether the YouTube extractor has enough to run.
func (y YouTube) Enabled() bool {
	return y.APIKey != "" && len(y.Regions) > 0
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the commented sample written by CreateSample.
func SampleConfig() string {
	return sampleConfig
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
