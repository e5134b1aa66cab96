package config

import (
	"errors"
	"fmt"

	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
)

// Validate ensures the configuration is usable. Extractor credentials are
// not required here: runs fed from CSV files need none.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validatePersistence(); err != nil {
		return err
	}
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateHTTP(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path must be set")
		}
	case DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres driver. Set CROSSFADE_POSTGRES_DSN or DB_HOST/DB_NAME")
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Storage.Driver)
	}
	return nil
}

func (c *Config) validatePersistence() error {
	if err := c.Tables().Validate(); err != nil {
		return fmt.Errorf("destinations: %w", err)
	}
	for _, p := range []struct{ key, value string }{
		{"persistence.tracks", c.Persistence.Tracks},
		{"persistence.videos", c.Persistence.Videos},
		{"persistence.correlations", c.Persistence.Correlations},
	} {
		if _, err := domain.ParseConflictPolicy(p.value); err != nil {
			return fmt.Errorf("%s: %w", p.key, err)
		}
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 100 {
		return errors.New("matching.threshold must be between 0 and 100")
	}
	if c.Matching.Workers < 1 {
		return errors.New("matching.workers must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	for region, id := range c.Spotify.Playlists {
		if region == "" {
			return errors.New("spotify.playlists: empty region key")
		}
		if id == "" {
			return fmt.Errorf("spotify.playlists.%s: playlist id must be set", region)
		}
	}
	if c.YouTube.MaxResults < 1 || c.YouTube.MaxResults > 50 {
		return errors.New("youtube.max_results must be between 1 and 50")
	}
	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.MaxRetries < 0 {
		return errors.New("http.max_retries must be >= 0")
	}
	if c.HTTP.BackoffMS < 0 {
		return errors.New("http.backoff_ms must be >= 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return errors.New("http.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
