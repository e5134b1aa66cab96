package config

import (
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/domain"
	"github.com/toinnnnn/avaliacao-bigdata/internal/core/match"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultConfigPath     = "~/.config/crossfade/config.toml"
	defaultDataDir        = "~/.local/share/crossfade"
	defaultSQLiteFile     = "crossfade.db"
	defaultSpotifyBaseURL = "https://api.spotify.com/v1"
	defaultSpotifyToken   = "https://accounts.spotify.com/api/token"
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	defaultMaxResults     = 50
	defaultMaxRetries     = 3
	defaultBackoffMS      = 500
	defaultTimeoutSeconds = 30
	defaultLogLevel       = "info"
	defaultLogFormat      = "auto"
	defaultAPIBind        = "127.0.0.1:8080"
	defaultPostgresPort   = "5432"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	tables := domain.DefaultDestinations()
	return Config{
		Paths: Paths{DataDir: defaultDataDir},
		Storage: Storage{
			Driver: DriverSQLite,
		},
		Destinations: Destinations{
			Tracks:       tables.Tracks,
			Videos:       tables.Videos,
			Correlations: tables.Correlations,
		},
		Persistence: Persistence{
			Tracks:       string(domain.PolicyReplace),
			Videos:       string(domain.PolicyReplace),
			Correlations: string(domain.PolicyReplace),
		},
		Matching: Matching{
			Threshold: match.DefaultThreshold,
			Workers:   1,
		},
		Spotify: Spotify{
			TokenURL:  defaultSpotifyToken,
			BaseURL:   defaultSpotifyBaseURL,
			Playlists: map[string]string{},
		},
		YouTube: YouTube{
			BaseURL:    defaultYouTubeBaseURL,
			Regions:    []string{"BR", "US"},
			MaxResults: defaultMaxResults,
		},
		HTTP: HTTP{
			MaxRetries:     defaultMaxRetries,
			BackoffMS:      defaultBackoffMS,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		API: API{Bind: defaultAPIBind},
	}
}
