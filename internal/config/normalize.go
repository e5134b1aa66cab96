package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizePersistence()
	c.normalizeSpotify()
	c.normalizeYouTube()
	c.normalizeMatching()
	c.normalizeLogging()
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	c.Storage.SQLitePath = strings.TrimSpace(c.Storage.SQLitePath)
	switch c.Storage.SQLitePath {
	case "":
		c.Storage.SQLitePath = filepath.Join(c.Paths.DataDir, defaultSQLiteFile)
	case ":memory:":
	default:
		if c.Storage.SQLitePath, err = expandPath(c.Storage.SQLitePath); err != nil {
			return fmt.Errorf("storage.sqlite_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	c.Storage.PostgresDSN = strings.TrimSpace(c.Storage.PostgresDSN)
	if c.Storage.PostgresDSN == "" {
		if value, ok := os.LookupEnv("CROSSFADE_POSTGRES_DSN"); ok {
			c.Storage.PostgresDSN = strings.TrimSpace(value)
		}
	}
	if c.Storage.PostgresDSN == "" {
		c.Storage.PostgresDSN = dsnFromEnv()
	}
}

// dsnFromEnv assembles a URL from DB_HOST, DB_PORT, DB_NAME, DB_USER and
// DB_PASSWORD. It returns "" unless DB_HOST and DB_NAME are set.
func dsnFromEnv() string {
	host := strings.TrimSpace(os.Getenv("DB_HOST"))
	name := strings.TrimSpace(os.Getenv("DB_NAME"))
	if host == "" || name == "" {
		return ""
	}
	port := strings.TrimSpace(os.Getenv("DB_PORT"))
	if port == "" {
		port = defaultPostgresPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}
	if user := os.Getenv("DB_USER"); user != "" {
		if password, ok := os.LookupEnv("DB_PASSWORD"); ok {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String()
}

func (c *Config) normalizePersistence() {
	def := Default().Persistence
	c.Persistence.Tracks = policyOrDefault(c.Persistence.Tracks, def.Tracks)
	c.Persistence.Videos = policyOrDefault(c.Persistence.Videos, def.Videos)
	c.Persistence.Correlations = policyOrDefault(c.Persistence.Correlations, def.Correlations)

	c.Destinations.Tracks = strings.TrimSpace(c.Destinations.Tracks)
	c.Destinations.Videos = strings.TrimSpace(c.Destinations.Videos)
	c.Destinations.Correlations = strings.TrimSpace(c.Destinations.Correlations)
	tables := c.Tables().WithDefaults()
	c.Destinations = Destinations{Tracks: tables.Tracks, Videos: tables.Videos, Correlations: tables.Correlations}
}

func policyOrDefault(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

func (c *Config) normalizeSpotify() {
	if c.Spotify.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Spotify.ClientID = value
		}
	}
	if c.Spotify.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Spotify.ClientSecret = value
		}
	}
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	c.Spotify.BaseURL = trimURL(c.Spotify.BaseURL, defaultSpotifyBaseURL)
	c.Spotify.TokenURL = trimURL(c.Spotify.TokenURL, defaultSpotifyToken)

	playlists := make(map[string]string, len(c.Spotify.Playlists))
	for region, id := range c.Spotify.Playlists {
		playlists[strings.ToUpper(strings.TrimSpace(region))] = strings.TrimSpace(id)
	}
	c.Spotify.Playlists = playlists
}

func (c *Config) normalizeYouTube() {
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = value
		}
	}
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	c.YouTube.BaseURL = trimURL(c.YouTube.BaseURL, defaultYouTubeBaseURL)
	if c.YouTube.MaxResults == 0 {
		c.YouTube.MaxResults = defaultMaxResults
	}

	seen := make(map[string]struct{}, len(c.YouTube.Regions))
	regions := make([]string, 0, len(c.YouTube.Regions))
	for _, region := range c.YouTube.Regions {
		region = strings.ToUpper(strings.TrimSpace(region))
		if region == "" {
			continue
		}
		if _, dup := seen[region]; dup {
			continue
		}
		seen[region] = struct{}{}
		regions = append(regions, region)
	}
	c.YouTube.Regions = regions
}

func (c *Config) normalizeMatching() {
	if c.Matching.Workers == 0 {
		c.Matching.Workers = 1
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}

func trimURL(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
