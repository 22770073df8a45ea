package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Curator     CuratorConfig     `toml:"curator"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and, after a completed
// authorization-code flow, the user tokens required for playlist creation.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	TokenExpiry  time.Time `toml:"token_expiry,omitempty"`
}

// Map converts the Spotify credentials to the map form consumed by services.
func (s SpotifyConfig) Map() map[string]string {
	m := map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
	if s.AccessToken != "" {
		m["access_token"] = s.AccessToken
	}
	if s.RefreshToken != "" {
		m["refresh_token"] = s.RefreshToken
	}
	return m
}

// Configured reports whether client credentials are present. When false the
// application runs in suggestion-only mode.
func (s SpotifyConfig) Configured() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// Update stores user tokens obtained from an OAuth2 exchange.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidCredentials)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenExpiry = token.Expiry
	return nil
}

// CuratorConfig contains model paths and playlist generation settings.
type CuratorConfig struct {
	ModelPath        string  `toml:"model_path"`
	TrainingDataPath string  `toml:"training_data_path"`
	PlaylistSize     int     `toml:"playlist_size"`
	MaxRetries       int     `toml:"max_retries"`
	SearchLimit      int     `toml:"search_limit"`
	RateLimit        float64 `toml:"rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SessionSecret string `toml:"session_secret"`
}

// Addr returns the host:port address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

// SaveConfig writes the configuration back to disk as TOML.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyDefaults()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Curator.PlaylistSize <= 0 {
		c.Curator.PlaylistSize = 20
	}
	if c.Curator.MaxRetries <= 0 {
		c.Curator.MaxRetries = 3
	}
	if c.Curator.SearchLimit <= 0 {
		c.Curator.SearchLimit = 50
	}
	if c.Curator.RateLimit <= 0 {
		c.Curator.RateLimit = 5.0
	}
	if c.Curator.ModelPath == "" {
		c.Curator.ModelPath = "vibe_model.gob"
	}
	if c.Curator.TrainingDataPath == "" {
		c.Curator.TrainingDataPath = "training_data.json"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8501
	}
}
