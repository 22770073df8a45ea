package shared

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Curator.PlaylistSize != 20 {
		t.Errorf("expected playlist size 20, got %d", config.Curator.PlaylistSize)
	}
	if config.Curator.MaxRetries != 3 {
		t.Errorf("expected max retries 3, got %d", config.Curator.MaxRetries)
	}
	if config.Curator.RateLimit != 5.0 {
		t.Errorf("expected rate limit 5.0, got %f", config.Curator.RateLimit)
	}
	if config.Server.Port != 8501 {
		t.Errorf("expected port 8501, got %d", config.Server.Port)
	}
	if config.Credentials.Spotify.Configured() {
		t.Error("expected default config to be unconfigured")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	config := DefaultConfig()
	config.Credentials.Spotify.ClientID = "id123"
	config.Credentials.Spotify.ClientSecret = "secret456"
	config.Curator.PlaylistSize = 30
	config.Database.Path = "custom.db"

	if err := SaveConfig(path, config); err != nil {
		t.Fatalf("expected no error saving, got %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected no error loading, got %v", err)
	}

	if loaded.Credentials.Spotify.ClientID != "id123" {
		t.Errorf("expected client ID to round-trip, got %q", loaded.Credentials.Spotify.ClientID)
	}
	if loaded.Curator.PlaylistSize != 30 {
		t.Errorf("expected playlist size 30, got %d", loaded.Curator.PlaylistSize)
	}
	if loaded.Database.Path != "custom.db" {
		t.Errorf("expected database path to round-trip, got %q", loaded.Database.Path)
	}
	if !loaded.Credentials.Spotify.Configured() {
		t.Error("expected loaded config to be configured")
	}
}

func TestLoadConfigMissing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	minimal := &Config{}
	minimal.Credentials.Spotify.ClientID = "id"
	if err := SaveConfig(path, minimal); err != nil {
		t.Fatalf("expected no error saving, got %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected no error loading, got %v", err)
	}

	if loaded.Curator.PlaylistSize != 20 {
		t.Errorf("expected default playlist size, got %d", loaded.Curator.PlaylistSize)
	}
	if loaded.Curator.ModelPath != "vibe_model.gob" {
		t.Errorf("expected default model path, got %q", loaded.Curator.ModelPath)
	}
	if loaded.Server.Port != 8501 {
		t.Errorf("expected default port, got %d", loaded.Server.Port)
	}
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// refuses to overwrite
	if err := CreateConfigFile(path); err == nil {
		t.Fatal("expected error for existing file")
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("expected created config to parse, got %v", err)
	}
	if config.Curator.TrainingDataPath != "training_data.json" {
		t.Errorf("unexpected training data path %q", config.Curator.TrainingDataPath)
	}
}

func TestSpotifyConfigUpdate(t *testing.T) {
	t.Run("stores token fields", func(t *testing.T) {
		var cfg SpotifyConfig

		expiry := time.Now().Add(time.Hour)
		err := cfg.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       expiry,
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if cfg.AccessToken != "access" || cfg.RefreshToken != "refresh" {
			t.Error("expected tokens to be stored")
		}
		if !cfg.TokenExpiry.Equal(expiry) {
			t.Error("expected expiry to be stored")
		}
	})

	t.Run("keeps refresh token when absent", func(t *testing.T) {
		cfg := SpotifyConfig{RefreshToken: "existing"}

		if err := cfg.Update(&oauth2.Token{AccessToken: "new"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.RefreshToken != "existing" {
			t.Errorf("expected refresh token to survive, got %q", cfg.RefreshToken)
		}
	})

	t.Run("rejects nil and empty tokens", func(t *testing.T) {
		var cfg SpotifyConfig

		if err := cfg.Update(nil); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for nil token, got %v", err)
		}
		if err := cfg.Update(&oauth2.Token{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for empty token, got %v", err)
		}
	})
}
