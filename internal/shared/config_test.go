package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Credentials.Spotify.RedirectURI == "" {
			t.Error("expected default redirect URI to be set")
		}
		if config.Export.Format != "m3u" {
			t.Errorf("expected default format m3u, got %s", config.Export.Format)
		}
		if config.Server.Port == 0 {
			t.Error("expected default server port to be set")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		content := `
[credentials.spotify]
client_id = "abc"
client_secret = "def"
redirect_uri = "http://127.0.0.1:9999/callback"

[export]
format = "both"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Credentials.Spotify.ClientID != "abc" {
			t.Errorf("expected client_id abc, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Export.Format != "both" {
			t.Errorf("expected format both, got %s", config.Export.Format)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "client"
		config.Credentials.Spotify.AccessToken = "token"

		if err := SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.Spotify.ClientID != "client" {
			t.Errorf("expected client_id to round trip, got %s", loaded.Credentials.Spotify.ClientID)
		}
		if loaded.Credentials.Spotify.AccessToken != "token" {
			t.Errorf("expected access_token to round trip, got %s", loaded.Credentials.Spotify.AccessToken)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when config file already exists")
		}
	})
}
