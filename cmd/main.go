package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"spotexport/internal/shared"
)

const configFile = "config.toml"

// applyEnvOverrides layers SPOTIFY_* environment variables over the file config.
// A .env file in the working directory is honored when present.
func applyEnvOverrides(config *shared.Config) {
	_ = godotenv.Load()

	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		config.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		config.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		config.Credentials.Spotify.RedirectURI = v
	}
}

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configFile); err == nil {
		if loadedConfig, err := shared.LoadConfig(configFile); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "error", err)
		}
	}
	applyEnvOverrides(config)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configFile,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "spotexport",
		Usage:    "Export Spotify playlists to a ZIP archive of CSV and M3U files",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
