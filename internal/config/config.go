package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string   `toml:"discord_token"`
	OwnerIDs     []string `toml:"owner_ids"`

	// Storage
	DataDirectory  string `toml:"data_directory"`
	DatabaseDriver string `toml:"database_driver"`
	DatabaseURL    string `toml:"database_url"`

	// Media
	DownloadTimeoutSeconds int `toml:"download_timeout_seconds"`

	// Sweeper
	SweepIntervalMinutes int `toml:"sweep_interval_minutes"`
	SweepGraceMinutes    int `toml:"sweep_grace_minutes"`

	// Logging and metrics
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	MetricsAddr string `toml:"metrics_addr"`
}

// Load reads configuration from an optional TOML file named by CONFIG_FILE,
// then from environment variables, which take precedence
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DataDirectory:          "./data",
		DatabaseDriver:         "sqlite",
		LogLevel:               "info",
		LogFormat:              "text",
		DownloadTimeoutSeconds: 30,
		SweepIntervalMinutes:   60,
		SweepGraceMinutes:      60,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.DiscordToken = getEnvOrDefault("DISCORD_BOT_TOKEN", cfg.DiscordToken)
	cfg.DataDirectory = getEnvOrDefault("DATA_DIRECTORY", cfg.DataDirectory)
	cfg.DatabaseDriver = getEnvOrDefault("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.MetricsAddr = getEnvOrDefault("METRICS_ADDR", cfg.MetricsAddr)

	if owners := os.Getenv("OWNER_IDS"); owners != "" {
		cfg.OwnerIDs = splitList(owners)
	}

	ints := []struct {
		key  string
		dest *int
	}{
		{"DOWNLOAD_TIMEOUT_SECONDS", &cfg.DownloadTimeoutSeconds},
		{"SWEEP_INTERVAL_MINUTES", &cfg.SweepIntervalMinutes},
		{"SWEEP_GRACE_MINUTES", &cfg.SweepGraceMinutes},
	}
	for _, v := range ints {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dest = n
	}

	if cfg.DatabaseURL == "" && cfg.DatabaseDriver == "sqlite" {
		cfg.DatabaseURL = filepath.Join(cfg.DataDirectory, "bot.db")
	}

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if cfg.DatabaseDriver != "sqlite" && cfg.DatabaseDriver != "postgres" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER: %s", cfg.DatabaseDriver)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for %s", cfg.DatabaseDriver)
	}
	if cfg.DownloadTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("DOWNLOAD_TIMEOUT_SECONDS must be positive")
	}
	if cfg.SweepIntervalMinutes < 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must not be negative")
	}
	// A file downloaded by a running command is unreferenced until the command saves it
	if cfg.SweepGrace() <= cfg.CommandTimeout() {
		return nil, fmt.Errorf("SWEEP_GRACE_MINUTES must exceed the command timeout of %s", cfg.CommandTimeout())
	}

	return cfg, nil
}

// CommandTimeout bounds a single command or member event, including attachment downloads
func (c *Config) CommandTimeout() time.Duration {
	return 4*c.DownloadTimeout() + 10*time.Second
}

// SweepInterval returns how often orphaned files are swept; zero disables the sweeper
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMinutes) * time.Minute
}

// SweepGrace returns the minimum age of a file before the sweeper may remove it
func (c *Config) SweepGrace() time.Duration {
	return time.Duration(c.SweepGraceMinutes) * time.Minute
}

// DownloadTimeout returns the attachment download timeout
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

// IsOwner reports whether userID may run owner-only commands
func (c *Config) IsOwner(userID string) bool {
	for _, id := range c.OwnerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
