package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath                  string `yaml:"db_path" env:"QUEUEBOT_DB_PATH"`
	LegacyExportDir         string `yaml:"legacy_export_dir" env:"QUEUEBOT_LEGACY_EXPORT_DIR"`
	CheckForLegacyMigration bool   `yaml:"check_for_legacy_migration" env:"CHECK_FOR_LEGACY_MIGRATION"`
	DiscordToken            string `yaml:"discord_token" env:"DISCORD_TOKEN"`
	LogLevel                string `yaml:"log_level" env:"QUEUEBOT_LOG_LEVEL"`
	LogFormat               string `yaml:"log_format" env:"QUEUEBOT_LOG_FORMAT"`
	Output                  string `yaml:"output" env:"QUEUEBOT_OUTPUT"`
	MetricsAddr             string `yaml:"metrics_addr" env:"QUEUEBOT_METRICS_ADDR"`
	OTLPEndpoint            string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Defaults used when neither the YAML file nor the environment set a value.
const (
	DefaultDBPath          = "data/main.sqlite"
	DefaultLegacyExportDir = "data/migrations/legacy-export"
)

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/queuebot/config.yaml (YAML)
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:          DefaultDBPath,
		LegacyExportDir: DefaultLegacyExportDir,
		LogLevel:        "info",
		LogFormat:       "text",
		Output:          "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if err := loadYAMLConfig(cfg); err != nil {
		return nil, err
	}

	// Unset variables leave the YAML value in place.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if dbPath := getEnvOrFile("QUEUEBOT_DB_PATH", "QUEUEBOT_DB_PATH_FILE"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if token := getEnvOrFile("DISCORD_TOKEN", "DISCORD_TOKEN_FILE"); token != "" {
		cfg.DiscordToken = token
	}

	return cfg, nil
}

// loadYAMLConfig loads configuration from ~/.config/queuebot/config.yaml.
// A missing file is not an error.
func loadYAMLConfig(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	configPath := filepath.Join(homeDir, ".config", "queuebot", "config.yaml")
	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	return nil
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		if dir == homeDir {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
