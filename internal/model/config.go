package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// WatcherConfig holds settings for the clipboard polling loop.
type WatcherConfig struct {
	// PollIntervalMs is how often the OS clipboard is read.
	PollIntervalMs int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
}

// HistoryConfig holds settings for the clip history store.
type HistoryConfig struct {
	// DedupWindowHours is the span during which identical unpinned
	// content is merged rather than duplicated.
	DedupWindowHours int `mapstructure:"dedup_window_hours" yaml:"dedup_window_hours"`

	// KeepDays controls retention pruning of unpinned clips.
	KeepDays int `mapstructure:"keep_days" yaml:"keep_days"`
}

// AIConfig holds settings for generation requests.
type AIConfig struct {
	// RequestTimeoutSec bounds a single streaming request end to end.
	RequestTimeoutSec int `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DBPath overrides the default database location when set.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// ImagesDir overrides the default image blob directory when set.
	ImagesDir string `mapstructure:"images_dir" yaml:"images_dir"`

	Watcher WatcherConfig `mapstructure:"watcher" yaml:"watcher"`
	History HistoryConfig `mapstructure:"history" yaml:"history"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pastego/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "pastego", "config.yaml")
}

// DefaultDataDir returns the directory holding the database and image
// blobs, located at ~/.local/share/pastego.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "pastego")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Watcher: WatcherConfig{PollIntervalMs: 500},
		History: HistoryConfig{
			DedupWindowHours: 24,
			KeepDays:         30,
		},
		AI: AIConfig{RequestTimeoutSec: 120},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("watcher.poll_interval_ms", 500)
	v.SetDefault("history.dedup_window_hours", 24)
	v.SetDefault("history.keep_days", 30)
	v.SetDefault("ai.request_timeout_sec", 120)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("db_path", cfg.DBPath)
	v.Set("images_dir", cfg.ImagesDir)
	v.Set("watcher", cfg.Watcher)
	v.Set("history", cfg.History)
	v.Set("ai", cfg.AI)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
