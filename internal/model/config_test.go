package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Watcher.PollIntervalMs != 500 {
		t.Errorf("PollIntervalMs = %d, want 500", cfg.Watcher.PollIntervalMs)
	}
	if cfg.History.DedupWindowHours != 24 {
		t.Errorf("DedupWindowHours = %d, want 24", cfg.History.DedupWindowHours)
	}
	if cfg.History.KeepDays != 30 {
		t.Errorf("KeepDays = %d, want 30", cfg.History.KeepDays)
	}
	if cfg.AI.RequestTimeoutSec != 120 {
		t.Errorf("RequestTimeoutSec = %d, want 120", cfg.AI.RequestTimeoutSec)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "history:\n  keep_days: 7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.History.KeepDays != 7 {
		t.Errorf("KeepDays = %d, want 7", cfg.History.KeepDays)
	}
	if cfg.Watcher.PollIntervalMs != 500 {
		t.Errorf("PollIntervalMs = %d, want default 500", cfg.Watcher.PollIntervalMs)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &AppConfig{
		DBPath:    "/tmp/history.db",
		ImagesDir: "/tmp/images",
		Watcher:   WatcherConfig{PollIntervalMs: 250},
		History:   HistoryConfig{DedupWindowHours: 48, KeepDays: 14},
		AI:        AIConfig{RequestTimeoutSec: 60},
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if loaded.DBPath != cfg.DBPath {
		t.Errorf("DBPath = %q, want %q", loaded.DBPath, cfg.DBPath)
	}
	if loaded.Watcher.PollIntervalMs != 250 {
		t.Errorf("PollIntervalMs = %d, want 250", loaded.Watcher.PollIntervalMs)
	}
	if loaded.History.DedupWindowHours != 48 {
		t.Errorf("DedupWindowHours = %d, want 48", loaded.History.DedupWindowHours)
	}
	if loaded.AI.RequestTimeoutSec != 60 {
		t.Errorf("RequestTimeoutSec = %d, want 60", loaded.AI.RequestTimeoutSec)
	}
}
