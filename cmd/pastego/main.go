package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pastego/pastego/internal/ai"
	"github.com/pastego/pastego/internal/app"
	"github.com/pastego/pastego/internal/blob"
	"github.com/pastego/pastego/internal/clipboard"
	"github.com/pastego/pastego/internal/model"
	"github.com/pastego/pastego/internal/store"
)

func main() {
	configPath := flag.String("config", model.DefaultConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	dataDir := model.DefaultDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating data dir: %v\n", err)
		os.Exit(1)
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "pastego.db")
	}
	imagesDir := cfg.ImagesDir
	if imagesDir == "" {
		imagesDir = filepath.Join(dataDir, "images")
	}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening store: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	s.SetDedupWindow(time.Duration(cfg.History.DedupWindowHours) * time.Hour)
	s.SetBlobStore(blob.NewFileStore(imagesDir))

	// Retention pruning runs once per launch.
	if removed, err := s.PruneClips(context.Background(), cfg.History.KeepDays); err != nil {
		log.Printf("pruning old clips: %v", err)
	} else if removed > 0 {
		log.Printf("pruned %d clips older than %d days", removed, cfg.History.KeepDays)
	}

	watcher := clipboard.New(
		s,
		clipboard.NewSystem(),
		time.Duration(cfg.Watcher.PollIntervalMs)*time.Millisecond,
	)
	generator := ai.NewGenerator(time.Duration(cfg.AI.RequestTimeoutSec) * time.Second)

	m := app.New(s, watcher, generator, cfg.History.KeepDays)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
