package main

import (
	"context"
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/siddarthal/AiHackathon/internal/app"
	"github.com/siddarthal/AiHackathon/internal/config"
	"github.com/siddarthal/AiHackathon/internal/server"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/assistant/config.yaml if not provided)")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, cfgPath, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	log.Info("config loaded", "path", cfgPath)

	svc, err := app.BuildService(cfg)
	if err != nil {
		log.Fatal("failed to assemble service", "err", err)
	}

	loaded, err := svc.LoadPersistedIndex(cfg.Index.Path)
	if err != nil {
		log.Fatal("failed to load persisted index", "err", err)
	}
	if loaded {
		log.Info("serving persisted index", "dir", cfg.Index.Path)
	} else {
		// Requests arriving before this finishes see the not-ready state.
		go func() {
			stats, err := svc.IndexDirectory(context.Background(), cfg.Documents.Path)
			if err != nil {
				log.Error("initial indexing failed, POST /reindex to retry", "err", err)
				return
			}
			log.Info("initial index ready", "files", stats.Files, "chunks", stats.Chunks)
		}()
	}

	if err := server.New(cfg, svc).Run(); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}
