package main

import (
	"context"
	"flag"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/siddarthal/AiHackathon/internal/app"
	"github.com/siddarthal/AiHackathon/internal/config"
	"github.com/siddarthal/AiHackathon/internal/domain"
	"github.com/siddarthal/AiHackathon/internal/service"
	"github.com/siddarthal/AiHackathon/internal/tui"
)

// consoleAssistant adapts the service to the console's narrower port.
type consoleAssistant struct {
	svc *service.Service
}

func (a consoleAssistant) Search(query string, topK int) ([]domain.SearchResult, error) {
	return a.svc.Search(query, topK)
}

func (a consoleAssistant) AnswerQuery(ctx context.Context, query string) (string, error) {
	answer, err := a.svc.AnswerQuery(ctx, query)
	if err != nil {
		return "", err
	}
	return answer.Answer, nil
}

func main() {
	_ = godotenv.Load()

	var cfgPath, docs string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional)")
	flag.StringVar(&docs, "docs", "", "Directory to index (defaults to the configured documents path)")
	flag.Parse()

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
	if docs == "" {
		docs = cfg.Documents.Path
	}

	svc, err := app.BuildService(cfg)
	if err != nil {
		log.Fatal("failed to assemble service", "err", err)
	}

	digest := ""
	loaded, err := svc.LoadPersistedIndex(cfg.Index.Path)
	if err != nil {
		log.Fatal("failed to load persisted index", "err", err)
	}
	if loaded {
		digest = svc.Status().Digest
		log.Info("using persisted index", "dir", cfg.Index.Path)
	} else {
		stats, err := svc.IndexDirectory(context.Background(), docs)
		if err != nil {
			log.Fatal("indexing failed", "dir", docs, "err", err)
		}
		digest = stats.Digest
	}

	m := tui.New(consoleAssistant{svc: svc}, digest)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal("console exited", "err", err)
	}
}
