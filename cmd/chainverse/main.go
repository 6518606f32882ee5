package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bowerhall/chainverse/internal/api"
	"github.com/bowerhall/chainverse/internal/archive"
	"github.com/bowerhall/chainverse/internal/collector"
	"github.com/bowerhall/chainverse/internal/config"
	"github.com/bowerhall/chainverse/internal/derivation"
	"github.com/bowerhall/chainverse/internal/llm"
	"github.com/bowerhall/chainverse/internal/logger"
	"github.com/bowerhall/chainverse/internal/notify"
	"github.com/bowerhall/chainverse/internal/poem"
	"github.com/bowerhall/chainverse/internal/solana"
	"github.com/bowerhall/chainverse/internal/store"
	"github.com/bowerhall/chainverse/internal/words"
)

func init() {
	godotenv.Load()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	mode := "once"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to open database", "error", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "once":
		c := buildCollector(cfg, db)
		c.RunOnce(ctx)
		logger.Info("collection cycle complete")
	case "daemon":
		c := buildCollector(cfg, db)
		if err := c.Run(ctx); err != nil && err != context.Canceled {
			logger.Fatal("collector failed", "error", err)
		}
	case "api":
		server := api.NewServer(db, cfg.Collector.MinKeywordsForPoem)
		if err := server.Run(ctx, cfg.Port); err != nil {
			logger.Fatal("api server failed", "error", err)
		}
	case "full":
		c := buildCollector(cfg, db)
		go func() {
			if err := c.Run(ctx); err != nil && err != context.Canceled {
				logger.Error("collector stopped", "error", err)
			}
		}()

		server := api.NewServer(db, cfg.Collector.MinKeywordsForPoem)
		if err := server.Run(ctx, cfg.Port); err != nil {
			logger.Fatal("api server failed", "error", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown mode: %s\n\n", mode)
		fmt.Fprintln(os.Stderr, "usage: chainverse [once|daemon|api|full]")
		fmt.Fprintln(os.Stderr, "  once    collect one keyword and exit (default)")
		fmt.Fprintln(os.Stderr, "  daemon  run the keyword collector continuously")
		fmt.Fprintln(os.Stderr, "  api     serve the read API only")
		fmt.Fprintln(os.Stderr, "  full    collector and API together")
		os.Exit(2)
	}
}

func buildCollector(cfg *config.Config, db *store.Store) *collector.Collector {
	if cfg.Generator.APIKey == "" {
		logger.Fatal("generator api key not configured", "provider", cfg.Generator.Provider)
	}

	dict, err := words.Load(cfg.WordsPath)
	if err != nil {
		logger.Fatal("failed to load word dictionary", "error", err, "path", cfg.WordsPath)
	}
	logger.Info("word dictionary loaded", "words", dict.Total())

	model, err := llm.New(cfg.Generator)
	if err != nil {
		logger.Fatal("failed to create generator", "error", err)
	}

	chain := solana.WithURL(cfg.RPCURL)
	c := collector.New(chain, derivation.New(dict), db, poem.NewGenerator(model), collector.Config{
		IntervalMinutes:    cfg.Collector.IntervalMinutes,
		CronSchedule:       cfg.Collector.CronSchedule,
		MinKeywordsForPoem: cfg.Collector.MinKeywordsForPoem,
	})

	notifier, err := notify.New(cfg.Notify)
	if err != nil {
		logger.Fatal("failed to create notifier", "error", err)
	}
	if notifier != nil {
		c.AddPublisher(notifier)
	}

	if cfg.Archive.Enabled {
		archiver, err := archive.NewClient(cfg.Archive.Config)
		if err != nil {
			logger.Fatal("failed to create archive client", "error", err)
		}
		if err := archiver.Init(context.Background()); err != nil {
			logger.Fatal("failed to init archive bucket", "error", err)
		}
		c.AddPublisher(archiver)
	}

	return c
}
