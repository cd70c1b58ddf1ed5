package app

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/modtools/tubeguard/internal/botconfig"
	"github.com/modtools/tubeguard/internal/collector"
	"github.com/modtools/tubeguard/internal/config"
	"github.com/modtools/tubeguard/internal/dashboard"
	"github.com/modtools/tubeguard/internal/dedup"
	"github.com/modtools/tubeguard/internal/domain"
	"github.com/modtools/tubeguard/internal/engine"
	"github.com/modtools/tubeguard/internal/ingest"
	"github.com/modtools/tubeguard/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newClient() (collector.Client, error) {
	client, err := collector.New(a.Config.Collector)
	if err != nil {
		return nil, err
	}
	if a.Config.Enforcement.DryRun {
		a.Logger.Warn().Msg("dry run enabled; removals and replies will only be logged")
		return collector.NewDryRun(client, a.Logger), nil
	}
	return client, nil
}

// Run executes the long-running moderation bot until interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := a.newClient()
	if err != nil {
		return err
	}

	watcher := botconfig.NewWatcher(client, a.Config.Wiki.Page, a.Config.Wiki.Refresh, a.Logger)
	if err := watcher.Load(ctx); err != nil {
		return err
	}
	go func() {
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error().Err(err).Msg("config watcher stopped")
		}
	}()

	if a.Config.Dashboard.Enabled {
		go func() {
			a.Logger.Info().Str("addr", a.Config.Dashboard.Addr).Msg("starting dashboard")
			if err := dashboard.StartServer(a.Config.Dashboard.Journal, a.Config.Dashboard.Addr); err != nil {
				a.Logger.Error().Err(err).Msg("dashboard failed")
			}
		}()
	}

	outcomes := make(chan domain.Outcome, 64)
	journal := &storage.Journal{FilePath: a.Config.Dashboard.Journal, Logger: a.Logger}
	var journalWg sync.WaitGroup
	journalWg.Add(1)
	go journal.Start(&journalWg, outcomes)

	cursor := dedup.New(a.Config.Dedup.Capacity, a.Config.Dedup.Retention)
	candidates := make(chan domain.Post, a.Config.Engine.QueueSize)

	ing := ingest.New(client, ingest.Options{
		PollInterval: a.Config.Ingest.PollInterval,
		PageSize:     a.Config.Ingest.PageSize,
		RetryBudget:  a.Config.Ingest.RetryBudget,
		Overlap:      a.Config.Ingest.Overlap,
	}, a.Logger)

	eng := engine.New(client, watcher, cursor, outcomes, a.Logger, engine.Options{
		Workers:            a.Config.Engine.Workers,
		FetchRetryBudget:   a.Config.Engine.FetchRetryBudget,
		SendRemovalMessage: a.Config.Enforcement.SendRemovalMessage,
	})

	a.Logger.Info().Msg("starting enforcement")
	go ing.Run(ctx, watcher, candidates)

	// Blocks until ingestion closes the channel and in-flight candidates
	// drain to a terminal state.
	eng.Run(ctx, candidates)

	close(outcomes)
	journalWg.Wait()
	a.Logger.Info().Msg("shutdown complete")
	return nil
}

// InitConfig makes sure the runtime configuration wiki page exists, writing
// the template when it does not.
func (a *App) InitConfig(ctx context.Context) error {
	client, err := collector.New(a.Config.Collector)
	if err != nil {
		return err
	}

	page := a.Config.Wiki.Page
	if _, err := client.FetchPage(ctx, page); err == nil {
		a.Logger.Info().Str("page", page).Msg("config wiki page already exists")
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := client.CreatePage(ctx, page, botconfig.Template); err != nil {
		return err
	}
	a.Logger.Info().Str("page", page).Msg("config wiki page template created; fill it in before running")
	return nil
}
