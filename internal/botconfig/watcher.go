package botconfig

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/modtools/tubeguard/internal/domain"
	"github.com/modtools/tubeguard/internal/policy"
)

// Snapshot is one immutable view of the runtime configuration. Readers take
// the whole snapshot at a processing boundary; a reload swaps the pointer
// wholesale so nobody observes a half-updated config.
type Snapshot struct {
	Rules     domain.BotConfig
	Whitelist *policy.WhitelistGate
	LoadedAt  time.Time
}

func newSnapshot(rules domain.BotConfig) *Snapshot {
	return &Snapshot{
		Rules:     rules,
		Whitelist: policy.NewWhitelistGate(rules.UserWhitelist),
		LoadedAt:  time.Now().UTC(),
	}
}

// Watcher polls the wiki page and maintains the current Snapshot. A reload
// that fails to fetch or parse keeps the last-known-good snapshot and logs
// the problem; enforcement never halts on a bad config edit.
type Watcher struct {
	store   PageStore
	page    string
	refresh time.Duration
	logger  zerolog.Logger

	current atomic.Pointer[Snapshot]
	raw     string
}

func NewWatcher(store PageStore, page string, refresh time.Duration, logger zerolog.Logger) *Watcher {
	if page == "" {
		page = DefaultPage
	}
	return &Watcher{
		store:   store,
		page:    page,
		refresh: refresh,
		logger:  logger.With().Str("component", "botconfig").Logger(),
	}
}

// Load performs the initial fetch. A missing page gets a template written
// and returns an error telling the operator to fill it in; running with no
// config at all is not meaningful.
func (w *Watcher) Load(ctx context.Context) error {
	content, err := w.store.FetchPage(ctx, w.page)
	if errors.Is(err, domain.ErrNotFound) {
		w.logger.Error().Str("page", w.page).Msg("config wiki page not found; creating a template")
		if createErr := w.store.CreatePage(ctx, w.page, Template); createErr != nil {
			return fmt.Errorf("create config template: %w", createErr)
		}
		return fmt.Errorf("config wiki page %q was missing; template created, fill it in and restart", w.page)
	}
	if err != nil {
		return fmt.Errorf("fetch config page: %w", err)
	}

	rules, err := Parse(content)
	if err != nil {
		return err
	}

	w.raw = content
	w.current.Store(newSnapshot(rules))
	w.logSnapshot(rules)
	return nil
}

// Current returns the active snapshot. Load must have succeeded first.
func (w *Watcher) Current() *Snapshot {
	snap := w.current.Load()
	if snap == nil {
		panic("botconfig: Current called before Load")
	}
	return snap
}

// Run polls for page edits until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	content, err := w.store.FetchPage(ctx, w.page)
	if err != nil {
		w.logger.Warn().Err(err).Msg("config refresh failed; keeping last-known-good")
		return
	}
	if content == w.raw {
		return
	}

	rules, err := Parse(content)
	if err != nil {
		w.logger.Error().Err(err).Msg("config page malformed; keeping last-known-good")
		return
	}

	w.raw = content
	w.current.Store(newSnapshot(rules))
	w.logger.Info().Msg("runtime config reloaded")
	w.logSnapshot(rules)
}

func (w *Watcher) logSnapshot(rules domain.BotConfig) {
	w.logger.Info().
		Strs("subreddits", rules.Subreddits).
		Float64("target_ratio", rules.TargetRatio).
		Int("lookback", rules.Lookback).
		Int("whitelisted", len(rules.UserWhitelist)).
		Msg("runtime config active")
}
