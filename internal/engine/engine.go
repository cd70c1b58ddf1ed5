// Package engine drives enforcement: each candidate post walks the flow
// Received -> Deduped? -> ModRuled? -> TriggerMatch? -> Whitelisted? ->
// HistoryFetched -> Evaluated -> {Removed | Skipped}, and only the triggering post is ever
// removed. The bot has moderation authority only going forward; a user's
// older posts were within policy relative to an evolving ratio.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/modtools/tubeguard/internal/botconfig"
	"github.com/modtools/tubeguard/internal/dedup"
	"github.com/modtools/tubeguard/internal/domain"
	"github.com/modtools/tubeguard/internal/policy"
)

const removalRetryDelay = 5 * time.Second

// ConfigSource yields the current runtime configuration snapshot.
type ConfigSource interface {
	Current() *botconfig.Snapshot
}

// Options tune the coordinator.
type Options struct {
	Workers            int
	FetchRetryBudget   time.Duration
	SendRemovalMessage bool
}

// Engine consumes candidate posts and enforces the link-spam policy.
type Engine struct {
	client   domain.PlatformClient
	config   ConfigSource
	cursor   *dedup.Cursor
	outcomes chan<- domain.Outcome
	logger   zerolog.Logger
	opts     Options
}

// New constructs the coordinator. outcomes may be nil to disable journaling.
func New(client domain.PlatformClient, config ConfigSource, cursor *dedup.Cursor, outcomes chan<- domain.Outcome, logger zerolog.Logger, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.FetchRetryBudget <= 0 {
		opts.FetchRetryBudget = 2 * time.Minute
	}
	return &Engine{
		client:   client,
		config:   config,
		cursor:   cursor,
		outcomes: outcomes,
		logger:   logger.With().Str("component", "engine").Logger(),
		opts:     opts,
	}
}

// Run consumes in until it is closed and all in-flight candidates reached a
// terminal state. Remote calls run detached from process cancellation (each
// carries its own timeout) so shutdown drains cleanly instead of abandoning
// a candidate between "marked seen" and "removed".
func (e *Engine) Run(ctx context.Context, in <-chan domain.Post) {
	opCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for post := range in {
				e.process(opCtx, post)
			}
		}()
	}
	wg.Wait()
}

func (e *Engine) process(ctx context.Context, post domain.Post) {
	started := time.Now()
	snap := e.config.Current()

	out := e.decide(ctx, post, snap)
	out.Time = time.Now().UTC()
	e.report(out, started)
}

func (e *Engine) decide(ctx context.Context, post domain.Post, snap *botconfig.Snapshot) domain.Outcome {
	out := domain.Outcome{
		State:     domain.StateSkipped,
		PostID:    post.ID,
		Kind:      post.Kind,
		Subreddit: post.Subreddit,
		Author:    post.Author,
	}

	// Claiming the ID up front is the dedup check and the mark in one step,
	// so two workers holding the same candidate cannot both act on it.
	if !e.cursor.Claim(post.ID) {
		out.Reason = domain.ReasonDuplicate
		return out
	}
	// A moderator already ruled on this post; either verdict settles it
	// before any history fetch.
	if post.ApprovedBy != "" {
		out.Reason = domain.ReasonAlreadyApproved
		return out
	}
	if post.Removed {
		out.Reason = domain.ReasonAlreadyRemoved
		return out
	}
	if post.Author == "" || post.Author == "[deleted]" {
		out.Reason = domain.ReasonAuthorUnavailable
		return out
	}
	// Only posts that themselves carry a YouTube link warrant a history
	// fetch; everything else is clean traffic.
	if !policy.IsTargetLink(post) {
		out.Reason = domain.ReasonNoTargetLink
		return out
	}
	if snap.Whitelist.IsExempt(post.Author) {
		out.Reason = domain.ReasonWhitelisted
		return out
	}

	history, err := e.fetchHistory(ctx, post.Author, snap.Rules.Lookback)
	if errors.Is(err, domain.ErrUserUnavailable) {
		out.Reason = domain.ReasonAuthorUnavailable
		return out
	}
	if err != nil {
		out.Reason = domain.ReasonHistoryFetchFailed
		out.Err = err.Error()
		return out
	}

	dec := policy.Evaluate(history, snap.Rules.Lookback, snap.Rules.TargetRatio)
	ratio := dec.Ratio
	out.Ratio = &ratio
	out.SampleSize = dec.SampleSize
	if !dec.Exceeds {
		out.Reason = domain.ReasonBelowThreshold
		return out
	}

	return e.remove(ctx, post, dec, out)
}

// fetchHistory retrieves up to lookback of the author's most recent posts,
// retrying transient failures until the budget runs out. A decision is never
// guessed from partial data: exhaustion surfaces as an error skip.
func (e *Engine) fetchHistory(ctx context.Context, username string, lookback int) ([]domain.Post, error) {
	var history []domain.Post
	operation := func() error {
		h, err := e.client.FetchUserHistory(ctx, username, lookback)
		historyFetchCount.Inc()
		if err != nil {
			historyFetchErrors.Inc()
			if domain.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		history = h
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = e.opts.FetchRetryBudget
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return history, nil
}

func (e *Engine) remove(ctx context.Context, post domain.Post, dec domain.Decision, out domain.Outcome) domain.Outcome {
	res, err := e.client.Remove(ctx, post.ID)
	if err != nil && domain.IsTransient(err) {
		// One bounded retry; removal is not worth retrying indefinitely.
		select {
		case <-time.After(removalRetryDelay):
		case <-ctx.Done():
		}
		res, err = e.client.Remove(ctx, post.ID)
	}
	if err != nil {
		out.Reason = domain.ReasonRemovalFailed
		out.Err = err.Error()
		return out
	}

	switch res {
	case domain.RemoveAlreadyRemoved:
		// Another moderator got there first; the idempotent goal is met.
		out.Reason = domain.ReasonAlreadyRemoved
		return out
	case domain.RemovePermissionDenied:
		out.Reason = domain.ReasonPermissionDenied
		return out
	}

	out.State = domain.StateRemoved
	out.Reason = domain.ReasonRatioExceeded
	removalCount.WithLabelValues(post.Subreddit).Inc()

	if e.opts.SendRemovalMessage {
		if err := e.client.Reply(ctx, post.ID, removalMessage(post)); err != nil {
			e.logger.Warn().Err(err).Str("post_id", post.ID).Msg("failed to send removal message")
		}
	}
	return out
}

func (e *Engine) report(out domain.Outcome, started time.Time) {
	processDuration.WithLabelValues(string(out.Kind)).Observe(time.Since(started).Seconds())
	outcomeCount.WithLabelValues(string(out.State), out.Reason).Inc()

	var evt *zerolog.Event
	switch {
	case out.State == domain.StateRemoved:
		evt = e.logger.Info()
	case out.Err != "":
		evt = e.logger.Error().Str("error", out.Err)
	default:
		evt = e.logger.Debug()
	}
	evt = evt.
		Str("post_id", out.PostID).
		Str("kind", string(out.Kind)).
		Str("subreddit", out.Subreddit).
		Str("author", out.Author).
		Str("state", string(out.State)).
		Str("reason", out.Reason)
	if out.Ratio != nil {
		evt = evt.Float64("ratio", *out.Ratio).Int("sample_size", out.SampleSize)
	}
	evt.Msg("candidate processed")

	if e.outcomes != nil {
		e.outcomes <- out
	}
}
