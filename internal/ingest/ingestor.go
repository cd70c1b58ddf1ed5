// Package ingest merges the new-submission and new-comment feeds of every
// monitored subreddit into one channel of candidate posts. Each feed is an
// independent polling loop: transient remote errors back off locally without
// stalling the other feeds, and a feed that stays broken past its retry
// budget is abandoned alone. Restarting a feed resumes from "now"; a brief
// gap is acceptable because enforcement is best-effort.
package ingest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/modtools/tubeguard/internal/botconfig"
	"github.com/modtools/tubeguard/internal/dedup"
	"github.com/modtools/tubeguard/internal/domain"
)

// Feed identifies one (subreddit, kind) polling loop.
type Feed struct {
	Subreddit string
	Kind      domain.PostKind
}

// Options tune the ingestor.
type Options struct {
	PollInterval time.Duration
	PageSize     int
	RetryBudget  time.Duration
	Overlap      time.Duration
}

// ConfigSource yields the current runtime configuration snapshot.
type ConfigSource interface {
	Current() *botconfig.Snapshot
}

// Ingestor produces candidate posts from all monitored subreddits.
type Ingestor struct {
	client domain.PlatformClient
	opts   Options
	logger zerolog.Logger
}

func New(client domain.PlatformClient, opts Options, logger zerolog.Logger) *Ingestor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 15 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.RetryBudget <= 0 {
		opts.RetryBudget = 10 * time.Minute
	}
	if opts.Overlap <= 0 {
		opts.Overlap = 2 * time.Minute
	}
	return &Ingestor{
		client: client,
		opts:   opts,
		logger: logger.With().Str("component", "ingest").Logger(),
	}
}

// Run subscribes to the feeds for the currently configured subreddits and
// emits candidates on out until ctx is cancelled. When the configured
// subreddit set changes, all feeds are torn down and resubscribed from
// "now". out is closed on return.
func (ing *Ingestor) Run(ctx context.Context, cfg ConfigSource, out chan<- domain.Post) {
	defer close(out)

	for {
		subs := cfg.Current().Rules.Subreddits
		key := membershipKey(subs)

		feedCtx, cancel := context.WithCancel(ctx)
		var wg sync.WaitGroup
		for _, sub := range subs {
			for _, kind := range []domain.PostKind{domain.KindSubmission, domain.KindComment} {
				feed := Feed{Subreddit: sub, Kind: kind}
				wg.Add(1)
				go func() {
					defer wg.Done()
					ing.runFeed(feedCtx, feed, out)
				}()
			}
		}
		ing.logger.Info().Strs("subreddits", subs).Msg("subscribed to feeds")

		changed := ing.awaitMembershipChange(ctx, cfg, key)
		cancel()
		wg.Wait()
		if !changed {
			return
		}
		ing.logger.Info().Msg("monitored subreddits changed; resubscribing")
	}
}

// awaitMembershipChange blocks until the subreddit set differs from key
// (returns true) or ctx is cancelled (returns false).
func (ing *Ingestor) awaitMembershipChange(ctx context.Context, cfg ConfigSource, key string) bool {
	ticker := time.NewTicker(ing.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if membershipKey(cfg.Current().Rules.Subreddits) != key {
				return true
			}
		}
	}
}

func membershipKey(subs []string) string {
	sorted := make([]string, len(subs))
	for i, s := range subs {
		sorted[i] = strings.ToLower(s)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, "+")
}

func (ing *Ingestor) runFeed(ctx context.Context, feed Feed, out chan<- domain.Post) {
	logger := ing.logger.With().Str("subreddit", feed.Subreddit).Str("kind", string(feed.Kind)).Logger()

	// Feed-local suppression of listing overlap between polls; the engine's
	// cursor still guards against duplicates across feeds.
	recent := dedup.New(ing.opts.PageSize*4, 4*ing.opts.Overlap)
	watermark := time.Now().UTC()

	for {
		posts, err := ing.poll(ctx, feed)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			feedFatalCount.WithLabelValues(feed.Subreddit, string(feed.Kind)).Inc()
			logger.Error().Err(err).Msg("feed exhausted its retry budget; abandoning this feed")
			return
		}

		watermark = ing.emit(ctx, posts, watermark, recent, out)
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(ing.opts.PollInterval):
		}
	}
}

// poll lists the newest posts for the feed, retrying transient failures with
// exponential backoff and jitter until the retry budget runs out.
func (ing *Ingestor) poll(ctx context.Context, feed Feed) ([]domain.Post, error) {
	var posts []domain.Post
	operation := func() error {
		var err error
		switch feed.Kind {
		case domain.KindSubmission:
			posts, err = ing.client.ListNewSubmissions(ctx, feed.Subreddit, ing.opts.PageSize)
		default:
			posts, err = ing.client.ListNewComments(ctx, feed.Subreddit, ing.opts.PageSize)
		}
		feedPollCount.WithLabelValues(feed.Subreddit, string(feed.Kind)).Inc()
		if err != nil {
			feedErrorCount.WithLabelValues(feed.Subreddit, string(feed.Kind)).Inc()
			if domain.IsTransient(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = time.Minute
	b.MaxElapsedTime = ing.opts.RetryBudget
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return posts, nil
}

// emit forwards unseen posts newer than the watermark (minus an overlap
// window) in time order, ties broken by id, and returns the new watermark.
func (ing *Ingestor) emit(ctx context.Context, posts []domain.Post, watermark time.Time, recent *dedup.Cursor, out chan<- domain.Post) time.Time {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.Before(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})

	cutoff := watermark.Add(-ing.opts.Overlap)
	for _, p := range posts {
		if p.CreatedAt.Before(cutoff) || recent.Seen(p.ID) {
			continue
		}
		select {
		case out <- p:
		case <-ctx.Done():
			return watermark
		}
		recent.Mark(p.ID)
		candidateCount.WithLabelValues(p.Subreddit, string(p.Kind)).Inc()
		if p.CreatedAt.After(watermark) {
			watermark = p.CreatedAt
		}
	}
	return watermark
}
