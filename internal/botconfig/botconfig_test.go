package botconfig

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modtools/tubeguard/internal/domain"
)

const samplePage = `[youtube_spam_bot]
subreddits=videos
	gaming
target_ratio=0.33
lookback=50
user_whitelist=TrustedUser
	another_mod
`

func TestParse(t *testing.T) {
	cfg, err := Parse(samplePage)
	require.NoError(t, err)

	assert.Equal(t, []string{"videos", "gaming"}, cfg.Subreddits)
	assert.Equal(t, 0.33, cfg.TargetRatio)
	assert.Equal(t, 50, cfg.Lookback)
	assert.Equal(t, []string{"TrustedUser", "another_mod"}, cfg.UserWhitelist)
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"missing section", "[other]\nsubreddits=videos\n"},
		{"no subreddits", "[youtube_spam_bot]\nsubreddits=\ntarget_ratio=0.3\nlookback=10\nuser_whitelist=\n"},
		{"ratio out of range", "[youtube_spam_bot]\nsubreddits=videos\ntarget_ratio=1.5\nlookback=10\nuser_whitelist=\n"},
		{"zero lookback", "[youtube_spam_bot]\nsubreddits=videos\ntarget_ratio=0.3\nlookback=0\nuser_whitelist=\n"},
		{"garbage ratio", "[youtube_spam_bot]\nsubreddits=videos\ntarget_ratio=high\nlookback=10\nuser_whitelist=\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.content)
			assert.Error(t, err)
		})
	}
}

type fakeStore struct {
	mu      sync.Mutex
	pages   map[string]string
	fetches int
	creates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{pages: map[string]string{}}
}

func (s *fakeStore) FetchPage(ctx context.Context, page string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	content, ok := s.pages[page]
	if !ok {
		return "", fmt.Errorf("wiki page %s: %w", page, domain.ErrNotFound)
	}
	return content, nil
}

func (s *fakeStore) CreatePage(ctx context.Context, page, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	s.pages[page] = content
	return nil
}

func (s *fakeStore) set(page, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page] = content
}

func TestWatcherLoad(t *testing.T) {
	store := newFakeStore()
	store.set(DefaultPage, samplePage)

	w := NewWatcher(store, "", time.Minute, zerolog.Nop())
	require.NoError(t, w.Load(context.Background()))

	snap := w.Current()
	assert.Equal(t, 0.33, snap.Rules.TargetRatio)
	assert.True(t, snap.Whitelist.IsExempt("trusteduser"))
}

func TestWatcherMissingPageCreatesTemplate(t *testing.T) {
	store := newFakeStore()

	w := NewWatcher(store, DefaultPage, time.Minute, zerolog.Nop())
	err := w.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, store.creates)
	assert.Equal(t, Template, store.pages[DefaultPage])
}

func TestWatcherKeepsLastKnownGood(t *testing.T) {
	store := newFakeStore()
	store.set(DefaultPage, samplePage)

	w := NewWatcher(store, DefaultPage, time.Minute, zerolog.Nop())
	require.NoError(t, w.Load(context.Background()))
	before := w.Current()

	store.set(DefaultPage, "totally not ini }{")
	w.reload(context.Background())
	assert.Same(t, before, w.Current())

	// A valid edit swaps the snapshot wholesale.
	store.set(DefaultPage, "[youtube_spam_bot]\nsubreddits=videos\ntarget_ratio=0.5\nlookback=25\nuser_whitelist=\n")
	w.reload(context.Background())
	after := w.Current()
	assert.NotSame(t, before, after)
	assert.Equal(t, 0.5, after.Rules.TargetRatio)
	assert.Equal(t, 25, after.Rules.Lookback)
}
