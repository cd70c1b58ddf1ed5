package collector

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/modtools/tubeguard/internal/domain"
)

// MockClient implements Client without touching the network. In mock mode it
// synthesizes plausible traffic (a fraction of it YouTube spam) so the whole
// pipeline can be exercised offline; tests also use it directly by seeding
// histories and removal results.
type MockClient struct {
	mu        sync.Mutex
	seq       int
	histories map[string][]domain.Post
	pages     map[string]string
	removed   map[string]domain.RemoveResult
	Removals  []string
	Replies   []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		histories: make(map[string][]domain.Post),
		pages:     make(map[string]string),
		removed:   make(map[string]domain.RemoveResult),
	}
}

// SeedHistory sets the canned history returned for a user.
func (mc *MockClient) SeedHistory(username string, history []domain.Post) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.histories[username] = history
}

// SeedRemoveResult forces the result of the next Remove for an id.
func (mc *MockClient) SeedRemoveResult(fullID string, res domain.RemoveResult) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.removed[fullID] = res
}

// SeedPage sets a wiki page's content.
func (mc *MockClient) SeedPage(page, content string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.pages[page] = content
}

func (mc *MockClient) Username() string { return "tubeguard_mock" }

func (mc *MockClient) ListNewSubmissions(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	return mc.fakeFeed(sub, domain.KindSubmission, limit), nil
}

func (mc *MockClient) ListNewComments(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	return mc.fakeFeed(sub, domain.KindComment, limit), nil
}

func (mc *MockClient) fakeFeed(sub string, kind domain.PostKind, limit int) []domain.Post {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	n := limit
	if n > 3 {
		n = 3
	}
	posts := make([]domain.Post, 0, n)
	for i := 0; i < n; i++ {
		mc.seq++
		author := fmt.Sprintf("simulated_user_%d", rand.Intn(8))
		p := domain.Post{
			ID:        fmt.Sprintf("t3_mock%06d", mc.seq),
			Kind:      kind,
			Author:    author,
			Subreddit: sub,
			CreatedAt: time.Now().UTC(),
		}
		if kind == domain.KindComment {
			p.ID = fmt.Sprintf("t1_mock%06d", mc.seq)
			p.Body = "interesting take"
			if rand.Intn(3) == 0 {
				p.Body = "check this out https://youtu.be/dQw4w9WgXcQ"
			}
		} else {
			p.Title = fmt.Sprintf("[%s] simulated post #%d", sub, mc.seq)
			p.URL = "http://localhost/mock-url"
			if rand.Intn(3) == 0 {
				p.URL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
			}
		}
		posts = append(posts, p)
	}
	return posts
}

func (mc *MockClient) FetchUserHistory(ctx context.Context, username string, limit int) ([]domain.Post, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	history, ok := mc.histories[username]
	if !ok {
		// Unseeded users get a random mixed history.
		for i := 0; i < limit && i < 10; i++ {
			p := domain.Post{
				ID:        fmt.Sprintf("t1_hist_%s_%d", username, i),
				Kind:      domain.KindComment,
				Author:    username,
				Body:      "just a comment",
				CreatedAt: time.Now().Add(-time.Duration(i) * time.Hour).UTC(),
			}
			if rand.Intn(2) == 0 {
				p.Body = "my new video https://youtube.com/watch?v=abc123"
			}
			history = append(history, p)
		}
		mc.histories[username] = history
	}
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (mc *MockClient) Remove(ctx context.Context, fullID string) (domain.RemoveResult, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.Removals = append(mc.Removals, fullID)
	if res, ok := mc.removed[fullID]; ok {
		return res, nil
	}
	mc.removed[fullID] = domain.RemoveAlreadyRemoved
	return domain.RemoveOK, nil
}

func (mc *MockClient) Reply(ctx context.Context, parentFullID, text string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.Replies = append(mc.Replies, parentFullID)
	return nil
}

func (mc *MockClient) FetchPage(ctx context.Context, page string) (string, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	content, ok := mc.pages[page]
	if !ok {
		return "", fmt.Errorf("wiki page %s: %w", page, domain.ErrNotFound)
	}
	return content, nil
}

func (mc *MockClient) CreatePage(ctx context.Context, page, content string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.pages[page] = content
	return nil
}
