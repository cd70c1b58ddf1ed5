package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"github.com/modtools/tubeguard/internal/domain"
)

// RedditClient implements domain.PlatformClient against the authenticated
// Reddit API. A shared token-bucket limiter sits in front of every call so
// concurrent workers respect the API budget together, and each call carries
// its own timeout.
type RedditClient struct {
	client   *reddit.Client
	limiter  *rate.Limiter
	timeout  time.Duration
	username string
}

// Options tune the client.
type Options struct {
	Timeout        time.Duration
	RequestsPerSec float64
}

// NewRedditClient requires a userAgent string to comply with Reddit's API rules.
func NewRedditClient(id, secret, username, password, userAgent string, opts Options) (*RedditClient, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: username, Password: password}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}

	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		// API Rate Limit: ~60 reqs/min (safe buffer)
		opts.RequestsPerSec = 1
	}

	return &RedditClient{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
		timeout:  opts.Timeout,
		username: username,
	}, nil
}

// Username returns the account the client authenticated as.
func (rc *RedditClient) Username() string { return rc.username }

func (rc *RedditClient) ListNewSubmissions(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	if err := rc.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	cctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	posts, resp, err := rc.client.Subreddit.NewPosts(cctx, sub, &reddit.ListOptions{Limit: limit})
	if err != nil {
		return nil, classify(fmt.Errorf("list new submissions in r/%s: %w", sub, err), resp)
	}

	result := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		result = append(result, fromSubmission(p))
	}
	return result, nil
}

// The subreddit comments listing is not wrapped by the client library, so it
// goes through the raw request plumbing with our own decode shape.
type commentListing struct {
	Data struct {
		Children []struct {
			Data struct {
				FullID     string  `json:"name"`
				Author     string  `json:"author"`
				Body       string  `json:"body"`
				Subreddit  string  `json:"subreddit"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
				ApprovedBy string  `json:"approved_by"`
				BannedBy   string  `json:"banned_by"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (rc *RedditClient) ListNewComments(ctx context.Context, sub string, limit int) ([]domain.Post, error) {
	if err := rc.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	cctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	path := fmt.Sprintf("r/%s/comments?limit=%d", sub, limit)
	req, err := rc.client.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var listing commentListing
	resp, err := rc.client.Do(cctx, req, &listing)
	if err != nil {
		return nil, classify(fmt.Errorf("list new comments in r/%s: %w", sub, err), resp)
	}

	result := make([]domain.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		result = append(result, domain.Post{
			ID:        d.FullID,
			Kind:      domain.KindComment,
			Author:    d.Author,
			Subreddit: d.Subreddit,
			Body:      d.Body,
			Permalink: d.Permalink,
			CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
			// Mod-only fields; present in the listing because the bot
			// moderates the subreddit. banned_by set means removed.
			ApprovedBy: d.ApprovedBy,
			Removed:    d.BannedBy != "",
		})
	}
	return result, nil
}

func (rc *RedditClient) FetchUserHistory(ctx context.Context, username string, limit int) ([]domain.Post, error) {
	if err := rc.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	cctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	opts := &reddit.ListUserOverviewOptions{
		ListOptions: reddit.ListOptions{Limit: limit},
		Sort:        "new",
	}
	posts, comments, resp, err := rc.client.User.OverviewOf(cctx, username, opts)
	if err != nil {
		if resp != nil && resp.Response != nil &&
			(resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("overview of u/%s: %w", username, domain.ErrUserUnavailable)
		}
		return nil, classify(fmt.Errorf("overview of u/%s: %w", username, err), resp)
	}

	history := make([]domain.Post, 0, len(posts)+len(comments))
	for _, p := range posts {
		history = append(history, fromSubmission(p))
	}
	for _, c := range comments {
		history = append(history, fromComment(c))
	}
	// The overview endpoint interleaves both kinds; after splitting them back
	// out, restore the most-recent-first order the evaluator expects.
	sort.SliceStable(history, func(i, j int) bool {
		if !history[i].CreatedAt.Equal(history[j].CreatedAt) {
			return history[i].CreatedAt.After(history[j].CreatedAt)
		}
		return history[i].ID < history[j].ID
	})
	if len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (rc *RedditClient) Remove(ctx context.Context, fullID string) (domain.RemoveResult, error) {
	if err := rc.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	cctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	resp, err := rc.client.Moderation.Remove(cctx, fullID)
	if err != nil {
		if resp != nil && resp.Response != nil {
			switch resp.StatusCode {
			case http.StatusNotFound:
				return domain.RemoveAlreadyRemoved, nil
			case http.StatusForbidden:
				return domain.RemovePermissionDenied, nil
			}
		}
		return 0, classify(fmt.Errorf("remove %s: %w", fullID, err), resp)
	}
	return domain.RemoveOK, nil
}

func (rc *RedditClient) Reply(ctx context.Context, parentFullID, text string) error {
	if err := rc.limiter.Wait(ctx); err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	_, resp, err := rc.client.Comment.Submit(cctx, parentFullID, text)
	if err != nil {
		return classify(fmt.Errorf("reply to %s: %w", parentFullID, err), resp)
	}
	return nil
}

// FetchPage reads a wiki page from the bot's profile subreddit.
func (rc *RedditClient) FetchPage(ctx context.Context, page string) (string, error) {
	if err := rc.limiter.Wait(ctx); err != nil {
		return "", err
	}
	cctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	wp, resp, err := rc.client.Wiki.Page(cctx, rc.username, page)
	if err != nil {
		if resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("wiki page %s: %w", page, domain.ErrNotFound)
		}
		return "", classify(fmt.Errorf("wiki page %s: %w", page, err), resp)
	}
	return wp.Content, nil
}

// CreatePage writes a wiki page on the bot's profile subreddit.
func (rc *RedditClient) CreatePage(ctx context.Context, page, content string) error {
	if err := rc.limiter.Wait(ctx); err != nil {
		return err
	}
	cctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	edit := &reddit.WikiPageEditRequest{
		Subreddit: rc.username,
		Page:      page,
		Content:   content,
		Reason:    "tubeguard config template",
	}
	resp, err := rc.client.Wiki.Edit(cctx, edit)
	if err != nil {
		return classify(fmt.Errorf("edit wiki page %s: %w", page, err), resp)
	}
	return nil
}

// fromSubmission maps a wrapped listing entry. The library's Post does not
// expose approved_by/banned_by, so submissions enter with no ruling seen.
func fromSubmission(p *reddit.Post) domain.Post {
	post := domain.Post{
		ID:        p.FullID,
		Kind:      domain.KindSubmission,
		Author:    p.Author,
		Subreddit: p.SubredditName,
		Title:     p.Title,
		URL:       p.URL,
		Body:      p.Body,
		IsSelf:    p.IsSelfPost,
		Permalink: p.Permalink,
	}
	if p.Created != nil {
		post.CreatedAt = p.Created.Time.UTC()
	}
	return post
}

func fromComment(c *reddit.Comment) domain.Post {
	post := domain.Post{
		ID:        c.FullID,
		Kind:      domain.KindComment,
		Author:    c.Author,
		Subreddit: c.SubredditName,
		Body:      c.Body,
		Permalink: c.Permalink,
	}
	if c.Created != nil {
		post.CreatedAt = c.Created.Time.UTC()
	}
	return post
}

// classify sorts remote failures into retryable and permanent. Rate limits,
// 5xx responses, and network-level errors are transient; other HTTP errors
// and cancellation are not.
func classify(err error, resp *reddit.Response) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if resp != nil && resp.Response != nil {
		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return domain.Transient(err)
		case resp.StatusCode >= 400:
			return err
		}
	}
	return domain.Transient(err)
}
