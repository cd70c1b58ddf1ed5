package domain

import (
	"context"
	"time"
)

// PostKind distinguishes top-level submissions from comments.
type PostKind string

const (
	KindSubmission PostKind = "submission"
	KindComment    PostKind = "comment"
)

// Post is the normalized shape for anything a user publishes, regardless of
// whether the platform delivered it as a submission or a comment. Identity is
// the fullname ID (t3_xxx / t1_xxx); a Post is immutable once observed.
type Post struct {
	ID        string    `json:"id"`
	Kind      PostKind  `json:"kind"`
	Author    string    `json:"author"`
	Subreddit string    `json:"subreddit"`
	Title     string    `json:"title,omitempty"`
	URL       string    `json:"url,omitempty"`
	Body      string    `json:"body,omitempty"`
	IsSelf    bool      `json:"is_self,omitempty"`
	Permalink string    `json:"permalink,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	// Moderation state at observation time. Visible to the bot only where
	// the listing carries mod fields; zero values mean "no ruling seen".
	ApprovedBy string `json:"approved_by,omitempty"`
	Removed    bool   `json:"removed,omitempty"`
}

// Content returns the text that link detection inspects: the URL for link
// submissions, the body for self posts and comments.
func (p Post) Content() string {
	if p.Kind == KindSubmission && !p.IsSelf && p.URL != "" {
		return p.URL
	}
	return p.Body
}

// BotConfig is the runtime configuration loaded from the bot's wiki page.
// A new value fully replaces the old one; it is never mutated in place.
type BotConfig struct {
	Subreddits    []string
	TargetRatio   float64
	Lookback      int
	UserWhitelist []string
}

// Decision is the result of evaluating a user's recent history. Derived,
// never stored.
type Decision struct {
	Ratio       float64
	SampleSize  int
	TargetCount int
	Exceeds     bool
	Reason      string
}

// RemoveResult describes the terminal outcome of a removal call.
type RemoveResult int

const (
	RemoveOK RemoveResult = iota
	RemoveAlreadyRemoved
	RemovePermissionDenied
)

// OutcomeState is the terminal state of the per-post flow.
type OutcomeState string

const (
	StateRemoved OutcomeState = "removed"
	StateSkipped OutcomeState = "skipped"
)

// Skip reasons reported in outcomes.
const (
	ReasonDuplicate          = "duplicate"
	ReasonNoTargetLink       = "no target link"
	ReasonWhitelisted        = "whitelisted"
	ReasonAuthorUnavailable  = "author unavailable"
	ReasonHistoryFetchFailed = "history fetch failed"
	ReasonBelowThreshold     = "below threshold"
	ReasonRatioExceeded      = "ratio exceeded"
	ReasonAlreadyRemoved     = "already removed"
	ReasonAlreadyApproved    = "already approved"
	ReasonPermissionDenied   = "permission denied"
	ReasonRemovalFailed      = "removal failed"
)

// Outcome is one terminal result of processing a candidate post, journaled
// as NDJSON and surfaced on the dashboard.
type Outcome struct {
	Time       time.Time    `json:"time"`
	State      OutcomeState `json:"state"`
	Reason     string       `json:"reason"`
	PostID     string       `json:"post_id"`
	Kind       PostKind     `json:"kind"`
	Subreddit  string       `json:"subreddit"`
	Author     string       `json:"author,omitempty"`
	Ratio      *float64     `json:"ratio,omitempty"`
	SampleSize int          `json:"sample_size,omitempty"`
	Err        string       `json:"error,omitempty"`
}

// PlatformClient is the capability the core consumes to talk to Reddit.
// Implementations must be safe for concurrent use.
type PlatformClient interface {
	// ListNewSubmissions returns the newest submissions in a subreddit,
	// most recent first.
	ListNewSubmissions(ctx context.Context, subreddit string, limit int) ([]Post, error)
	// ListNewComments returns the newest comments in a subreddit, most
	// recent first.
	ListNewComments(ctx context.Context, subreddit string, limit int) ([]Post, error)
	// FetchUserHistory returns up to limit of the user's most recent posts
	// (submissions and comments interleaved), most recent first. Returns
	// ErrUserUnavailable for deleted or suspended accounts.
	FetchUserHistory(ctx context.Context, username string, limit int) ([]Post, error)
	// Remove takes down a single post by fullname ID. Permanent failure
	// modes are expressed through RemoveResult; transient ones through err.
	Remove(ctx context.Context, fullID string) (RemoveResult, error)
	// Reply posts a comment under the given fullname ID.
	Reply(ctx context.Context, parentFullID, text string) error
}
