package collector

import (
	"context"
	"fmt"
	"os"

	"github.com/modtools/tubeguard/internal/config"
	"github.com/modtools/tubeguard/internal/domain"
)

// Client bundles the platform capability with the wiki page store and the
// authenticated identity. Both live on the same underlying connection.
type Client interface {
	domain.PlatformClient
	FetchPage(ctx context.Context, page string) (string, error)
	CreatePage(ctx context.Context, page, content string) error
	Username() string
}

// New selects the correct implementation based on collector.mode.
// Credentials come from the environment (load a .env first via godotenv).
func New(cfg config.CollectorConfig) (Client, error) {
	switch cfg.Mode {
	case "api":
		userAgent := os.Getenv("REDDIT_USER_AGENT")
		if userAgent == "" {
			return nil, fmt.Errorf("REDDIT_USER_AGENT is required for api mode")
		}
		return NewRedditClient(
			os.Getenv("REDDIT_CLIENT_ID"),
			os.Getenv("REDDIT_CLIENT_SECRET"),
			os.Getenv("REDDIT_USERNAME"),
			os.Getenv("REDDIT_PASSWORD"),
			userAgent,
			Options{Timeout: cfg.RequestTimeout, RequestsPerSec: cfg.RequestsPerSec},
		)
	case "mock":
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown collector.mode: %s (use 'api' or 'mock')", cfg.Mode)
	}
}
