package collector

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/modtools/tubeguard/internal/domain"
)

// DryRun wraps a Client so reads pass through but removals and replies only
// log what would have happened.
type DryRun struct {
	Client
	logger zerolog.Logger
}

func NewDryRun(inner Client, logger zerolog.Logger) *DryRun {
	return &DryRun{Client: inner, logger: logger.With().Str("component", "dry-run").Logger()}
}

func (d *DryRun) Remove(ctx context.Context, fullID string) (domain.RemoveResult, error) {
	d.logger.Info().Str("post_id", fullID).Msg("would remove post")
	return domain.RemoveOK, nil
}

func (d *DryRun) Reply(ctx context.Context, parentFullID, text string) error {
	d.logger.Info().Str("post_id", parentFullID).Msg("would send removal message")
	return nil
}
