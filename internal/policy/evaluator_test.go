package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modtools/tubeguard/internal/domain"
)

// history builds a most-recent-first sample with the given number of
// YouTube-link posts followed by unrelated posts.
func history(target, other int) []domain.Post {
	var posts []domain.Post
	for i := 0; i < target; i++ {
		posts = append(posts, domain.Post{
			ID:   fmt.Sprintf("t3_yt%d", i),
			Kind: domain.KindSubmission,
			URL:  "https://www.youtube.com/watch?v=abc",
		})
	}
	for i := 0; i < other; i++ {
		posts = append(posts, domain.Post{
			ID:   fmt.Sprintf("t1_c%d", i),
			Kind: domain.KindComment,
			Body: "nice post",
		})
	}
	return posts
}

func TestEvaluateEmptyHistoryNeverExceeds(t *testing.T) {
	dec := Evaluate(nil, 50, 0.0)
	assert.False(t, dec.Exceeds)
	assert.Equal(t, 0, dec.SampleSize)
	assert.Equal(t, "no history", dec.Reason)
}

func TestEvaluateAllTargetLinks(t *testing.T) {
	dec := Evaluate(history(10, 0), 10, 1.0)
	assert.Equal(t, 1.0, dec.Ratio)
	assert.True(t, dec.Exceeds)
}

func TestEvaluateNoTargetLinks(t *testing.T) {
	dec := Evaluate(history(0, 10), 10, 0.5)
	assert.Equal(t, 0.0, dec.Ratio)
	assert.False(t, dec.Exceeds)

	// Only a zero threshold turns a clean history into a violation.
	assert.True(t, Evaluate(history(0, 10), 10, 0.0).Exceeds)
}

func TestEvaluateRatioMonotonic(t *testing.T) {
	prev := -1.0
	for hits := 0; hits <= 10; hits++ {
		dec := Evaluate(history(hits, 10-hits), 10, 0.5)
		require.Greater(t, dec.Ratio, prev)
		prev = dec.Ratio
	}
}

func TestEvaluateTieCountsAsExceeding(t *testing.T) {
	// lookback=10, target_ratio=0.3, 3 of 10 posts link YouTube.
	dec := Evaluate(history(3, 7), 10, 0.3)
	assert.InDelta(t, 0.3, dec.Ratio, 1e-9)
	assert.True(t, dec.Exceeds)

	// Nudging the threshold above the ratio flips the decision.
	dec = Evaluate(history(3, 7), 10, 0.31)
	assert.False(t, dec.Exceeds)
}

func TestEvaluateShortHistoryUsesActualSampleSize(t *testing.T) {
	// lookback=50 but the user only has 4 posts, all YouTube links.
	dec := Evaluate(history(4, 0), 50, 0.33)
	assert.Equal(t, 4, dec.SampleSize)
	assert.Equal(t, 1.0, dec.Ratio)
	assert.True(t, dec.Exceeds)
}

func TestEvaluateOversizedSamplePanics(t *testing.T) {
	assert.Panics(t, func() {
		Evaluate(history(3, 3), 5, 0.5)
	})
}
