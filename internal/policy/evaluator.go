package policy

import (
	"fmt"

	"github.com/modtools/tubeguard/internal/domain"
)

// Evaluate computes the YouTube-link ratio over a user's recent history and
// decides whether it crosses targetRatio. history is most-recent-first, at
// most lookback entries; a larger sample means the fetch contract is broken.
//
// The ratio divides by the actual sample size, not lookback: a user with
// fewer posts than lookback is judged on what exists, neither diluted by
// phantom posts nor padded against a bigger denominator. An empty history is
// never punished. Ties count as exceeding.
func Evaluate(history []domain.Post, lookback int, targetRatio float64) domain.Decision {
	n := len(history)
	if lookback > 0 && n > lookback {
		panic(fmt.Sprintf("policy: history sample %d exceeds lookback %d", n, lookback))
	}
	if n == 0 {
		return domain.Decision{Reason: "no history"}
	}

	hits := 0
	for _, p := range history {
		if IsTargetLink(p) {
			hits++
		}
	}

	ratio := float64(hits) / float64(n)
	dec := domain.Decision{
		Ratio:       ratio,
		SampleSize:  n,
		TargetCount: hits,
		Exceeds:     ratio >= targetRatio,
	}
	if dec.Exceeds {
		dec.Reason = fmt.Sprintf("%d of %d recent posts link YouTube (ratio %.2f >= %.2f)", hits, n, ratio, targetRatio)
	} else {
		dec.Reason = fmt.Sprintf("ratio %.2f below %.2f over %d posts", ratio, targetRatio, n)
	}
	return dec
}
