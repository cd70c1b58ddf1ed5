package storage

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modtools/tubeguard/internal/domain"
)

func TestJournalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outcomes.ndjson")
	j := &Journal{FilePath: path, Logger: zerolog.Nop()}

	input := make(chan domain.Outcome, 4)
	var wg sync.WaitGroup
	wg.Add(1)
	go j.Start(&wg, input)

	ratio := 0.5
	input <- domain.Outcome{
		Time:      time.Now().UTC(),
		State:     domain.StateRemoved,
		Reason:    domain.ReasonRatioExceeded,
		PostID:    "t3_abc",
		Kind:      domain.KindSubmission,
		Subreddit: "videos",
		Author:    "spammer",
		Ratio:     &ratio,
	}
	input <- domain.Outcome{
		State:  domain.StateSkipped,
		Reason: domain.ReasonWhitelisted,
		PostID: "t1_def",
		Kind:   domain.KindComment,
	}
	close(input)
	wg.Wait()

	outcomes := Load(path)
	require.Len(t, outcomes, 2)
	assert.Equal(t, domain.StateRemoved, outcomes[0].State)
	assert.Equal(t, "t3_abc", outcomes[0].PostID)
	require.NotNil(t, outcomes[0].Ratio)
	assert.Equal(t, 0.5, *outcomes[0].Ratio)
	assert.Equal(t, domain.ReasonWhitelisted, outcomes[1].Reason)
}

func TestLoadMissingFile(t *testing.T) {
	assert.Nil(t, Load(filepath.Join(t.TempDir(), "nope.ndjson")))
}
