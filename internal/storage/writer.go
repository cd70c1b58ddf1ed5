package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/modtools/tubeguard/internal/domain"
)

// Journal appends enforcement outcomes to an NDJSON file consumed by the
// dashboard. A single goroutine owns the file handle; callers communicate
// through the channel.
type Journal struct {
	FilePath string
	Logger   zerolog.Logger
}

func (j *Journal) Start(wg *sync.WaitGroup, input <-chan domain.Outcome) {
	defer wg.Done()

	if err := os.MkdirAll(filepath.Dir(j.FilePath), 0o755); err != nil {
		j.Logger.Error().Err(err).Msg("cannot create journal directory")
		j.drain(input)
		return
	}

	f, err := os.OpenFile(j.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		j.Logger.Error().Err(err).Msg("cannot open outcome journal")
		j.drain(input)
		return
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for outcome := range input {
		if err := enc.Encode(outcome); err != nil {
			j.Logger.Error().Err(err).Msg("failed to journal outcome")
		}
	}
}

// drain keeps the producers from blocking when the journal is unusable.
func (j *Journal) drain(input <-chan domain.Outcome) {
	for range input {
	}
}

// Load reads all journaled outcomes; unparseable lines are skipped.
func Load(path string) []domain.Outcome {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var outcomes []domain.Outcome
	dec := json.NewDecoder(f)
	for {
		var o domain.Outcome
		if err := dec.Decode(&o); err != nil {
			break
		}
		outcomes = append(outcomes, o)
	}
	return outcomes
}
