// Package search implements the phrase resolution pipeline: exact lookup,
// batched combination search, and generation fallback with write-through
// caching.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/at-ishikawa/phrasebook/internal/entry"
)

// Engine resolves a phrase to stored entries using combination lookups,
// batched to the store's per-query limits.
type Engine struct {
	repo   entry.Repository
	logger *slog.Logger
}

// NewEngine creates a new Engine. A nil logger falls back to slog.Default.
func NewEngine(repo entry.Repository, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{repo: repo, logger: logger}
}

// Search returns every stored entry whose combination set intersects the
// combinations of phrase, deduplicated by record ID.
//
// Lookups run in two phases. The first third of the chunks is queried
// unconditioned. The remaining chunks exclude the phrases of entries already
// found, so the store does not resend rows the first round returned. The
// split ratio is a latency/payload trade-off; correctness only needs the
// causal order: phase 2 reads phase 1's merged result, so phase 1 is joined
// in full before phase 2 starts.
func (e *Engine) Search(ctx context.Context, phrase string) ([]entry.Entry, error) {
	combinations := entry.Combinations(phrase)
	chunks, err := entry.Chunk(combinations, entry.MaxCombinationsPerQuery)
	if err != nil {
		return nil, fmt.Errorf("entry.Chunk > %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	split := len(chunks) / 3
	merged := newResultSet()
	e.runPhase(ctx, chunks[:split], nil, merged)
	// Exclusion is capped by the store protocol. When phase 1 found more
	// entries than fit, the overflow may come back again and is dropped by
	// the merge below.
	e.runPhase(ctx, chunks[split:], merged.phrases(entry.MaxExcludedPhrases), merged)
	return merged.entries, nil
}

// runPhase launches one lookup per chunk, waits for all of them, and merges
// the results in chunk order. A failed chunk contributes zero entries and
// never aborts its siblings.
func (e *Engine) runPhase(ctx context.Context, chunks [][]string, excludePhrases []string, merged *resultSet) {
	results := make([][]entry.Entry, len(chunks))
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			found, err := e.repo.FindByCombinations(ctx, chunk, excludePhrases)
			if err != nil {
				e.logger.Warn("combination lookup failed",
					"chunk", chunk,
					"error", err)
				return
			}
			results[i] = found
		}()
	}
	wg.Wait()

	for _, found := range results {
		merged.add(found)
	}
}

// resultSet accumulates entries, dropping duplicates by record ID.
type resultSet struct {
	entries []entry.Entry
	seen    map[int64]struct{}
}

func newResultSet() *resultSet {
	return &resultSet{seen: make(map[int64]struct{})}
}

func (s *resultSet) add(found []entry.Entry) {
	for _, e := range found {
		if _, ok := s.seen[e.ID]; ok {
			continue
		}
		s.seen[e.ID] = struct{}{}
		s.entries = append(s.entries, e)
	}
}

// phrases returns the phrases of up to limit accumulated entries.
func (s *resultSet) phrases(limit int) []string {
	if len(s.entries) == 0 {
		return nil
	}
	count := min(limit, len(s.entries))
	phrases := make([]string, 0, count)
	for _, e := range s.entries[:count] {
		phrases = append(phrases, e.Phrase)
	}
	return phrases
}
