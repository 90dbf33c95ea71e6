// Package generator defines the client contract for the external service
// that synthesizes dictionary entries for unknown phrases.
package generator

import (
	"context"

	"github.com/at-ishikawa/phrasebook/internal/entry"
)

//go:generate mockgen -source=interface.go -destination=../mocks/generator/mock_client.go -package=mock_generator

// Client synthesizes an entry for a phrase that has no stored match.
// Implementations make at most two attempts per call: one request plus a
// single retry. Persisting the result is the caller's responsibility.
type Client interface {
	GenerateEntry(ctx context.Context, phrase string) (*entry.Entry, error)
}
