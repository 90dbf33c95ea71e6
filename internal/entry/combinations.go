package entry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidChunkSize is returned by Chunk when the size is not positive.
var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Combinations returns every unordered two-token combination of the
// whitespace-delimited tokens of phrase, in first-occurrence pair order: for
// token positions i < j it emits "token_i token_j". Tokens are not
// normalized or deduplicated. A phrase with fewer than two tokens yields
// nothing.
func Combinations(phrase string) []string {
	tokens := strings.Fields(phrase)
	if len(tokens) < 2 {
		return nil
	}

	pairs := make([]string, 0, len(tokens)*(len(tokens)-1)/2)
	for i := 0; i < len(tokens); i++ {
		for j := i + 1; j < len(tokens); j++ {
			pairs = append(pairs, tokens[i]+" "+tokens[j])
		}
	}
	return pairs
}

// Chunk splits items into groups of at most size elements, preserving order
// with no element dropped or duplicated. The final chunk may be shorter than
// size.
func Chunk(items []string, size int) ([][]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, size)
	}
	if len(items) == 0 {
		return nil, nil
	}

	chunks := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks, nil
}
