package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/phrasebook/internal/entry"
	mock_entry "github.com/at-ishikawa/phrasebook/internal/mocks/entry"
)

// sevenTokenPhrase yields 21 combinations, so 3 chunks of at most 10 and a
// phase split of 1: one unconditioned chunk, two optimized chunks.
const sevenTokenPhrase = "t1 t2 t3 t4 t5 t6 t7"

func phraseChunks(t *testing.T, phrase string) [][]string {
	t.Helper()
	chunks, err := entry.Chunk(entry.Combinations(phrase), entry.MaxCombinationsPerQuery)
	require.NoError(t, err)
	return chunks
}

func storedEntry(id int64, phrase string) entry.Entry {
	e := entry.New(phrase)
	e.ID = id
	return e
}

func TestEngine_Search_DeduplicatesAcrossPhases(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_entry.NewMockRepository(ctrl)
	chunks := phraseChunks(t, sevenTokenPhrase)
	require.Len(t, chunks, 3)

	first := storedEntry(1, "t1 t2 here")
	second := storedEntry(2, "about t3 t4")
	third := storedEntry(3, "t5 t6 again")

	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[0], nil).
		Return([]entry.Entry{first, second}, nil)
	excludes := []string{first.Phrase, second.Phrase}
	// The second record comes back again in phase 2; the merge must drop it.
	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[1], excludes).
		Return([]entry.Entry{second, third}, nil)
	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[2], excludes).
		Return(nil, nil)

	got, err := NewEngine(repo, nil).Search(context.Background(), sevenTokenPhrase)
	require.NoError(t, err)
	require.Len(t, got, 3)

	ids := make([]int64, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
}

func TestEngine_Search_ExclusionListTruncatedAtLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_entry.NewMockRepository(ctrl)
	chunks := phraseChunks(t, sevenTokenPhrase)

	phaseOneEntries := make([]entry.Entry, 12)
	wantExcludes := make([]string, 0, entry.MaxExcludedPhrases)
	for i := range phaseOneEntries {
		phaseOneEntries[i] = storedEntry(int64(i+1), fmt.Sprintf("stored phrase %d", i+1))
		if i < entry.MaxExcludedPhrases {
			wantExcludes = append(wantExcludes, phaseOneEntries[i].Phrase)
		}
	}

	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[0], nil).
		Return(phaseOneEntries, nil)
	// Only the first 10 found phrases fit the store's exclusion cap, and a
	// row beyond the cap returning again must still be deduplicated.
	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[1], wantExcludes).
		Return([]entry.Entry{phaseOneEntries[11]}, nil)
	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[2], wantExcludes).
		Return(nil, nil)

	got, err := NewEngine(repo, nil).Search(context.Background(), sevenTokenPhrase)
	require.NoError(t, err)
	assert.Len(t, got, 12)
}

func TestEngine_Search_FailedChunkContributesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_entry.NewMockRepository(ctrl)
	chunks := phraseChunks(t, sevenTokenPhrase)

	found := storedEntry(5, "t5 t6 found")

	// Phase 1 fails entirely, so phase 2 runs unconditioned.
	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[0], nil).
		Return(nil, assert.AnError)
	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[1], nil).
		Return([]entry.Entry{found}, nil)
	repo.EXPECT().FindByCombinations(gomock.Any(), chunks[2], nil).
		Return(nil, assert.AnError)

	got, err := NewEngine(repo, nil).Search(context.Background(), sevenTokenPhrase)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].ID)
}

func TestEngine_Search_ShortPhraseSkipsPhaseOne(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_entry.NewMockRepository(ctrl)

	// A two-token phrase has one chunk, all of it in phase 2.
	found := storedEntry(9, "blue sky thinking")
	repo.EXPECT().FindByCombinations(gomock.Any(), []string{"blue sky"}, nil).
		Return([]entry.Entry{found}, nil)

	got, err := NewEngine(repo, nil).Search(context.Background(), "blue sky")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(9), got[0].ID)
}

func TestEngine_Search_NoCombinations(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock_entry.NewMockRepository(ctrl)

	got, err := NewEngine(repo, nil).Search(context.Background(), "light")
	require.NoError(t, err)
	assert.Nil(t, got)
}
