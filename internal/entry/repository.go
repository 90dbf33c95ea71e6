package entry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/entry/mock_repository.go -package=mock_entry

// Store-imposed caps on a single combination query. Both are foreign
// constraints of the store protocol, not tuning knobs.
const (
	MaxCombinationsPerQuery = 10
	MaxExcludedPhrases      = 10
)

// Repository defines the store operations the search pipeline depends on.
type Repository interface {
	// FindByPhrase returns the entry whose phrase matches exactly, or nil.
	FindByPhrase(ctx context.Context, phrase string) (*Entry, error)
	// FindByCombinations returns entries whose combination set intersects
	// combinations, excluding entries whose phrase is in excludePhrases.
	FindByCombinations(ctx context.Context, combinations []string, excludePhrases []string) ([]Entry, error)
	// Insert persists a new immutable entry. A duplicate phrase is ignored,
	// never overwritten.
	Insert(ctx context.Context, e *Entry) error
}

const entryColumns = "e.id, e.phrase, e.word_count, e.types, e.meanings, e.synonyms, e.translations, e.examples, e.created_at"

// DBRepository implements Repository using MySQL.
type DBRepository struct {
	db *sqlx.DB
}

// NewDBRepository creates a new DBRepository.
func NewDBRepository(db *sqlx.DB) *DBRepository {
	return &DBRepository{db: db}
}

// FindByPhrase returns the entry for a phrase, or nil if not found.
func (r *DBRepository) FindByPhrase(ctx context.Context, phrase string) (*Entry, error) {
	var e Entry
	err := r.db.GetContext(ctx, &e,
		"SELECT "+entryColumns+" FROM entries e WHERE e.phrase = ?", phrase)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(entry) > %w", err)
	}
	return &e, nil
}

// FindByCombinations returns entries indexed by any of the given combinations,
// minus entries whose phrase appears in excludePhrases.
func (r *DBRepository) FindByCombinations(ctx context.Context, combinations []string, excludePhrases []string) ([]Entry, error) {
	if len(combinations) == 0 {
		return nil, nil
	}
	if len(combinations) > MaxCombinationsPerQuery {
		return nil, fmt.Errorf("at most %d combinations per query, got %d", MaxCombinationsPerQuery, len(combinations))
	}
	if len(excludePhrases) > MaxExcludedPhrases {
		return nil, fmt.Errorf("at most %d excluded phrases per query, got %d", MaxExcludedPhrases, len(excludePhrases))
	}

	query := "SELECT DISTINCT " + entryColumns + ` FROM entries e
		JOIN entry_combinations c ON c.entry_id = e.id
		WHERE c.combination IN (?)`
	args := []interface{}{combinations}
	if len(excludePhrases) > 0 {
		query += " AND e.phrase NOT IN (?)"
		args = append(args, excludePhrases)
	}

	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In > %w", err)
	}

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(expanded), expandedArgs...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(entries by combinations) > %w", err)
	}
	return entries, nil
}

// Insert writes the entry row and its combination index rows in one
// transaction. If the phrase already exists the write is a no-op: entries are
// immutable, so a concurrent writer winning the race is fine.
func (r *DBRepository) Insert(ctx context.Context, e *Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO entries (phrase, word_count, types, meanings, synonyms, translations, examples)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Phrase, e.WordCount, e.Types, e.Meanings, e.Synonyms, e.Translations, e.Examples)
	if err != nil {
		return fmt.Errorf("tx.ExecContext(insert entry) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("result.RowsAffected > %w", err)
	}
	if affected == 0 {
		return nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId > %w", err)
	}
	for _, combination := range e.Combinations {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entry_combinations (entry_id, combination) VALUES (?, ?)",
			id, combination); err != nil {
			return fmt.Errorf("tx.ExecContext(insert entry_combination %q) > %w", combination, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit > %w", err)
	}
	e.ID = id
	return nil
}
