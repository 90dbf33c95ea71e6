// Package entry defines the phrase entry record and the pure helpers that
// shape store queries.
package entry

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Entry is the canonical record for a phrase. An entry is created either by
// deserializing a stored row or by the generation client, is persisted at
// most once, and is never updated afterwards.
type Entry struct {
	ID           int64      `db:"id" json:"-" yaml:"-"`
	Phrase       string     `db:"phrase" json:"phrase" yaml:"phrase"`
	WordCount    int        `db:"word_count" json:"wordCount" yaml:"word_count"`
	Types        StringList `db:"types" json:"types" yaml:"types"`
	Meanings     StringList `db:"meanings" json:"meanings" yaml:"meanings"`
	Synonyms     StringList `db:"synonyms" json:"synonyms" yaml:"synonyms"`
	Translations StringList `db:"translations" json:"translations" yaml:"translations"`
	Examples     StringList `db:"examples" json:"examples" yaml:"examples"`
	CreatedAt    time.Time  `db:"created_at" json:"-" yaml:"-"`

	// Combinations is derived from Phrase once at creation and indexes the
	// entry in the store. It is not a column of the entries table.
	Combinations StringList `db:"-" json:"-" yaml:"-"`
}

// New creates an unsaved entry for a phrase with WordCount and Combinations
// derived from it.
func New(phrase string) Entry {
	return Entry{
		Phrase:       phrase,
		WordCount:    len(strings.Fields(phrase)),
		Combinations: Combinations(phrase),
	}
}

// StringList is a list of strings stored as a JSON column.
type StringList []string

// Value serializes the list for a JSON column. A nil list is stored as [].
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	encoded, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal > %w", err)
	}
	return encoded, nil
}

// Scan deserializes a JSON column into the list.
func (l *StringList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		if err := json.Unmarshal(v, l); err != nil {
			return fmt.Errorf("json.Unmarshal(%s) > %w", v, err)
		}
		return nil
	case string:
		if err := json.Unmarshal([]byte(v), l); err != nil {
			return fmt.Errorf("json.Unmarshal(%s) > %w", v, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported column type %T for StringList", src)
	}
}
