package entry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name             string
		phrase           string
		wantWordCount    int
		wantCombinations StringList
	}{
		{
			name:             "two tokens",
			phrase:           "blue sky",
			wantWordCount:    2,
			wantCombinations: StringList{"blue sky"},
		},
		{
			name:          "single token",
			phrase:        "sky",
			wantWordCount: 1,
		},
		{
			name:          "empty phrase",
			phrase:        "",
			wantWordCount: 0,
		},
		{
			name:             "word count matches token count",
			phrase:           " a  b c ",
			wantWordCount:    3,
			wantCombinations: StringList{"a b", "a c", "b c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.phrase)
			assert.Equal(t, tt.phrase, got.Phrase)
			assert.Equal(t, tt.wantWordCount, got.WordCount)
			assert.Equal(t, tt.wantCombinations, got.Combinations)
		})
	}
}

func TestStringList_Value(t *testing.T) {
	tests := []struct {
		name string
		list StringList
		want string
	}{
		{
			name: "nil list is stored as empty array",
			list: nil,
			want: `[]`,
		},
		{
			name: "values",
			list: StringList{"noun", "verb"},
			want: `["noun","verb"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.list.Value()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got.([]byte)))
		})
	}
}

func TestStringList_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    StringList
		wantErr bool
	}{
		{
			name: "bytes",
			src:  []byte(`["noun","verb"]`),
			want: StringList{"noun", "verb"},
		},
		{
			name: "string",
			src:  `["a measure of distance"]`,
			want: StringList{"a measure of distance"},
		},
		{
			name: "null column",
			src:  nil,
			want: nil,
		},
		{
			name:    "invalid JSON",
			src:     []byte(`{`),
			wantErr: true,
		},
		{
			name:    "unsupported type",
			src:     42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			err := got.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
