package db

import (
	"strings"
	"unicode"

	"github.com/kailas-cloud/ufotracker/internal/domain/search/filter"
)

// ScoreField sorts by the engine's relevance score, which is also the default order.
const ScoreField = "_score"

// Fuzziness controls edit-distance tolerance of a text match.
type Fuzziness int

const (
	// FuzzinessNone matches terms exactly (after stemming).
	FuzzinessNone Fuzziness = iota
	// FuzzinessAuto scales the edit distance with term length: 0 up to 2 chars, 1 up to 5, 2 beyond.
	FuzzinessAuto
)

// TextMatch is a full-text match over one TEXT field. Terms are OR'ed.
type TextMatch struct {
	Field     string
	Query     string
	Fuzziness Fuzziness
	Boost     float64
}

// Tokenize splits free text into lowercase letter/digit terms, the unit a TextMatch is scored on.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Highlight requests tagged fragments for the given fields.
type Highlight struct {
	Fields  []string
	PreTag  string
	PostTag string
}

// Sort orders hits by a field.
type Sort struct {
	Field string
	Desc  bool
}

// SearchQuery is the input for FT.SEARCH.
type SearchQuery struct {
	IndexName  string
	Text       *TextMatch
	Filters    filter.Expression
	Offset     int
	Limit      int
	WithScores bool
	Highlight  *Highlight
	Sort       *Sort
}

// CountQuery counts documents matching the filters.
type CountQuery struct {
	IndexName string
	Filters   filter.Expression
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Fields carry raw stored values; Highlights carry the tagged variant of
// highlighted fields that actually matched.
type SearchEntry struct {
	Key        string
	Score      float64
	Fields     map[string]string
	Highlights map[string]string
}
