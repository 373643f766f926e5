package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ufotracker/internal/db"
)

// Search runs FT.SEARCH for the query descriptor.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Offset < 0 {
		return nil, fmt.Errorf("offset must not be negative")
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(buildSearchArgs(q)...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := parseSearchResult(raw, q.WithScores)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	if q.Highlight != nil {
		extractHighlights(res.Entries, q.Highlight)
	}
	return res, nil
}

// Count returns the number of matching documents via FT.SEARCH with LIMIT 0 0.
func (s *Store) Count(ctx context.Context, q *db.CountQuery) (int64, error) {
	if q.IndexName == "" {
		return 0, fmt.Errorf("index name is required")
	}
	cmd := s.b().Arbitrary("FT.SEARCH").Args(countArgs(q.IndexName, buildQuery(nil, q.Filters))...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	total, err := parseTotal(raw)
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	return total, nil
}

func buildSearchArgs(q *db.SearchQuery) []string {
	args := []string{q.IndexName, buildQuery(q.Text, q.Filters)}

	if q.WithScores {
		args = append(args, "WITHSCORES")
	}

	if h := q.Highlight; h != nil && len(h.Fields) > 0 {
		args = append(args, "HIGHLIGHT", "FIELDS", strconv.Itoa(len(h.Fields)))
		args = append(args, h.Fields...)
		args = append(args, "TAGS", h.PreTag, h.PostTag)
	}

	// Relevance order is the engine default; SORTBY would replace it.
	if q.Sort != nil && q.Sort.Field != db.ScoreField {
		dir := "ASC"
		if q.Sort.Desc {
			dir = "DESC"
		}
		args = append(args, "SORTBY", q.Sort.Field, dir)
	}

	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)
	return args
}

func countArgs(index, query string) []string {
	return []string{index, query, "LIMIT", "0", "0", "DIALECT", "2"}
}

// --- Result parsing ---

// parseSearchResult decodes [total, key, (score,) fields, ...].
func parseSearchResult(raw []rueidis.RedisMessage, withScores bool) (*db.SearchResult, error) {
	total, err := parseTotal(raw)
	if err != nil {
		return nil, err
	}

	stride := 2
	if withScores {
		stride = 3
	}
	if (len(raw)-1)%stride != 0 {
		return nil, fmt.Errorf("%w: %d reply elements for stride %d", db.ErrMalformedResponse, len(raw)-1, stride)
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/stride)
	for i := 1; i < len(raw); i += stride {
		key, err := raw[i].ToString()
		if err != nil {
			return nil, fmt.Errorf("%w: document key: %w", db.ErrMalformedResponse, err)
		}

		entry := db.SearchEntry{Key: key}
		next := i + 1

		if withScores {
			entry.Score, err = parseFloat(&raw[next])
			if err != nil {
				return nil, fmt.Errorf("%w: score of %s: %w", db.ErrMalformedResponse, key, err)
			}
			next++
		}

		fields, err := raw[next].ToArray()
		if err != nil {
			return nil, fmt.Errorf("%w: fields of %s: %w", db.ErrMalformedResponse, key, err)
		}
		entry.Fields, err = parseFieldPairs(fields)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseTotal(raw []rueidis.RedisMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: empty reply", db.ErrMalformedResponse)
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("%w: total: %w", db.ErrMalformedResponse, err)
	}
	return total, nil
}

// parseFieldPairs decodes a flat [name, value, ...] array. Null values are skipped.
func parseFieldPairs(fields []rueidis.RedisMessage) (map[string]string, error) {
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("%w: odd field list (%d)", db.ErrMalformedResponse, len(fields))
	}
	m := make(map[string]string, len(fields)/2)
	for j := 0; j < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			return nil, fmt.Errorf("%w: field name: %w", db.ErrMalformedResponse, err)
		}
		if fields[j+1].IsNil() {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %w", db.ErrMalformedResponse, name, err)
		}
		m[name] = value
	}
	return m, nil
}

func parseFloat(m *rueidis.RedisMessage) (float64, error) {
	if v, err := m.AsFloat64(); err == nil {
		return v, nil
	}
	str, err := m.ToString()
	if err != nil {
		return 0, err //nolint:wrapcheck // wrapped by caller
	}
	return strconv.ParseFloat(str, 64)
}

// extractHighlights moves tagged field values into Highlights and restores raw values in Fields.
func extractHighlights(entries []db.SearchEntry, h *db.Highlight) {
	strip := strings.NewReplacer(h.PreTag, "", h.PostTag, "")
	for i := range entries {
		e := &entries[i]
		for _, f := range h.Fields {
			v, ok := e.Fields[f]
			if !ok || !strings.Contains(v, h.PreTag) {
				continue
			}
			if e.Highlights == nil {
				e.Highlights = make(map[string]string, len(h.Fields))
			}
			e.Highlights[f] = v
			e.Fields[f] = strip.Replace(v)
		}
	}
}
