package result

import "github.com/kailas-cloud/ufotracker/internal/domain/sighting"

// Result is one page of search hits.
type Result struct {
	total int
	hits  []sighting.Document
}

// New creates a search result page.
func New(total int, hits []sighting.Document) Result {
	return Result{total: total, hits: hits}
}

// Empty returns a page with no hits.
func Empty() Result { return Result{} }

// Total returns the number of matching documents across all pages.
func (r Result) Total() int { return r.total }

// Hits returns the documents of this page in backend order.
func (r Result) Hits() []sighting.Document { return r.hits }
