package aggregation

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/filter"
	"github.com/kailas-cloud/ufotracker/internal/domain/week"
	"github.com/kailas-cloud/ufotracker/internal/repository/document"
)

// TopPerState returns, for each state with sightings in the window, its most reliable sighting.
// Ties go to the most recent sighting; unknown reliability ranks last.
// States come in backend bucket order (most sightings first).
func (e *Engine) TopPerState(ctx context.Context, w week.Window) ([]analytics.WeeklyTopSighting, error) {
	in, err := filter.NewRange(document.FieldTimestamp,
		filter.HalfOpen(float64(w.Start.Unix()), float64(w.End.Unix())))
	if err != nil {
		return nil, err
	}
	scope, err := filter.NewExpression(in)
	if err != nil {
		return nil, err
	}

	top := db.TopHits(aggTopSighting, 1,
		db.Sort{Field: document.FieldReliabilityRank, Desc: true}, document.FieldTimestamp)
	vals, err := e.aggregate(ctx, "top per state", scope,
		db.Terms(aggByState, document.FieldState, TopPerStateBuckets, top))
	if err != nil {
		return nil, err
	}

	terms, err := vals.Terms(aggByState)
	if err != nil {
		return nil, decodeErr(err)
	}

	out := make([]analytics.WeeklyTopSighting, 0, len(terms.Buckets))
	for _, b := range terms.Buckets {
		hits, err := b.Sub.TopHits(aggTopSighting)
		if err != nil {
			return nil, decodeErr(err)
		}
		if len(hits.Hits) == 0 {
			continue
		}
		h := hits.Hits[0]
		d, err := document.DecodeFields(h.Key, h.Fields)
		if err != nil {
			return nil, fmt.Errorf("top of %s: %w", b.Key, err)
		}
		out = append(out, analytics.WeeklyTopSighting{State: b.Key, Sighting: d})
	}
	return out, nil
}
