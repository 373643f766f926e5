package search

import (
	"fmt"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/filter"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/request"
	"github.com/kailas-cloud/ufotracker/internal/repository/document"
)

// Highlight markers wrapped around matched description terms.
const (
	HighlightPreTag  = "<mark><strong><em>"
	HighlightPostTag = "</em></strong></mark>"
)

// DescriptionBoost weights description matches in the relevance score.
const DescriptionBoost = 2.0

// BuildTextQuery renders a fuzzy description match ordered by relevance.
// Pagination was clamped when the request was built.
func BuildTextQuery(index string, r request.TextSearch) *db.SearchQuery {
	p := r.Page()
	return &db.SearchQuery{
		IndexName: index,
		Text: &db.TextMatch{
			Field:     document.FieldDescription,
			Query:     r.Query(),
			Fuzziness: db.FuzzinessAuto,
			Boost:     DescriptionBoost,
		},
		Offset:     p.Offset(),
		Limit:      p.Size(),
		WithScores: true,
		Highlight: &db.Highlight{
			Fields:  []string{document.FieldCity, document.FieldDescription},
			PreTag:  HighlightPreTag,
			PostTag: HighlightPostTag,
		},
		Sort: &db.Sort{Field: db.ScoreField, Desc: true},
	}
}

// BuildAdvancedQuery ANDs the state term with the optional object type term and reliability floor.
func BuildAdvancedQuery(index string, r request.AdvancedFilter) (*db.SearchQuery, error) {
	conds := make([]filter.Condition, 0, 3)

	state, err := filter.NewMatch(document.FieldState, r.State())
	if err != nil {
		return nil, fmt.Errorf("state filter: %w", err)
	}
	conds = append(conds, state)

	if t := r.ObjectType(); t != "" {
		c, err := filter.NewMatch(document.FieldObjectType, t)
		if err != nil {
			return nil, fmt.Errorf("object type filter: %w", err)
		}
		conds = append(conds, c)
	}

	if m := r.MinReliability(); m != nil {
		c, err := filter.NewRange(document.FieldReliability, filter.AtLeast(float64(*m)))
		if err != nil {
			return nil, fmt.Errorf("reliability filter: %w", err)
		}
		conds = append(conds, c)
	}

	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return nil, err
	}

	p := r.Page()
	return &db.SearchQuery{
		IndexName: index,
		Filters:   expr,
		Offset:    p.Offset(),
		Limit:     p.Size(),
	}, nil
}

// BuildGeoQuery keeps documents within the radius of the point, in engine order.
func BuildGeoQuery(index string, r request.GeoProximity) (*db.SearchQuery, error) {
	geo, err := filter.NewGeoDistance(document.FieldLocation, filter.Circle{
		Lat:      r.Lat(),
		Lon:      r.Lon(),
		RadiusKm: r.RadiusKm(),
	})
	if err != nil {
		return nil, fmt.Errorf("geo filter: %w", err)
	}
	expr, err := filter.NewExpression(geo)
	if err != nil {
		return nil, err
	}
	return &db.SearchQuery{
		IndexName: index,
		Filters:   expr,
		Limit:     r.Size(),
	}, nil
}

// BuildQuery dispatches on the request variant.
func BuildQuery(index string, req request.Request) (*db.SearchQuery, error) {
	switch r := req.(type) {
	case request.TextSearch:
		return BuildTextQuery(index, r), nil
	case request.AdvancedFilter:
		return BuildAdvancedQuery(index, r)
	case request.GeoProximity:
		return BuildGeoQuery(index, r)
	default:
		return nil, fmt.Errorf("unsupported search request %T", req)
	}
}
