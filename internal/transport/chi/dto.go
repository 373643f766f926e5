package chi

import (
	"time"

	"github.com/kailas-cloud/ufotracker/internal/domain/analytics"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/result"
	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	"github.com/kailas-cloud/ufotracker/internal/domain/week"
	searchuc "github.com/kailas-cloud/ufotracker/internal/usecase/search"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeInvalidQuery       ErrorCode = "invalid_query"
	CodeInvalidDate        ErrorCode = "invalid_date"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeNotFound           ErrorCode = "not_found"
	CodeBackendUnavailable ErrorCode = "backend_unavailable"
	CodeBackendError       ErrorCode = "backend_error"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Location is a latitude/longitude pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// SightingHit is a search document as returned by search and weekly endpoints.
type SightingHit struct {
	ID          string    `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ObjectType  string    `json:"object_type"`
	Description string    `json:"description"`
	Reliability *int      `json:"reliability"`
	Location    Location  `json:"location"`
	Score       *float64  `json:"score,omitempty"`
	Highlight   string    `json:"highlight,omitempty"`
}

// SearchResponse is a page of search hits.
type SearchResponse struct {
	Total int           `json:"total"`
	Items []SightingHit `json:"items"`
}

// CategoryCountResponse is one bucket of a distribution.
type CategoryCountResponse struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// ReliabilityStatsResponse summarizes reliability.
type ReliabilityStatsResponse struct {
	Mean                 float64 `json:"mean"`
	StdDev               float64 `json:"std_dev"`
	HighReliabilityCount int64   `json:"high_reliability_count"`
}

// MeanResponse carries the mean reliability.
type MeanResponse struct {
	Mean float64 `json:"mean"`
}

// TimelinePointResponse is one 3-hour slot.
type TimelinePointResponse struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// WeeklyTopItem is the top sighting of a state.
type WeeklyTopItem struct {
	State    string      `json:"state"`
	Sighting SightingHit `json:"sighting"`
}

// WeeklyTopResponse lists per-state top sightings of a week.
// WeekEnd is the inclusive last day (Sunday).
type WeeklyTopResponse struct {
	WeekStart string          `json:"week_start"`
	WeekEnd   string          `json:"week_end"`
	Items     []WeeklyTopItem `json:"items"`
}

// RankingItem is one (state, reliability) ranking entry.
type RankingItem struct {
	State       string `json:"state"`
	Reliability *int   `json:"reliability"`
}

// WeeklyRankingResponse lists ranking entries of a week.
type WeeklyRankingResponse struct {
	WeekStart string        `json:"week_start"`
	WeekEnd   string        `json:"week_end"`
	Items     []RankingItem `json:"items"`
}

// CreateSightingRequest is the body of POST /sightings.
type CreateSightingRequest struct {
	OccurredAt  *time.Time `json:"occurred_at"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	City        string     `json:"city"`
	State       string     `json:"state"`
	ObjectType  string     `json:"object_type"`
	Description string     `json:"description"`
	Reliability *int       `json:"reliability"`
}

// UpdateSightingRequest is the body of PUT /sightings/{id}. Absent fields are unchanged.
type UpdateSightingRequest struct {
	OccurredAt  *time.Time `json:"occurred_at"`
	Latitude    *float64   `json:"latitude"`
	Longitude   *float64   `json:"longitude"`
	City        *string    `json:"city"`
	Reliability *int       `json:"reliability"`
}

// SightingResponse is a catalog record.
type SightingResponse struct {
	ID          string    `json:"id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ObjectType  string    `json:"object_type"`
	Description string    `json:"description"`
	Reliability *int      `json:"reliability"`
}

// SightingListResponse is a page of catalog records.
type SightingListResponse struct {
	Page  int                `json:"page"`
	Items []SightingResponse `json:"items"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func hitToResponse(d sighting.Document, withScore bool) SightingHit {
	loc := d.Location()
	h := SightingHit{
		ID:          d.ID(),
		OccurredAt:  d.OccurredAt(),
		City:        d.City(),
		State:       d.State(),
		ObjectType:  d.ObjectType(),
		Description: d.Description(),
		Reliability: d.Reliability(),
		Location:    Location{Lat: loc.Lat, Lon: loc.Lon},
		Highlight:   d.HighlightedDescription(),
	}
	if withScore {
		score := d.Score()
		h.Score = &score
	}
	return h
}

func searchToResponse(r result.Result, withScore bool) SearchResponse {
	items := make([]SightingHit, len(r.Hits()))
	for i, d := range r.Hits() {
		items[i] = hitToResponse(d, withScore)
	}
	return SearchResponse{Total: r.Total(), Items: items}
}

func countsToResponse(cs []analytics.CategoryCount) []CategoryCountResponse {
	out := make([]CategoryCountResponse, len(cs))
	for i, c := range cs {
		out[i] = CategoryCountResponse{Category: c.Category, Count: c.Count}
	}
	return out
}

func timelineToResponse(ps []analytics.TimelinePoint) []TimelinePointResponse {
	out := make([]TimelinePointResponse, len(ps))
	for i, p := range ps {
		out[i] = TimelinePointResponse{Label: p.Label, Count: p.Count}
	}
	return out
}

func weekBounds(w week.Window) (start, end string) {
	return w.Start.Format(week.DateLayout), w.LastDay().Format(week.DateLayout)
}

func weeklyTopToResponse(top searchuc.WeeklyTop) WeeklyTopResponse {
	start, end := weekBounds(top.Window)
	items := make([]WeeklyTopItem, len(top.Tops))
	for i, t := range top.Tops {
		items[i] = WeeklyTopItem{State: t.State, Sighting: hitToResponse(t.Sighting, false)}
	}
	return WeeklyTopResponse{WeekStart: start, WeekEnd: end, Items: items}
}

func rankingToResponse(rank searchuc.WeeklyRanking) WeeklyRankingResponse {
	start, end := weekBounds(rank.Window)
	items := make([]RankingItem, len(rank.Entries))
	for i, e := range rank.Entries {
		items[i] = RankingItem{State: e.State, Reliability: e.Reliability}
	}
	return WeeklyRankingResponse{WeekStart: start, WeekEnd: end, Items: items}
}

func recordFromCreate(req CreateSightingRequest) sighting.Record {
	rec := sighting.Record{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		City:        req.City,
		State:       req.State,
		ObjectType:  req.ObjectType,
		Description: req.Description,
		Reliability: req.Reliability,
	}
	if req.OccurredAt != nil {
		rec.OccurredAt = *req.OccurredAt
	}
	return rec
}

func patchFromUpdate(req UpdateSightingRequest) sighting.Patch {
	return sighting.Patch{
		OccurredAt:  req.OccurredAt,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		City:        req.City,
		Reliability: req.Reliability,
	}
}

func recordToResponse(r sighting.Record) SightingResponse {
	return SightingResponse{
		ID:          r.ID,
		OccurredAt:  r.OccurredAt,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		City:        r.City,
		State:       r.State,
		ObjectType:  r.ObjectType,
		Description: r.Description,
		Reliability: r.Reliability,
	}
}
