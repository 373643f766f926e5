package ufotracker

import (
	"time"

	dombatch "github.com/kailas-cloud/ufotracker/internal/domain/batch"
	domsighting "github.com/kailas-cloud/ufotracker/internal/domain/sighting"
	"github.com/kailas-cloud/ufotracker/internal/domain/week"
)

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Sighting is a reported UFO sighting.
type Sighting struct {
	ID          string
	OccurredAt  time.Time // keeps the offset it was reported with
	Location    GeoPoint
	City        string
	State       string // two-letter code, case-sensitive
	ObjectType  string
	Description string
	Reliability *int // 0..100, nil when unknown
}

// Hit is a search result entry.
type Hit struct {
	Sighting
	Score     float64 // relevance, text search only
	Highlight string  // description with matched terms marked, text search only
}

// SearchResult is one page of hits. Total counts every match, not just this page.
type SearchResult struct {
	Total int
	Hits  []Hit
}

// CategoryCount is one bucket of a distribution.
type CategoryCount struct {
	Category string
	Count    int64
}

// ReliabilityStats summarizes reliability over all sightings.
type ReliabilityStats struct {
	Mean                 float64
	StdDev               float64
	HighReliabilityCount int64
}

// TimelinePoint counts sightings in a 3-hour slot ("00h".."21h").
type TimelinePoint struct {
	Label string
	Count int64
}

// Week is a Monday-aligned calendar week.
type Week struct {
	Start   time.Time // Monday 00:00 UTC
	LastDay time.Time // Sunday 00:00 UTC
}

// StateTop is the most reliable sighting of a state in a week.
type StateTop struct {
	State    string
	Sighting Sighting
}

// WeeklyTop lists the top sighting per state.
type WeeklyTop struct {
	Week Week
	Tops []StateTop
}

// RankingEntry is the (state, reliability) projection of a StateTop.
type RankingEntry struct {
	State       string
	Reliability *int
}

// WeeklyRanking lists ranking entries in WeeklyTop order.
type WeeklyRanking struct {
	Week    Week
	Entries []RankingEntry
}

// SightingUpdate is a partial update. Nil fields are left unchanged.
type SightingUpdate struct {
	OccurredAt  *time.Time
	Latitude    *float64
	Longitude   *float64
	City        *string
	Reliability *int
}

// ImportResult is the per-record outcome of Import, in input order.
type ImportResult struct {
	Index int // 0-based position in the input
	ID    string
	Err   error
}

func sightingFromDocument(d domsighting.Document) Sighting {
	loc := d.Location()
	return Sighting{
		ID:          d.ID(),
		OccurredAt:  d.OccurredAt(),
		Location:    GeoPoint{Lat: loc.Lat, Lon: loc.Lon},
		City:        d.City(),
		State:       d.State(),
		ObjectType:  d.ObjectType(),
		Description: d.Description(),
		Reliability: d.Reliability(),
	}
}

func hitFromDocument(d domsighting.Document) Hit {
	return Hit{
		Sighting:  sightingFromDocument(d),
		Score:     d.Score(),
		Highlight: d.HighlightedDescription(),
	}
}

func sightingFromRecord(r domsighting.Record) Sighting {
	return Sighting{
		ID:          r.ID,
		OccurredAt:  r.OccurredAt,
		Location:    GeoPoint{Lat: r.Latitude, Lon: r.Longitude},
		City:        r.City,
		State:       r.State,
		ObjectType:  r.ObjectType,
		Description: r.Description,
		Reliability: r.Reliability,
	}
}

func recordFromSighting(s Sighting) domsighting.Record {
	return domsighting.Record{
		ID:          s.ID,
		OccurredAt:  s.OccurredAt,
		Latitude:    s.Location.Lat,
		Longitude:   s.Location.Lon,
		City:        s.City,
		State:       s.State,
		ObjectType:  s.ObjectType,
		Description: s.Description,
		Reliability: s.Reliability,
	}
}

func (u SightingUpdate) toPatch() domsighting.Patch {
	return domsighting.Patch{
		OccurredAt:  u.OccurredAt,
		Latitude:    u.Latitude,
		Longitude:   u.Longitude,
		City:        u.City,
		Reliability: u.Reliability,
	}
}

func weekFromWindow(w week.Window) Week {
	return Week{Start: w.Start, LastDay: w.LastDay()}
}

func importResults(rs []dombatch.Result) []ImportResult {
	out := make([]ImportResult, len(rs))
	for i, r := range rs {
		out[i] = ImportResult{Index: r.Line() - 1, ID: r.ID(), Err: r.Err()}
	}
	return out
}
