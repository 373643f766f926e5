package sighting

import "time"

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lon float64
}

// Attrs carries the stored attributes of a search document.
type Attrs struct {
	ID          string
	OccurredAt  time.Time
	City        string
	State       string
	Reliability *int
	ObjectType  string
	Description string
	Location    GeoPoint
}

// Document is the denormalized, search-optimized view of a sighting (immutable value object).
// Score and highlighted description exist only on search hits and are never stored.
type Document struct {
	attrs       Attrs
	score       float64
	highlighted string
}

// NewDocument creates a Document from stored attributes.
func NewDocument(a Attrs) Document {
	a.Reliability = cloneInt(a.Reliability)
	return Document{attrs: a}
}

// ID returns the document identifier.
func (d Document) ID() string { return d.attrs.ID }

// OccurredAt returns the sighting timestamp with its original offset.
func (d Document) OccurredAt() time.Time { return d.attrs.OccurredAt }

// City returns the city name.
func (d Document) City() string { return d.attrs.City }

// State returns the two-letter state code.
func (d Document) State() string { return d.attrs.State }

// Reliability returns the 0-100 reliability score, or nil when unknown.
func (d Document) Reliability() *int { return cloneInt(d.attrs.Reliability) }

// ObjectType returns the reported object category.
func (d Document) ObjectType() string { return d.attrs.ObjectType }

// Description returns the free-text report.
func (d Document) Description() string { return d.attrs.Description }

// Location returns the sighting coordinates.
func (d Document) Location() GeoPoint { return d.attrs.Location }

// Score returns the relevance score assigned by the search backend (0 outside text search).
func (d Document) Score() float64 { return d.score }

// HighlightedDescription returns the description with matched terms marked, if any.
func (d Document) HighlightedDescription() string { return d.highlighted }

// Attrs returns a copy of the stored attributes.
func (d Document) Attrs() Attrs {
	a := d.attrs
	a.Reliability = cloneInt(a.Reliability)
	return a
}

// WithScore returns a copy carrying the given relevance score.
func (d Document) WithScore(score float64) Document {
	d.score = score
	return d
}

// WithHighlight returns a copy carrying the highlighted description.
func (d Document) WithHighlight(h string) Document {
	d.highlighted = h
	return d
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
