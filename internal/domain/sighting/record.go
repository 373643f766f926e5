package sighting

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Column limits of the canonical catalog.
const (
	MaxCityLength       = 20
	MaxObjectTypeLength = 20
	StateCodeLength     = 2
	MinReliability      = 0
	MaxReliability      = 100
)

// Record is the canonical sighting as stored in the catalog.
type Record struct {
	ID          string
	OccurredAt  time.Time
	Latitude    float64
	Longitude   float64
	City        string
	State       string
	ObjectType  string
	Description string
	Reliability *int
}

// Validate checks column constraints of the catalog.
func (r *Record) Validate() error {
	if r.OccurredAt.IsZero() {
		return fmt.Errorf("occurred_at is required")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %g", r.Latitude)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %g", r.Longitude)
	}
	if strings.TrimSpace(r.City) == "" {
		return fmt.Errorf("city is required")
	}
	if utf8.RuneCountInString(r.City) > MaxCityLength {
		return fmt.Errorf("city too long (max %d)", MaxCityLength)
	}
	if utf8.RuneCountInString(r.State) != StateCodeLength {
		return fmt.Errorf("state must be a %d-letter code", StateCodeLength)
	}
	if strings.TrimSpace(r.ObjectType) == "" {
		return fmt.Errorf("object_type is required")
	}
	if utf8.RuneCountInString(r.ObjectType) > MaxObjectTypeLength {
		return fmt.Errorf("object_type too long (max %d)", MaxObjectTypeLength)
	}
	if r.Reliability != nil && (*r.Reliability < MinReliability || *r.Reliability > MaxReliability) {
		return fmt.Errorf("reliability must be between %d and %d", MinReliability, MaxReliability)
	}
	return nil
}

// ToDocument projects the record into its search document.
func (r *Record) ToDocument() Document {
	return NewDocument(Attrs{
		ID:          r.ID,
		OccurredAt:  r.OccurredAt,
		City:        r.City,
		State:       r.State,
		Reliability: r.Reliability,
		ObjectType:  r.ObjectType,
		Description: r.Description,
		Location:    GeoPoint{Lat: r.Latitude, Lon: r.Longitude},
	})
}

// Patch is a partial update of a record. Nil fields are unchanged.
type Patch struct {
	OccurredAt  *time.Time
	Latitude    *float64
	Longitude   *float64
	City        *string
	Reliability *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.OccurredAt == nil && p.Latitude == nil && p.Longitude == nil &&
		p.City == nil && p.Reliability == nil
}

// Apply returns a copy of r with the patch fields applied.
func (p Patch) Apply(r Record) Record {
	if p.OccurredAt != nil {
		r.OccurredAt = *p.OccurredAt
	}
	if p.Latitude != nil {
		r.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		r.Longitude = *p.Longitude
	}
	if p.City != nil {
		r.City = *p.City
	}
	if p.Reliability != nil {
		r.Reliability = cloneInt(p.Reliability)
	}
	return r
}
