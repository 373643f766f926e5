package document

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/sighting"
)

// Hash field names of an indexed sighting.
const (
	FieldID              = "id"
	FieldCity            = "city"
	FieldState           = "state"
	FieldObjectType      = "object_type"
	FieldDescription     = "description"
	FieldReliability     = "reliability"
	FieldReliabilityRank = "reliability_rank"
	FieldTimestamp       = "timestamp"
	FieldOccurredAt      = "occurred_at"
	FieldLocation        = "location"
)

// missingReliabilityRank ranks documents without reliability below every scored one.
const missingReliabilityRank = -1

// EncodeFields flattens a document into hash fields.
// reliability is omitted when unknown so range filters and statistics skip the document.
func EncodeFields(d sighting.Document) map[string]string {
	m := map[string]string{
		FieldID:              d.ID(),
		FieldCity:            d.City(),
		FieldState:           d.State(),
		FieldObjectType:      d.ObjectType(),
		FieldDescription:     d.Description(),
		FieldTimestamp:       strconv.FormatInt(d.OccurredAt().Unix(), 10),
		FieldOccurredAt:      d.OccurredAt().Format(time.RFC3339),
		FieldLocation:        formatLocation(d.Location()),
		FieldReliabilityRank: strconv.Itoa(missingReliabilityRank),
	}
	if r := d.Reliability(); r != nil {
		m[FieldReliability] = strconv.Itoa(*r)
		m[FieldReliabilityRank] = strconv.Itoa(*r)
	}
	return m
}

// DecodeFields rebuilds a document from hash fields. key is used when the id field is absent.
func DecodeFields(key string, m map[string]string) (sighting.Document, error) {
	a := sighting.Attrs{
		ID:          m[FieldID],
		City:        m[FieldCity],
		State:       m[FieldState],
		ObjectType:  m[FieldObjectType],
		Description: m[FieldDescription],
	}
	if a.ID == "" {
		a.ID = strings.TrimPrefix(key, domain.SightingKeyPrefix)
	}
	if a.ID == "" {
		return sighting.Document{}, fmt.Errorf("%w: document without id", domain.ErrDecodeFailure)
	}

	ts, err := decodeTime(m)
	if err != nil {
		return sighting.Document{}, fmt.Errorf("%w: %s: %w", domain.ErrDecodeFailure, a.ID, err)
	}
	a.OccurredAt = ts

	if s, ok := m[FieldReliability]; ok && s != "" {
		r, err := strconv.Atoi(s)
		if err != nil {
			return sighting.Document{}, fmt.Errorf("%w: %s: reliability %q", domain.ErrDecodeFailure, a.ID, s)
		}
		a.Reliability = &r
	}

	if s, ok := m[FieldLocation]; ok && s != "" {
		p, err := parseLocation(s)
		if err != nil {
			return sighting.Document{}, fmt.Errorf("%w: %s: %w", domain.ErrDecodeFailure, a.ID, err)
		}
		a.Location = p
	}

	return sighting.NewDocument(a), nil
}

// decodeTime prefers the offset-preserving occurred_at and falls back to the unix timestamp in UTC.
func decodeTime(m map[string]string) (time.Time, error) {
	if s := m[FieldOccurredAt]; s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("occurred_at %q: %w", s, err)
		}
		return t, nil
	}
	if s := m[FieldTimestamp]; s != "" {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
		}
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, nil
}

// formatLocation renders the "lon,lat" form of GEO fields.
func formatLocation(p sighting.GeoPoint) string {
	return strconv.FormatFloat(p.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lat, 'f', -1, 64)
}

func parseLocation(s string) (sighting.GeoPoint, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return sighting.GeoPoint{}, fmt.Errorf("location %q: want lon,lat", s)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return sighting.GeoPoint{}, fmt.Errorf("location %q: %w", s, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return sighting.GeoPoint{}, fmt.Errorf("location %q: %w", s, err)
	}
	return sighting.GeoPoint{Lat: lat, Lon: lon}, nil
}
