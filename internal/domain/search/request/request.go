package request

import (
	"fmt"
	"math"
	"strings"

	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength  = 4096
	DefaultSize     = 10
	MaxSize         = 1000
	DefaultRadiusKm = 50
)

// Request is one of TextSearch, AdvancedFilter or GeoProximity.
type Request interface {
	Mode() mode.Mode
}

// Page is a clamped page/size pair.
type Page struct {
	number int
	size   int
}

// NewPage clamps size to [1, MaxSize] and page with ClampPage.
func NewPage(page, size int) Page {
	size = clampSize(size)
	return Page{number: ClampPage(page, size), size: size}
}

// ClampPage bounds page to [0, n] where n is the largest page whose
// offset plus size still fits in an int. size must be positive.
func ClampPage(page, size int) int {
	return min(max(0, page), math.MaxInt/size-1)
}

// Number returns the zero-based page index.
func (p Page) Number() int { return p.number }

// Size returns the page size.
func (p Page) Size() int { return p.size }

// Offset returns the index of the first hit of the page.
func (p Page) Offset() int { return p.number * p.size }

// TextSearch is a fuzzy free-text query over the description.
type TextSearch struct {
	query string
	page  Page
}

// NewTextSearch trims the query and clamps pagination. A blank query is allowed.
func NewTextSearch(query string, page, size int) (TextSearch, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return TextSearch{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	return TextSearch{query: query, page: NewPage(page, size)}, nil
}

// Mode implements Request.
func (TextSearch) Mode() mode.Mode { return mode.Text }

// Query returns the trimmed query text.
func (r TextSearch) Query() string { return r.query }

// IsBlank reports whether there is nothing to match.
func (r TextSearch) IsBlank() bool { return r.query == "" }

// Page returns the clamped pagination.
func (r TextSearch) Page() Page { return r.page }

// AdvancedFilter is a conjunction of exact filters scoped to one state.
type AdvancedFilter struct {
	state          string
	objectType     string
	minReliability *int
	page           Page
}

// NewAdvancedFilter requires a state; a blank objectType is treated as absent.
func NewAdvancedFilter(state string, objectType *string, minReliability *int, page, size int) (AdvancedFilter, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		return AdvancedFilter{}, fmt.Errorf("%w: state is required", domain.ErrInvalidQuery)
	}
	r := AdvancedFilter{state: state, page: NewPage(page, size)}
	if objectType != nil {
		r.objectType = strings.TrimSpace(*objectType)
	}
	if minReliability != nil {
		v := *minReliability
		r.minReliability = &v
	}
	return r, nil
}

// Mode implements Request.
func (AdvancedFilter) Mode() mode.Mode { return mode.Advanced }

// State returns the required state code.
func (r AdvancedFilter) State() string { return r.state }

// ObjectType returns the object type filter, empty when absent.
func (r AdvancedFilter) ObjectType() string { return r.objectType }

// MinReliability returns the inclusive lower reliability bound, nil when absent.
func (r AdvancedFilter) MinReliability() *int {
	if r.minReliability == nil {
		return nil
	}
	v := *r.minReliability
	return &v
}

// Page returns the clamped pagination.
func (r AdvancedFilter) Page() Page { return r.page }

// GeoProximity selects sightings within a radius of a point.
type GeoProximity struct {
	lat      float64
	lon      float64
	radiusKm float64
	size     int
}

// NewGeoProximity validates coordinates; a non-positive radius falls back to DefaultRadiusKm.
func NewGeoProximity(lat, lon, radiusKm float64, size int) (GeoProximity, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoProximity{}, fmt.Errorf("%w: lat must be between -90 and 90", domain.ErrInvalidQuery)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return GeoProximity{}, fmt.Errorf("%w: lon must be between -180 and 180", domain.ErrInvalidQuery)
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return GeoProximity{}, fmt.Errorf("%w: radius must be finite", domain.ErrInvalidQuery)
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	return GeoProximity{lat: lat, lon: lon, radiusKm: radiusKm, size: clampSize(size)}, nil
}

// Mode implements Request.
func (GeoProximity) Mode() mode.Mode { return mode.Nearby }

// Lat returns the center latitude.
func (r GeoProximity) Lat() float64 { return r.lat }

// Lon returns the center longitude.
func (r GeoProximity) Lon() float64 { return r.lon }

// RadiusKm returns the search radius in kilometers.
func (r GeoProximity) RadiusKm() float64 { return r.radiusKm }

// Size returns the maximum number of hits.
func (r GeoProximity) Size() int { return r.size }

func clampSize(size int) int {
	return min(max(1, size), MaxSize)
}
