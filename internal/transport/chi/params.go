package chi

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/ufotracker/internal/domain/search/request"
	sightinguc "github.com/kailas-cloud/ufotracker/internal/usecase/sighting"
)

// PageParams are the shared page/size query parameters.
type PageParams struct {
	Page *int
	Size *int
}

// TextSearchParams are the query parameters of GET /sightings/search/text.
type TextSearchParams struct {
	PageParams
	Text *string
}

// AdvancedSearchParams are the query parameters of GET /sightings/search/advanced.
type AdvancedSearchParams struct {
	PageParams
	State          *string
	ObjectType     *string
	MinReliability *int
}

// NearbySearchParams are the query parameters of GET /sightings/search/nearby.
type NearbySearchParams struct {
	Lat      float64
	Lon      float64
	RadiusKm *float64
	Size     *int
}

// WeeklyParams are the query parameters of the weekly routes.
type WeeklyParams struct {
	Date *string
}

// bind is one form-style query parameter binding.
type bind struct {
	name     string
	required bool
	dest     any
}

func bindQuery(r *http.Request, binds ...bind) error {
	q := r.URL.Query()
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, b.required, b.name, q, b.dest); err != nil {
			return fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return nil
}

func (p *PageParams) binds() []bind {
	return []bind{{name: "page", dest: &p.Page}, {name: "size", dest: &p.Size}}
}

// resolve applies defaults; clamping is left to the services.
func (p PageParams) resolve(defaultSize int) (page, size int) {
	page, size = 0, defaultSize
	if p.Page != nil {
		page = *p.Page
	}
	if p.Size != nil {
		size = *p.Size
	}
	return page, size
}

func bindTextSearch(r *http.Request) (TextSearchParams, error) {
	var p TextSearchParams
	err := bindQuery(r, append(p.binds(), bind{name: "text", dest: &p.Text})...)
	return p, err
}

func bindAdvancedSearch(r *http.Request) (AdvancedSearchParams, error) {
	var p AdvancedSearchParams
	err := bindQuery(r, append(p.binds(),
		bind{name: "state", dest: &p.State},
		bind{name: "object_type", dest: &p.ObjectType},
		bind{name: "min_reliability", dest: &p.MinReliability},
	)...)
	return p, err
}

func bindNearbySearch(r *http.Request) (NearbySearchParams, error) {
	var p NearbySearchParams
	err := bindQuery(r,
		bind{name: "lat", required: true, dest: &p.Lat},
		bind{name: "lon", required: true, dest: &p.Lon},
		bind{name: "radius_km", dest: &p.RadiusKm},
		bind{name: "size", dest: &p.Size},
	)
	return p, err
}

func bindWeekly(r *http.Request) (WeeklyParams, error) {
	var p WeeklyParams
	err := bindQuery(r, bind{name: "date", dest: &p.Date})
	return p, err
}

func bindList(r *http.Request) (PageParams, error) {
	var p PageParams
	err := bindQuery(r, p.binds()...)
	return p, err
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

const (
	defaultSearchSize = request.DefaultSize
	defaultListSize   = sightinguc.DefaultPageSize
)
