package request

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/ufotracker/internal/domain"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/mode"
)

func TestNewPage_Clamping(t *testing.T) {
	tests := []struct {
		name               string
		page, size         int
		wantPage, wantSize int
	}{
		{"defaults kept", 2, 10, 2, 10},
		{"negative page", -5, 10, 0, 10},
		{"zero size", 0, 0, 0, 1},
		{"negative size", 3, -7, 3, 1},
		{"huge size", 0, MaxSize + 1, 0, MaxSize},
		{"max int page", math.MaxInt, 10, math.MaxInt/10 - 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPage(tt.page, tt.size)
			if p.Number() != tt.wantPage || p.Size() != tt.wantSize {
				t.Errorf("NewPage(%d,%d) = %d/%d, want %d/%d",
					tt.page, tt.size, p.Number(), p.Size(), tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestPage_Offset(t *testing.T) {
	if got := NewPage(3, 20).Offset(); got != 60 {
		t.Errorf("Offset() = %d, want 60", got)
	}
	if got := NewPage(-1, -1).Offset(); got != 0 {
		t.Errorf("Offset() = %d, want 0", got)
	}
}

func TestNewTextSearch(t *testing.T) {
	r, err := NewTextSearch("  luzes no ceu ", -1, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "luzes no ceu" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Mode() != mode.Text {
		t.Errorf("Mode() = %q", r.Mode())
	}
	if r.Page().Number() != 0 || r.Page().Size() != 1 {
		t.Errorf("Page() = %+v", r.Page())
	}
}

func TestNewTextSearch_Blank(t *testing.T) {
	r, err := NewTextSearch("   ", 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsBlank() {
		t.Error("IsBlank() = false")
	}
}

func TestNewTextSearch_TooLong(t *testing.T) {
	_, err := NewTextSearch(strings.Repeat("a", MaxQueryLength+1), 0, 10)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestNewAdvancedFilter(t *testing.T) {
	ot := " disco "
	minRel := 70
	r, err := NewAdvancedFilter("RJ", &ot, &minRel, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State() != "RJ" || r.ObjectType() != "disco" {
		t.Errorf("State/ObjectType = %q/%q", r.State(), r.ObjectType())
	}
	if r.MinReliability() == nil || *r.MinReliability() != 70 {
		t.Errorf("MinReliability() = %v", r.MinReliability())
	}
	minRel = 10
	if *r.MinReliability() != 70 {
		t.Error("request aliases caller's pointer")
	}
	if r.Page().Offset() != 5 {
		t.Errorf("Offset() = %d", r.Page().Offset())
	}
}

func TestNewAdvancedFilter_Optionals(t *testing.T) {
	blank := "  "
	r, err := NewAdvancedFilter("SP", &blank, nil, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ObjectType() != "" {
		t.Errorf("ObjectType() = %q, want empty", r.ObjectType())
	}
	if r.MinReliability() != nil {
		t.Error("MinReliability() should be nil")
	}
}

func TestNewAdvancedFilter_StateRequired(t *testing.T) {
	_, err := NewAdvancedFilter(" ", nil, nil, 0, 10)
	if !errors.Is(err, domain.ErrInvalidQuery) {
		t.Fatalf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestNewGeoProximity(t *testing.T) {
	r, err := NewGeoProximity(-22.9, -43.2, 0, -3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.RadiusKm() != DefaultRadiusKm {
		t.Errorf("RadiusKm() = %v, want default", r.RadiusKm())
	}
	if r.Size() != 1 {
		t.Errorf("Size() = %d, want 1", r.Size())
	}
	if r.Mode() != mode.Nearby {
		t.Errorf("Mode() = %q", r.Mode())
	}
}

func TestNewGeoProximity_Invalid(t *testing.T) {
	tests := []struct {
		name             string
		lat, lon, radius float64
	}{
		{"lat", 91, 0, 10},
		{"lon", 0, 181, 10},
		{"nan lat", math.NaN(), 0, 10},
		{"inf radius", 0, 0, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeoProximity(tt.lat, tt.lon, tt.radius, 10)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("error = %v, want ErrInvalidQuery", err)
			}
		})
	}
}

func TestRequest_Variants(t *testing.T) {
	text, _ := NewTextSearch("x", 0, 1)
	adv, _ := NewAdvancedFilter("RJ", nil, nil, 0, 1)
	geo, _ := NewGeoProximity(0, 0, 1, 1)

	for _, r := range []Request{text, adv, geo} {
		if !r.Mode().IsValid() {
			t.Errorf("%T has invalid mode %q", r, r.Mode())
		}
	}
}

func TestPage_OffsetNeverOverflows(t *testing.T) {
	for _, size := range []int{1, 5, 10, MaxSize} {
		for _, page := range []int{math.MaxInt, math.MaxInt / 5, math.MaxInt/size + 1} {
			p := NewPage(page, size)
			if off := p.Offset(); off < 0 || off > math.MaxInt-p.Size() {
				t.Errorf("NewPage(%d, %d).Offset() = %d, want within [0, MaxInt-size]", page, size, off)
			}
		}
	}
}
