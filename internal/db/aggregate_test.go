package db

import (
	"errors"
	"strings"
	"testing"
)

func TestValues_TypedAccess(t *testing.T) {
	mean := 50.0
	v := Values{
		"by_state": TermsValue{Buckets: []Bucket{{Key: "RJ", Count: 3}}},
		"mean":     AvgValue{Value: &mean},
		"high":     FilterValue{Count: 1},
	}

	terms, err := v.Terms("by_state")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(terms.Buckets) != 1 || terms.Buckets[0].Key != "RJ" {
		t.Errorf("buckets = %+v", terms.Buckets)
	}

	avg, err := v.Avg("mean")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *avg.Value != 50 {
		t.Errorf("avg = %v", *avg.Value)
	}

	f, err := v.Filter("high")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Count != 1 {
		t.Errorf("count = %d", f.Count)
	}
}

func TestValues_Missing(t *testing.T) {
	_, err := Values{}.ExtendedStats("stats")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestValues_KindMismatch(t *testing.T) {
	v := Values{"stats": FilterValue{Count: 2}}

	_, err := v.ExtendedStats("stats")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("error = %v, want ErrMalformedResponse", err)
	}
	if want := `aggregation "stats" is filter, want extended_stats`; !strings.Contains(err.Error(), want) {
		t.Errorf("error = %q", err)
	}
}

func TestAggregationConstructors(t *testing.T) {
	top := TopHits("top", 1, Sort{Field: "reliability", Desc: true}, "timestamp")
	terms := Terms("by_state", "state", 50, top)

	if terms.Kind != AggTerms || terms.Size != 50 || len(terms.Sub) != 1 {
		t.Fatalf("terms = %+v", terms)
	}
	if sub := terms.Sub[0]; sub.Kind != AggTopHits || sub.Sort.Field != "reliability" || sub.TieBreak != "timestamp" {
		t.Errorf("sub = %+v", sub)
	}

	h := HourHistogram("timeline", "timestamp", 3)
	if h.Kind != AggHourHistogram || h.IntervalHours != 3 {
		t.Errorf("histogram = %+v", h)
	}
}

func TestAggregationKind_String(t *testing.T) {
	if AggExtendedStats.String() != "extended_stats" {
		t.Errorf("String() = %q", AggExtendedStats.String())
	}
	if AggregationKind(42).String() != "kind(42)" {
		t.Errorf("String() = %q", AggregationKind(42).String())
	}
}
