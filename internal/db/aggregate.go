package db

import (
	"fmt"

	"github.com/kailas-cloud/ufotracker/internal/domain/search/filter"
)

// AggregationKind enumerates supported aggregation types.
type AggregationKind int

const (
	// AggTerms groups documents by a field value, ordered by count desc.
	AggTerms AggregationKind = iota
	// AggAvg is the mean of a numeric field.
	AggAvg
	// AggExtendedStats is count/min/max/avg/sum/stddev of a numeric field.
	AggExtendedStats
	// AggFilterCount counts documents matching an extra filter.
	AggFilterCount
	// AggTopHits returns the best documents per bucket under a sort order.
	AggTopHits
	// AggHourHistogram buckets a unix-seconds field by hour of day (UTC).
	AggHourHistogram
)

func (k AggregationKind) String() string {
	switch k {
	case AggTerms:
		return "terms"
	case AggAvg:
		return "avg"
	case AggExtendedStats:
		return "extended_stats"
	case AggFilterCount:
		return "filter"
	case AggTopHits:
		return "top_hits"
	case AggHourHistogram:
		return "hour_histogram"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Aggregation describes one named aggregation.
type Aggregation struct {
	Name  string
	Kind  AggregationKind
	Field string

	// Size caps terms buckets or top hits per bucket.
	Size int
	// Filter narrows AggFilterCount.
	Filter filter.Expression
	// Sort orders AggTopHits; ties are broken by TieBreak desc.
	Sort     *Sort
	TieBreak string
	// IntervalHours is the AggHourHistogram bucket width.
	IntervalHours int

	// Sub aggregations evaluated per bucket (AggTerms only).
	Sub []Aggregation
}

// Terms groups by field into at most size buckets.
func Terms(name, field string, size int, sub ...Aggregation) Aggregation {
	return Aggregation{Name: name, Kind: AggTerms, Field: field, Size: size, Sub: sub}
}

// Avg computes the mean of field.
func Avg(name, field string) Aggregation {
	return Aggregation{Name: name, Kind: AggAvg, Field: field}
}

// ExtendedStats computes summary statistics of field.
func ExtendedStats(name, field string) Aggregation {
	return Aggregation{Name: name, Kind: AggExtendedStats, Field: field}
}

// FilterCount counts documents matching expr within the query scope.
func FilterCount(name string, expr filter.Expression) Aggregation {
	return Aggregation{Name: name, Kind: AggFilterCount, Filter: expr}
}

// TopHits keeps the best size documents by sort, ties broken by tieBreak desc.
func TopHits(name string, size int, sort Sort, tieBreak string) Aggregation {
	return Aggregation{Name: name, Kind: AggTopHits, Size: size, Sort: &sort, TieBreak: tieBreak}
}

// HourHistogram buckets the unix-seconds field by hour of day.
func HourHistogram(name, field string, intervalHours int) Aggregation {
	return Aggregation{Name: name, Kind: AggHourHistogram, Field: field, IntervalHours: intervalHours}
}

// AggregateQuery runs aggregations over the documents matching Scope.
type AggregateQuery struct {
	IndexName    string
	Scope        filter.Expression
	Aggregations []Aggregation
}

// Value is the decoded result of one aggregation.
type Value interface {
	Kind() AggregationKind
}

// TermsValue is the result of AggTerms.
type TermsValue struct {
	Buckets []Bucket
}

// Bucket is one group of a terms aggregation.
type Bucket struct {
	Key   string
	Count int64
	Sub   Values
}

// AvgValue is the result of AggAvg. Value is nil when no document had the field.
type AvgValue struct {
	Value *float64
}

// ExtendedStatsValue is the result of AggExtendedStats. Nil fields are absent.
// StdDev is the population standard deviation.
type ExtendedStatsValue struct {
	Count  int64
	Min    *float64
	Max    *float64
	Avg    *float64
	Sum    *float64
	StdDev *float64
}

// FilterValue is the result of AggFilterCount.
type FilterValue struct {
	Count int64
}

// TopHitsValue is the result of AggTopHits.
type TopHitsValue struct {
	Hits []SearchEntry
}

// HistogramBucket counts documents whose hour of day falls in [Hour, Hour+interval).
type HistogramBucket struct {
	Hour  int
	Count int64
}

// HistogramValue is the result of AggHourHistogram. Empty buckets are omitted.
type HistogramValue struct {
	Buckets []HistogramBucket
}

// Kind implements Value.
func (TermsValue) Kind() AggregationKind { return AggTerms }

// Kind implements Value.
func (AvgValue) Kind() AggregationKind { return AggAvg }

// Kind implements Value.
func (ExtendedStatsValue) Kind() AggregationKind { return AggExtendedStats }

// Kind implements Value.
func (FilterValue) Kind() AggregationKind { return AggFilterCount }

// Kind implements Value.
func (TopHitsValue) Kind() AggregationKind { return AggTopHits }

// Kind implements Value.
func (HistogramValue) Kind() AggregationKind { return AggHourHistogram }

// Values maps aggregation names to decoded results.
// Typed accessors fail with ErrMalformedResponse on a missing name or a kind mismatch.
type Values map[string]Value

// Terms returns the named terms result.
func (v Values) Terms(name string) (TermsValue, error) { return lookup[TermsValue](v, name) }

// Avg returns the named avg result.
func (v Values) Avg(name string) (AvgValue, error) { return lookup[AvgValue](v, name) }

// ExtendedStats returns the named extended stats result.
func (v Values) ExtendedStats(name string) (ExtendedStatsValue, error) {
	return lookup[ExtendedStatsValue](v, name)
}

// Filter returns the named filter count result.
func (v Values) Filter(name string) (FilterValue, error) { return lookup[FilterValue](v, name) }

// TopHits returns the named top hits result.
func (v Values) TopHits(name string) (TopHitsValue, error) { return lookup[TopHitsValue](v, name) }

// Histogram returns the named hour histogram result.
func (v Values) Histogram(name string) (HistogramValue, error) {
	return lookup[HistogramValue](v, name)
}

func lookup[T Value](v Values, name string) (T, error) {
	var zero T
	raw, ok := v[name]
	if !ok {
		return zero, fmt.Errorf("%w: aggregation %q missing", ErrMalformedResponse, name)
	}
	typed, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("%w: aggregation %q is %s, want %s",
			ErrMalformedResponse, name, raw.Kind(), zero.Kind())
	}
	return typed, nil
}
