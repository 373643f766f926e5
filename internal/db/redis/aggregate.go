package redis

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ufotracker/internal/db"
)

// Reserved pipeline aliases.
const (
	countAlias = "__count"
	topAlias   = "__top"
	rankAlias  = "__rank"
	hourAlias  = "__hour"
	keyField   = "__key"
)

// rankScale separates the sort key from the tie-break key inside one numeric rank.
// Unix-second tie-breaks stay below it until year 2286.
const rankScale = 1e10

// plan is one backend command answering one top-level aggregation.
type plan struct {
	agg  db.Aggregation
	op   string
	args []string
}

// Aggregate answers every top-level aggregation in one pipelined round trip.
// Top hits inside terms buckets are hydrated with a second pipelined HGETALL round trip.
func (s *Store) Aggregate(ctx context.Context, q *db.AggregateQuery) (db.Values, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Aggregations) == 0 {
		return db.Values{}, nil
	}

	scope := buildQuery(nil, q.Scope)
	plans := make([]plan, len(q.Aggregations))
	cmds := make([]rueidis.Completed, len(q.Aggregations))
	for i, agg := range q.Aggregations {
		p, err := planAggregation(q.IndexName, scope, agg)
		if err != nil {
			return nil, err
		}
		plans[i] = p
		cmds[i] = s.b().Arbitrary(p.op).Args(p.args...).Build()
	}

	values := make(db.Values, len(plans))
	for i, res := range s.doAll(ctx, cmds) {
		p := plans[i]
		raw, err := res.ToArray()
		if err != nil {
			return nil, &db.Error{Op: p.op, Err: fmt.Errorf("%s: %w", p.agg.Name, err)}
		}
		v, err := decodeAggregation(p.agg, raw)
		if err != nil {
			return nil, &db.Error{Op: p.op, Err: fmt.Errorf("%s: %w", p.agg.Name, err)}
		}
		values[p.agg.Name] = v
	}

	if err := s.hydrateTopHits(ctx, q.Aggregations, values); err != nil {
		return nil, err
	}
	return values, nil
}

func planAggregation(index, scope string, agg db.Aggregation) (plan, error) {
	if agg.Name == "" {
		return plan{}, fmt.Errorf("aggregation name is required")
	}

	switch agg.Kind {
	case db.AggTerms:
		args, err := termsArgs(index, scope, agg)
		return plan{agg: agg, op: db.OpAggregate, args: args}, err

	case db.AggAvg:
		args := []string{index, withField(scope, agg.Field), "LOAD", "1", "@" + agg.Field,
			"GROUPBY", "0", "REDUCE", "AVG", "1", "@" + agg.Field, "AS", "avg",
			"DIALECT", "2"}
		return plan{agg: agg, op: db.OpAggregate, args: args}, nil

	case db.AggExtendedStats:
		f := "@" + agg.Field
		args := []string{index, withField(scope, agg.Field), "LOAD", "1", f,
			"GROUPBY", "0",
			"REDUCE", "COUNT", "0", "AS", "count",
			"REDUCE", "MIN", "1", f, "AS", "min",
			"REDUCE", "MAX", "1", f, "AS", "max",
			"REDUCE", "AVG", "1", f, "AS", "avg",
			"REDUCE", "SUM", "1", f, "AS", "sum",
			"REDUCE", "STDDEV", "1", f, "AS", "std_deviation",
			"DIALECT", "2"}
		return plan{agg: agg, op: db.OpAggregate, args: args}, nil

	case db.AggFilterCount:
		q := scope
		if f := buildFilter(agg.Filter); f != "" {
			q = joinQuery(scope, f)
		}
		return plan{agg: agg, op: db.OpSearch, args: countArgs(index, q)}, nil

	case db.AggHourHistogram:
		if agg.IntervalHours <= 0 || 24%agg.IntervalHours != 0 {
			return plan{}, fmt.Errorf("%w: histogram interval %dh must divide 24", db.ErrUnsupported, agg.IntervalHours)
		}
		expr := fmt.Sprintf("floor((@%s %% 86400) / %d) * %d", agg.Field, agg.IntervalHours*3600, agg.IntervalHours)
		args := []string{index, scope, "LOAD", "1", "@" + agg.Field,
			"APPLY", expr, "AS", hourAlias,
			"GROUPBY", "1", "@" + hourAlias, "REDUCE", "COUNT", "0", "AS", countAlias,
			"SORTBY", "2", "@" + hourAlias, "ASC", "MAX", "24",
			"DIALECT", "2"}
		return plan{agg: agg, op: db.OpAggregate, args: args}, nil

	default:
		return plan{}, fmt.Errorf("%w: top-level %s aggregation", db.ErrUnsupported, agg.Kind)
	}
}

// termsArgs groups by field, counts, and for a nested top-1 keeps the key of the best-ranked document.
func termsArgs(index, scope string, agg db.Aggregation) ([]string, error) {
	if agg.Field == "" || agg.Size <= 0 {
		return nil, fmt.Errorf("terms aggregation needs a field and a positive size")
	}
	top, err := topHitsSub(agg)
	if err != nil {
		return nil, err
	}

	args := []string{index, scope}
	if top == nil {
		args = append(args, "LOAD", "1", "@"+agg.Field)
	} else {
		load := []string{"@" + agg.Field, "@" + keyField, "@" + top.Sort.Field}
		if top.TieBreak != "" {
			load = append(load, "@"+top.TieBreak)
		}
		args = append(args, "LOAD", strconv.Itoa(len(load)))
		args = append(args, load...)
		args = append(args, "APPLY", rankExpr(top), "AS", rankAlias)
	}

	args = append(args, "GROUPBY", "1", "@"+agg.Field, "REDUCE", "COUNT", "0", "AS", countAlias)
	if top != nil {
		dir := "ASC"
		if top.Sort.Desc {
			dir = "DESC"
		}
		args = append(args, "REDUCE", "FIRST_VALUE", "4", "@"+keyField, "BY", "@"+rankAlias, dir, "AS", topAlias)
	}
	args = append(args,
		"SORTBY", "2", "@"+countAlias, "DESC", "MAX", strconv.Itoa(agg.Size),
		"DIALECT", "2")
	return args, nil
}

func topHitsSub(agg db.Aggregation) (*db.Aggregation, error) {
	if len(agg.Sub) == 0 {
		return nil, nil
	}
	if len(agg.Sub) > 1 {
		return nil, fmt.Errorf("%w: more than one sub-aggregation", db.ErrUnsupported)
	}
	sub := agg.Sub[0]
	if sub.Kind != db.AggTopHits {
		return nil, fmt.Errorf("%w: %s under terms", db.ErrUnsupported, sub.Kind)
	}
	if sub.Size != 1 {
		return nil, fmt.Errorf("%w: top hits size %d (only 1)", db.ErrUnsupported, sub.Size)
	}
	if sub.Sort == nil || sub.Sort.Field == "" {
		return nil, fmt.Errorf("top hits requires a sort field")
	}
	return &sub, nil
}

// rankExpr folds sort key and tie-break into one number; the tie-break always prefers larger values.
func rankExpr(top *db.Aggregation) string {
	if top.TieBreak == "" {
		return "@" + top.Sort.Field
	}
	op := "+"
	if !top.Sort.Desc {
		op = "-"
	}
	return fmt.Sprintf("@%s * %s %s @%s", top.Sort.Field, formatNumber(rankScale), op, top.TieBreak)
}

// withField restricts scope to documents that carry a value for field.
func withField(scope, field string) string {
	return joinQuery(scope, fmt.Sprintf("@%s:[-inf +inf]", field))
}

func joinQuery(scope, clause string) string {
	if scope == "*" || scope == "" {
		return clause
	}
	return scope + " " + clause
}

// --- Decoding ---

func decodeAggregation(agg db.Aggregation, raw []rueidis.RedisMessage) (db.Value, error) {
	if agg.Kind == db.AggFilterCount {
		total, err := parseTotal(raw)
		if err != nil {
			return nil, err
		}
		return db.FilterValue{Count: total}, nil
	}

	rows, err := parseRows(raw)
	if err != nil {
		return nil, err
	}

	switch agg.Kind {
	case db.AggTerms:
		return decodeTerms(agg, rows)
	case db.AggAvg:
		if len(rows) == 0 {
			return db.AvgValue{}, nil
		}
		v, err := optionalFloat(rows[0], "avg")
		if err != nil {
			return nil, err
		}
		return db.AvgValue{Value: v}, nil
	case db.AggExtendedStats:
		return decodeExtendedStats(rows)
	case db.AggHourHistogram:
		return decodeHistogram(rows)
	default:
		return nil, fmt.Errorf("%w: %s", db.ErrUnsupported, agg.Kind)
	}
}

// parseRows decodes an FT.AGGREGATE reply: [total, row, row, ...] with flat name/value rows.
func parseRows(raw []rueidis.RedisMessage) ([]map[string]string, error) {
	if _, err := parseTotal(raw); err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(raw)-1)
	for i := 1; i < len(raw); i++ {
		fields, err := raw[i].ToArray()
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", db.ErrMalformedResponse, i, err)
		}
		row, err := parseFieldPairs(fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeTerms(agg db.Aggregation, rows []map[string]string) (db.TermsValue, error) {
	hasTop := len(agg.Sub) > 0
	buckets := make([]db.Bucket, 0, len(rows))
	for _, row := range rows {
		key, ok := row[agg.Field]
		if !ok {
			// Documents without the field form a null group; terms never report it.
			continue
		}
		count, err := requiredInt(row, countAlias)
		if err != nil {
			return db.TermsValue{}, err
		}
		b := db.Bucket{Key: key, Count: count}
		if hasTop {
			var hits []db.SearchEntry
			if k := row[topAlias]; k != "" {
				hits = []db.SearchEntry{{Key: k}}
			}
			b.Sub = db.Values{agg.Sub[0].Name: db.TopHitsValue{Hits: hits}}
		}
		buckets = append(buckets, b)
	}
	return db.TermsValue{Buckets: buckets}, nil
}

func decodeExtendedStats(rows []map[string]string) (db.ExtendedStatsValue, error) {
	if len(rows) == 0 {
		return db.ExtendedStatsValue{}, nil
	}
	row := rows[0]
	count, err := requiredInt(row, "count")
	if err != nil {
		return db.ExtendedStatsValue{}, err
	}
	out := db.ExtendedStatsValue{Count: count}
	for name, dst := range map[string]**float64{
		"min": &out.Min, "max": &out.Max, "avg": &out.Avg, "sum": &out.Sum, "std_deviation": &out.StdDev,
	} {
		v, err := optionalFloat(row, name)
		if err != nil {
			return db.ExtendedStatsValue{}, err
		}
		*dst = v
	}
	if out.StdDev != nil {
		pop := populationStdDev(*out.StdDev, count)
		out.StdDev = &pop
	}
	return out, nil
}

// populationStdDev rescales the STDDEV reducer output, which divides by n-1, to divide by n.
func populationStdDev(sample float64, n int64) float64 {
	if n <= 1 {
		return 0
	}
	return sample * math.Sqrt(float64(n-1)/float64(n))
}

func decodeHistogram(rows []map[string]string) (db.HistogramValue, error) {
	buckets := make([]db.HistogramBucket, 0, len(rows))
	for _, row := range rows {
		hour, err := optionalFloat(row, hourAlias)
		if err != nil {
			return db.HistogramValue{}, err
		}
		if hour == nil {
			continue
		}
		count, err := requiredInt(row, countAlias)
		if err != nil {
			return db.HistogramValue{}, err
		}
		buckets = append(buckets, db.HistogramBucket{Hour: int(*hour), Count: count})
	}
	return db.HistogramValue{Buckets: buckets}, nil
}

func requiredInt(row map[string]string, name string) (int64, error) {
	s, ok := row[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", db.ErrMalformedResponse, name)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", db.ErrMalformedResponse, name, s)
	}
	return v, nil
}

// optionalFloat returns nil for a missing or non-finite value (the engine reports nan on empty input).
func optionalFloat(row map[string]string, name string) (*float64, error) {
	s, ok := row[name]
	if !ok || s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", db.ErrMalformedResponse, name, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}

// hydrateTopHits replaces top-hit key placeholders with stored documents.
// Keys that vanished between the two round trips leave their bucket without hits.
func (s *Store) hydrateTopHits(ctx context.Context, aggs []db.Aggregation, values db.Values) error {
	type ref struct {
		bucket *db.Bucket
		sub    string
	}
	var (
		keys []string
		refs []ref
	)
	for _, agg := range aggs {
		if agg.Kind != db.AggTerms || len(agg.Sub) == 0 {
			continue
		}
		terms, ok := values[agg.Name].(db.TermsValue)
		if !ok {
			continue
		}
		sub := agg.Sub[0].Name
		for i := range terms.Buckets {
			b := &terms.Buckets[i]
			top, _ := b.Sub[sub].(db.TopHitsValue)
			if len(top.Hits) == 0 {
				continue
			}
			keys = append(keys, top.Hits[0].Key)
			refs = append(refs, ref{bucket: b, sub: sub})
		}
	}
	if len(keys) == 0 {
		return nil
	}

	docs, err := s.HGetAllMulti(ctx, keys)
	if err != nil {
		return err
	}
	for i, fields := range docs {
		var hits []db.SearchEntry
		if len(fields) > 0 {
			hits = []db.SearchEntry{{Key: keys[i], Fields: fields}}
		}
		refs[i].bucket.Sub[refs[i].sub] = db.TopHitsValue{Hits: hits}
	}
	return nil
}
