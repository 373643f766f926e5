package redis

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/ufotracker/internal/db"
	"github.com/kailas-cloud/ufotracker/internal/domain/search/filter"
)

// buildQuery renders the FT query string: filter clauses AND'ed with the optional text match.
func buildQuery(text *db.TextMatch, expr filter.Expression) string {
	parts := make([]string, 0, len(expr.Must())+1)
	if f := buildFilter(expr); f != "" {
		parts = append(parts, f)
	}
	if t := buildTextMatch(text); t != "" {
		parts = append(parts, t)
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// buildTextMatch renders a match query: terms OR'ed, each with AUTO fuzziness, optionally boosted.
func buildTextMatch(m *db.TextMatch) string {
	if m == nil {
		return ""
	}
	terms := db.Tokenize(m.Query)
	if len(terms) == 0 {
		return ""
	}

	rendered := make([]string, len(terms))
	for i, term := range terms {
		if m.Fuzziness == db.FuzzinessAuto {
			rendered[i] = fuzzyTerm(term)
		} else {
			rendered[i] = term
		}
	}

	clause := fmt.Sprintf("@%s:(%s)", m.Field, strings.Join(rendered, " | "))
	if m.Boost > 0 && m.Boost != 1 {
		clause = fmt.Sprintf("(%s)=>{$weight: %s;}", clause, formatNumber(m.Boost))
	}
	return clause
}

// fuzzyTerm wraps a term in Levenshtein markers scaled by its length.
func fuzzyTerm(term string) string {
	switch n := utf8.RuneCountInString(term); {
	case n <= 2:
		return term
	case n <= 5:
		return "%" + term + "%"
	default:
		return "%%" + term + "%%"
	}
}

// buildFilter translates filter.Expression into an FT.SEARCH query string.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}
	parts := make([]string, 0, len(expr.Must()))
	for _, cond := range expr.Must() {
		if c := buildCondition(cond); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	switch {
	case cond.IsMatch():
		return buildTagFilter(cond.Key(), cond.Match())
	case cond.IsRange():
		return buildNumericFilter(cond.Key(), *cond.Range())
	case cond.IsGeo():
		return buildGeoFilter(cond.Key(), *cond.Geo())
	}
	return ""
}

func buildTagFilter(key, value string) string {
	escaped := tagEscaper.Replace(value)
	return fmt.Sprintf("@%s:{%s}", key, escaped)
}

func buildNumericFilter(key string, r filter.Range) string {
	minBound := "-inf"
	maxBound := "+inf"

	if r.GT() != nil {
		minBound = "(" + formatNumber(*r.GT())
	} else if r.GTE() != nil {
		minBound = formatNumber(*r.GTE())
	}

	if r.LT() != nil {
		maxBound = "(" + formatNumber(*r.LT())
	} else if r.LTE() != nil {
		maxBound = formatNumber(*r.LTE())
	}

	return fmt.Sprintf("@%s:[%s %s]", key, minBound, maxBound)
}

// buildGeoFilter renders a GEO radius clause; the backend expects lon before lat.
func buildGeoFilter(key string, c filter.Circle) string {
	return fmt.Sprintf("@%s:[%s %s %s km]",
		key, formatNumber(c.Lon), formatNumber(c.Lat), formatNumber(c.RadiusKm))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
