/*
classify.go - Per-row classification

PURPOSE:
  Turns a raw dataset row into a classified row ready for aggregation, or
  a skip reason. Classification is a pure function of (row, schema,
  window, criteria); the Classifier just carries that tuple plus skip
  counters for the response metadata.

CLASSIFICATION ORDER:
  1. Resolve (year, month); unparsable dates skip the row
  2. Window membership (closed interval)
  3. Excluded product group (invariant, not a filter)
  4. Dimension set-membership filters
  5. Promotion flag filter
  6. Value extraction: actual, planned, promo flag, discount, promo days

DATE PARSING:
  Native time.Time values are used directly. Strings take a fast path:
  direct digit extraction of year ([0:4]) and month ([5:7]) from
  "YYYY-MM-DD..." prefixes, falling back to a full date parse of the
  portion before a 'T' or space separator.

ALIAS LISTS:
  The upstream exports are inconsistent about promotion column names, so
  each logical attribute resolves through an ordered candidate list,
  declared below as named configuration.

SKIP POLICY:
  Malformed single rows must never abort a report: every skip is silent,
  counted by reason, and surfaced in the response metadata.

SEE ALSO:
  - schema.go: Per-schema value extraction
  - aggregate.go: What happens to rows that survive
*/
package analytics

import (
	"strings"
	"time"

	"github.com/warp/sales-analytics/dataset"
)

// =============================================================================
// ALIAS CONFIGURATION - Ordered candidate column names per logical attribute
// =============================================================================

var (
	promoAliases    = []string{"has_promotion", "is_promo"}
	discountAliases = []string{"discount_pct", "discount"}
	promoDayAliases = []string{"promotion_dt", "Promo_Days", "promo_days", "duration", "promotion_days"}
)

// =============================================================================
// SKIP REASONS
// =============================================================================

// SkipReason tags why a row was excluded from a report. SkipNone means
// the row survived.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipBadDate       SkipReason = "bad_date"
	SkipOutOfWindow   SkipReason = "out_of_window"
	SkipExcludedGroup SkipReason = "excluded_product_group"
	SkipFiltered      SkipReason = "filtered"
)

// Classified is a row that passed every filter, augmented with its
// resolved calendar position and per-row figures.
type Classified struct {
	Row dataset.Row

	Year  int
	Month int

	Actual  float64
	Planned float64
	// Error is actual minus planned.
	Error float64

	IsPromo  bool
	Discount float64
	// PromoDays is the promotion duration in days, floored to 1 when the
	// source value is present but non-positive. Zero for non-promoted
	// rows and when no duration column resolves.
	PromoDays float64
}

// =============================================================================
// CLASSIFIER
// =============================================================================

type dimensionFilter struct {
	column string
	values map[string]struct{}
}

// Classifier applies window, exclusion and filter rules row by row and
// counts skips by reason.
type Classifier struct {
	schema   Schema
	window   Window
	criteria Criteria

	dims  []dimensionFilter
	skips map[SkipReason]int
	kept  int
}

// NewClassifier builds a classifier for one report request.
func NewClassifier(schema Schema, window Window, criteria Criteria) *Classifier {
	c := &Classifier{
		schema:   schema,
		window:   window,
		criteria: criteria,
		skips:    make(map[SkipReason]int),
	}

	add := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		// A filter on a dimension the schema lacks (column == "") keeps
		// the empty column name: no row carries it, so nothing matches.
		c.dims = append(c.dims, dimensionFilter{column: column, values: set})
	}

	add("Customer", criteria.Customers)
	add(schema.SiteColumn, criteria.Sites)
	add("Product_Group", criteria.ProductGroups)
	add("Size", criteria.Sizes)
	add("Flavor", criteria.Flavors)
	add("MechGroup", criteria.MechGroups)

	return c
}

// Classify returns the classified row, or the reason it was skipped.
func (c *Classifier) Classify(row dataset.Row) (Classified, SkipReason) {
	cl, reason := c.classify(row)
	if reason != SkipNone {
		c.skips[reason]++
		return Classified{}, reason
	}
	c.kept++
	return cl, SkipNone
}

func (c *Classifier) classify(row dataset.Row) (Classified, SkipReason) {
	year, month, ok := c.schema.YearMonth(row)
	if !ok {
		return Classified{}, SkipBadDate
	}
	if !c.window.Contains(NewMonthID(year, month)) {
		return Classified{}, SkipOutOfWindow
	}

	if c.dimValue(row, "Product_Group") == ExcludedProductGroup {
		return Classified{}, SkipExcludedGroup
	}

	for _, dim := range c.dims {
		if _, ok := dim.values[c.dimValue(row, dim.column)]; !ok {
			return Classified{}, SkipFiltered
		}
	}

	isPromo := detectPromo(row)
	if c.criteria.HasPromotion != nil && isPromo != *c.criteria.HasPromotion {
		return Classified{}, SkipFiltered
	}

	actual := c.schema.Actual(row)
	planned := c.schema.Planned(row)

	cl := Classified{
		Row:     row,
		Year:    year,
		Month:   month,
		Actual:  actual,
		Planned: planned,
		Error:   actual - planned,
		IsPromo: isPromo,
	}

	if disc, ok := dataset.Resolve(row, discountAliases); ok {
		cl.Discount = dataset.FloatOrZero(disc)
	}
	if isPromo {
		cl.PromoDays = resolvePromoDays(row)
	}

	return cl, SkipNone
}

// dimValue renders a dimension's value for matching: string form, with
// whitespace trimmed when the schema asks for it.
func (c *Classifier) dimValue(row dataset.Row, column string) string {
	v := dataset.String(row[column])
	if c.schema.TrimStrings {
		v = strings.TrimSpace(v)
	}
	return v
}

// Kept returns the number of rows that survived classification.
func (c *Classifier) Kept() int { return c.kept }

// SkipCounts returns skip counters keyed by reason, or nil when nothing
// was skipped for that reason.
func (c *Classifier) SkipCounts() map[string]int {
	if len(c.skips) == 0 {
		return nil
	}
	out := make(map[string]int, len(c.skips))
	for reason, n := range c.skips {
		out[string(reason)] = n
	}
	return out
}

// =============================================================================
// ATTRIBUTE RESOLUTION
// =============================================================================

// detectPromo resolves the promotion flag: the first alias present is
// parsed as numeric truthy (== 1 after truncation), falling back to
// case-insensitive string membership in {"true", "1", "yes"}.
func detectPromo(row dataset.Row) bool {
	raw, ok := dataset.Resolve(row, promoAliases)
	if !ok || dataset.IsEmpty(raw) {
		return false
	}
	if f, ok := dataset.Float(raw); ok {
		return int(f) == 1
	}
	switch strings.ToLower(strings.TrimSpace(dataset.String(raw))) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// resolvePromoDays resolves the promotion duration for a promoted row.
// A resolved value that is non-positive (or unparsable) is floored to
// 1.0, a day-granularity assumption; an absent value contributes 0.
func resolvePromoDays(row dataset.Row) float64 {
	raw, ok := dataset.Resolve(row, promoDayAliases)
	if !ok || dataset.IsEmpty(raw) {
		return 0
	}
	days := dataset.FloatOrZero(raw)
	if days <= 0 {
		days = 1.0
	}
	return days
}

// =============================================================================
// DATE PARSING
// =============================================================================

// dateYearMonth extracts (year, month) from the row-level schema's date
// column.
func dateYearMonth(r dataset.Row) (int, int, bool) {
	v, ok := r["date"]
	if !ok || dataset.IsEmpty(v) {
		return 0, 0, false
	}
	if t, ok := v.(time.Time); ok {
		return t.Year(), int(t.Month()), true
	}
	return parseYearMonth(dataset.String(v))
}

// parseYearMonth parses "YYYY-MM-DD..." strings. Fast path: direct digit
// extraction of the year and month character ranges. Fallback: full
// parse of the portion before a 'T' or space separator.
func parseYearMonth(s string) (int, int, bool) {
	if len(s) < 7 {
		return 0, 0, false
	}

	if year, ok := atoiDigits(s[:4]); ok {
		if month, ok := atoiDigits(s[5:7]); ok {
			return year, month, true
		}
	}

	datePart := s
	if i := strings.IndexAny(datePart, "T "); i >= 0 {
		datePart = datePart[:i]
	}
	t, err := time.Parse("2006-01-02", datePart)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), int(t.Month()), true
}

// atoiDigits parses a string that must be all ASCII digits.
func atoiDigits(s string) (int, bool) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
