/*
schema.go - Source schema adapters

PURPOSE:
  The engine runs against two structurally different datasets and
  presents one response shape. Everything schema-specific is captured
  here as data on a Schema value: which columns carry time, quantity and
  plan, whether a site dimension exists, the default lookback window,
  and how strictly dimension values are matched.

THE TWO SCHEMAS:
  Pre-aggregated ("dashboard"): one row per already-summed slice, with
  an explicit Billing_Date_year/month pair, a Quantity_sum, a site
  dimension, and no planned figures.

  Row-level ("analytics"): one row per transaction, with a single date
  column, Actual_sale and Planed_sales_from_start quantities, and
  promotion metadata. No site dimension.

DIVERGENCES PRESERVED:
  The two report families historically differ in default lookback
  (24 months for summaries, 12 for the deep dive) and in whether string
  dimensions are trimmed before matching (the deep dive trims, the
  summaries match exactly). Both behaviors are kept per report type.

SEE ALSO:
  - classify.go: Uses the adapter during classification
*/
package analytics

import (
	"github.com/warp/sales-analytics/dataset"
)

// ExcludedProductGroup is unconditionally dropped from every analytical
// view. This is an invariant of the system, not a user-toggleable filter.
const ExcludedProductGroup = "Canned Fruit"

// Schema adapts one source dataset layout to the engine.
type Schema struct {
	// Name identifies the schema in logs and metadata.
	Name string

	// LookbackMonths is the default window length when the caller omits
	// the range start.
	LookbackMonths int

	// TrimStrings trims leading/trailing whitespace on string dimensions
	// before filter matching and the excluded-group check.
	TrimStrings bool

	// SiteColumn is the site dimension column, or "" when the schema has
	// no site dimension. A non-empty site filter against a schema without
	// the column matches no rows.
	SiteColumn string

	// DropExcludedRows controls how the filter-options view handles the
	// excluded product group: true drops its rows entirely, false keeps
	// them for cascading and hides only the group option itself.
	DropExcludedRows bool

	// HasPlanned reports whether the schema carries planned figures.
	HasPlanned bool

	// YearMonth extracts the row's calendar position.
	YearMonth func(dataset.Row) (year, month int, ok bool)

	// Actual extracts the row's actual quantity.
	Actual func(dataset.Row) float64

	// Planned extracts the row's planned quantity (0 when the schema has
	// no plan).
	Planned func(dataset.Row) float64
}

// PreAggregated is the legacy dashboard dataset: pre-summed quantities
// with explicit year/month columns and a site dimension.
var PreAggregated = Schema{
	Name:           "pre_aggregated",
	LookbackMonths: 24,
	SiteColumn:     "site_name_public",
	YearMonth: func(r dataset.Row) (int, int, bool) {
		y, okY := dataset.Float(r["Billing_Date_year"])
		m, okM := dataset.Float(r["Billing_Date_month"])
		if !okY || !okM {
			return 0, 0, false
		}
		return int(y), int(m), true
	},
	Actual: func(r dataset.Row) float64 {
		return dataset.FloatOrZero(r["Quantity_sum"])
	},
	Planned: func(dataset.Row) float64 { return 0 },
}

// RowLevel is the transaction-level dataset used by the analytics
// summary: per-row actual and planned quantities keyed by a date column.
var RowLevel = Schema{
	Name:             "row_level",
	LookbackMonths:   24,
	HasPlanned:       true,
	DropExcludedRows: true,
	YearMonth:        dateYearMonth,
	Actual: func(r dataset.Row) float64 {
		return dataset.FloatOrZero(r["Actual_sale"])
	},
	Planned: func(r dataset.Row) float64 {
		return dataset.FloatOrZero(r["Planed_sales_from_start"])
	},
}

// RowLevelDeep is the row-level schema as the deep dive reads it: a
// 12-month default window and trimmed dimension matching.
var RowLevelDeep = func() Schema {
	s := RowLevel
	s.Name = "row_level_deep"
	s.LookbackMonths = 12
	s.TrimStrings = true
	return s
}()
