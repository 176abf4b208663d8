/*
aggregate.go - Summary aggregation engine

PURPOSE:
  Accumulates classified rows into the KPI scalar sums and the keyed
  running totals behind every summary grouping: monthly series, customer
  and site leaderboards, top product tuples, the dynamic breakdown
  series, promotion-month statistics, and the distinct-item set.

PRECISION:
  Running sums use decimal.Decimal so totals are exact and independent
  of accumulation order; they are converted to float64 only when the
  response is assembled.

ORDERING:
  Go map iteration is randomized, but tie-breaking in the response is
  contractually "original key iteration order". The aggregator therefore
  records first-seen order per key space; identical inputs always
  produce identical output.

SEE ALSO:
  - classify.go: Produces the rows accumulated here
  - assemble.go: Turns the accumulators into the response record
*/
package analytics

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/sales-analytics/dataset"
)

type monthKey struct {
	Year  int
	Month int
}

func (k monthKey) id() MonthID { return NewMonthID(k.Year, k.Month) }

type productKey struct {
	Group  string
	Flavor string
	Size   string
}

type breakdownKey struct {
	Label string
	Year  int
	Month int
}

type promoMonthStats struct {
	Discount decimal.Decimal
	Days     decimal.Decimal
	Count    int
}

// Aggregator accumulates classified rows for a summary report.
type Aggregator struct {
	schema    Schema
	breakdown string

	rows      int
	promoRows int

	actual    decimal.Decimal
	planned   decimal.Decimal
	absErr    decimal.Decimal
	signedErr decimal.Decimal
	underVol  decimal.Decimal
	overVol   decimal.Decimal
	discount  decimal.Decimal
	promoDays decimal.Decimal

	monthly map[monthKey]decimal.Decimal

	customers     map[string]decimal.Decimal
	customerOrder []string
	sites         map[string]decimal.Decimal
	siteOrder     []string
	products      map[productKey]decimal.Decimal
	productOrder  []productKey

	breakdownAgg   map[breakdownKey]decimal.Decimal
	breakdownOrder []breakdownKey

	promoMonths map[monthKey]*promoMonthStats
	activeItems map[productKey]struct{}
}

// NewAggregator creates an aggregator for one summary request.
func NewAggregator(schema Schema, breakdown string) *Aggregator {
	return &Aggregator{
		schema:       schema,
		breakdown:    breakdown,
		monthly:      make(map[monthKey]decimal.Decimal),
		customers:    make(map[string]decimal.Decimal),
		sites:        make(map[string]decimal.Decimal),
		products:     make(map[productKey]decimal.Decimal),
		breakdownAgg: make(map[breakdownKey]decimal.Decimal),
		promoMonths:  make(map[monthKey]*promoMonthStats),
		activeItems:  make(map[productKey]struct{}),
	}
}

// Add folds one classified row into every accumulator.
func (a *Aggregator) Add(c Classified) {
	a.rows++

	actual := decimal.NewFromFloat(c.Actual)
	planned := decimal.NewFromFloat(c.Planned)
	diff := actual.Sub(planned)

	a.actual = a.actual.Add(actual)
	a.planned = a.planned.Add(planned)
	a.absErr = a.absErr.Add(diff.Abs())
	a.signedErr = a.signedErr.Add(diff)

	switch diff.Sign() {
	case 1:
		a.overVol = a.overVol.Add(diff)
	case -1:
		a.underVol = a.underVol.Add(diff.Abs())
	}

	mk := monthKey{Year: c.Year, Month: c.Month}
	a.monthly[mk] = a.monthly[mk].Add(actual)

	a.activeItems[productTuple(c.Row)] = struct{}{}

	if c.IsPromo {
		a.promoRows++
		disc := decimal.NewFromFloat(c.Discount)
		days := decimal.NewFromFloat(c.PromoDays)
		a.discount = a.discount.Add(disc)
		a.promoDays = a.promoDays.Add(days)

		stats, ok := a.promoMonths[mk]
		if !ok {
			stats = &promoMonthStats{}
			a.promoMonths[mk] = stats
		}
		stats.Discount = stats.Discount.Add(disc)
		stats.Days = stats.Days.Add(days)
		stats.Count++
	}

	if a.breakdown != "" {
		if label, ok := breakdownLabel(c.Row, a.breakdown); ok {
			bk := breakdownKey{Label: label, Year: c.Year, Month: c.Month}
			if _, seen := a.breakdownAgg[bk]; !seen {
				a.breakdownOrder = append(a.breakdownOrder, bk)
			}
			a.breakdownAgg[bk] = a.breakdownAgg[bk].Add(actual)
		}
	}

	cust := fieldOr(c.Row, "Customer", "Unknown")
	if _, seen := a.customers[cust]; !seen {
		a.customerOrder = append(a.customerOrder, cust)
	}
	a.customers[cust] = a.customers[cust].Add(actual)

	if a.schema.SiteColumn != "" {
		site := fieldOr(c.Row, a.schema.SiteColumn, "Unknown")
		if _, seen := a.sites[site]; !seen {
			a.siteOrder = append(a.siteOrder, site)
		}
		a.sites[site] = a.sites[site].Add(actual)
	}

	pk := productTuple(c.Row)
	if _, seen := a.products[pk]; !seen {
		a.productOrder = append(a.productOrder, pk)
	}
	a.products[pk] = a.products[pk].Add(actual)
}

// productTuple builds the (group, flavor, size) identity of a row.
func productTuple(row dataset.Row) productKey {
	return productKey{
		Group:  fieldOr(row, "Product_Group", "Unknown"),
		Flavor: fieldOr(row, "Flavor", "Unknown"),
		Size:   fieldOr(row, "Size", "Unknown"),
	}
}

// fieldOr renders a column's string value, defaulting when the column is
// absent.
func fieldOr(row dataset.Row, column, def string) string {
	v, ok := row[column]
	if !ok || v == nil {
		return def
	}
	return dataset.String(v)
}

// breakdownLabel computes the label a row contributes to under the
// active breakdown dimension. Rows lacking the needed field(s) are
// excluded from breakdown output only.
func breakdownLabel(row dataset.Row, breakdown string) (string, bool) {
	switch breakdown {
	case BreakdownProductGroup:
		label := dataset.String(row["Product_Group"])
		return label, label != ""
	case BreakdownFlavor:
		flavor := dataset.String(row["Flavor"])
		if flavor == "" {
			return "", false
		}
		return titleCase(flavor), true
	case BreakdownSize:
		size := strings.TrimSpace(dataset.String(row["Size"]))
		flavor := strings.TrimSpace(dataset.String(row["Flavor"]))
		if size == "" || flavor == "" {
			return "", false
		}
		return titleCase(flavor) + " " + titleCase(size), true
	default:
		return "", false
	}
}

// titleCase uppercases the first letter of every alphabetic run and
// lowercases the rest, so "coconut" -> "Coconut" and "350 ml" -> "350 Ml".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
		case isLetter:
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
