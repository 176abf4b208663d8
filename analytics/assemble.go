/*
assemble.go - Response assembly

PURPOSE:
  Turns the aggregator's accumulators into the final summary record:
  computes the KPI scalar set with guarded denominators, sorts every
  time series ascending by month key, sorts leaderboards descending by
  value with first-seen tie order (stable sort), and applies the
  truncation caps (top 20 customers, top 10 products).

  This is a pure, side-effect-free transform executed once per request.

SEE ALSO:
  - aggregate.go: The accumulators consumed here
*/
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	topCustomers = 20
	topProducts  = 10
)

var hundred = decimal.NewFromInt(100)

// pctOf computes n/d*100 with the denominator guarded: non-positive
// denominators yield 0.
func pctOf(n, d decimal.Decimal) float64 {
	if d.Sign() <= 0 {
		return 0
	}
	return n.Div(d).Mul(hundred).InexactFloat64()
}

// ratioOf computes n/d with the same guard, without the percent scale.
func ratioOf(n decimal.Decimal, d int) float64 {
	if d <= 0 {
		return 0
	}
	return n.Div(decimal.NewFromInt(int64(d))).InexactFloat64()
}

// Result assembles the summary response from the accumulated state.
func (a *Aggregator) Result(meta Meta) Summary {
	meta.RecordCount = a.rows

	monthlyTS := a.monthlySeries()

	kpi := KPI{
		TotalQty:        a.actual.InexactFloat64(),
		MoMGrowth:       momGrowth(monthlyTS),
		PromoCoverage:   pctRows(a.promoRows, a.rows),
		AvgDiscountPct:  ratioOf(a.discount, a.promoRows),
		TotalActual:     a.actual.InexactFloat64(),

		TotalActiveItems: len(a.activeItems),
		AvgPromoDays:     ratioOf(a.promoDays, a.promoRows),
	}

	// Plan-accuracy metrics only exist for schemas that carry planned
	// figures; against a plan-less dataset every row would read as pure
	// error.
	if a.schema.HasPlanned {
		kpi.TotalPlanned = a.planned.InexactFloat64()
		kpi.WAPE = pctOf(a.absErr, a.actual)
		kpi.Bias = pctOf(a.signedErr, a.actual)
		kpi.UnderPlanVolume = a.underVol.InexactFloat64()
		kpi.UnderPlanRate = pctOf(a.underVol, a.actual)
		kpi.OverPlanVolume = a.overVol.InexactFloat64()
		kpi.OverPlanRate = pctOf(a.overVol, a.actual)
		kpi.TargetAchievementRate = pctOf(a.actual.Sub(a.planned), a.planned)
	}
	kpi.AvgDiscountPctChange, kpi.AvgPromoDaysChange = a.promoDeltas()

	s := Summary{
		KPI:         kpi,
		MonthlyTS:   monthlyTS,
		ByCustomer:  topGroups(a.customers, a.customerOrder, topCustomers),
		BySite:      topGroups(a.sites, a.siteOrder, 0),
		TopProducts: a.topProducts(),
		Meta:        meta,
	}
	if a.breakdown != "" {
		s.BreakdownTS = a.breakdownSeries()
	}
	return s
}

// pctRows computes a count percentage with a guarded denominator.
func pctRows(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// monthlySeries returns the monthly actual totals ascending by month key.
func (a *Aggregator) monthlySeries() []MonthlyPoint {
	keys := make([]monthKey, 0, len(a.monthly))
	for k := range a.monthly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].id() < keys[j].id() })

	series := make([]MonthlyPoint, 0, len(keys))
	for _, k := range keys {
		series = append(series, MonthlyPoint{Year: k.Year, Month: k.Month, Qty: a.monthly[k].InexactFloat64()})
	}
	return series
}

// momGrowth computes the month-over-month growth of the two latest
// populated months. Requires at least two points and a positive previous
// value; otherwise 0.
func momGrowth(series []MonthlyPoint) float64 {
	if len(series) < 2 {
		return 0
	}
	latest := series[len(series)-1].Qty
	previous := series[len(series)-2].Qty
	if previous <= 0 {
		return 0
	}
	return (latest - previous) / previous * 100
}

// promoDeltas compares the two chronologically latest populated
// promotion-months: relative percentage change for the average discount,
// absolute day difference for the average duration. Both 0 when fewer
// than two promotion-months exist.
func (a *Aggregator) promoDeltas() (discountChange, daysChange float64) {
	if len(a.promoMonths) < 2 {
		return 0, 0
	}

	keys := make([]monthKey, 0, len(a.promoMonths))
	for k := range a.promoMonths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].id() < keys[j].id() })

	curr := a.promoMonths[keys[len(keys)-1]]
	prev := a.promoMonths[keys[len(keys)-2]]

	currDisc := ratioOf(curr.Discount, curr.Count)
	prevDisc := ratioOf(prev.Discount, prev.Count)
	if prevDisc > 0 {
		discountChange = (currDisc - prevDisc) / prevDisc * 100
	}

	daysChange = ratioOf(curr.Days, curr.Count) - ratioOf(prev.Days, prev.Count)
	return discountChange, daysChange
}

// topGroups builds a leaderboard: descending by value, ties in first-seen
// order, truncated to limit (0 = no truncation).
func topGroups(totals map[string]decimal.Decimal, order []string, limit int) []GroupTotal {
	list := make([]GroupTotal, 0, len(order))
	for _, label := range order {
		list = append(list, GroupTotal{Label: label, Qty: totals[label].InexactFloat64()})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Qty > list[j].Qty })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

func (a *Aggregator) topProducts() []ProductTotal {
	list := make([]ProductTotal, 0, len(a.productOrder))
	for _, k := range a.productOrder {
		list = append(list, ProductTotal{
			ProductGroup: k.Group,
			Flavor:       k.Flavor,
			Size:         k.Size,
			Qty:          a.products[k].InexactFloat64(),
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Qty > list[j].Qty })
	if len(list) > topProducts {
		list = list[:topProducts]
	}
	return list
}

// breakdownSeries groups the breakdown accumulators by label (labels in
// first-seen order) with each label's points ascending by month.
func (a *Aggregator) breakdownSeries() []SeriesGroup {
	groups := make(map[string][]MonthlyPoint)
	var labelOrder []string

	for _, bk := range a.breakdownOrder {
		if _, seen := groups[bk.Label]; !seen {
			labelOrder = append(labelOrder, bk.Label)
		}
		groups[bk.Label] = append(groups[bk.Label], MonthlyPoint{
			Year:  bk.Year,
			Month: bk.Month,
			Qty:   a.breakdownAgg[bk].InexactFloat64(),
		})
	}

	series := make([]SeriesGroup, 0, len(labelOrder))
	for _, label := range labelOrder {
		points := groups[label]
		sort.Slice(points, func(i, j int) bool {
			return NewMonthID(points[i].Year, points[i].Month) < NewMonthID(points[j].Year, points[j].Month)
		})
		series = append(series, SeriesGroup{Label: label, Data: points})
	}
	return series
}
