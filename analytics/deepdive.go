/*
deepdive.go - Ranking & distribution builder

PURPOSE:
  The accuracy deep dive works from per-row error values: a fixed
  8-bucket error-percentage histogram, capped top-N ranking lists by
  error magnitude, accuracy heatmaps per customer and per product, a
  monthly stability trend (WAPE/Bias) with its sales counterpart, and a
  capped planned-vs-actual scatter sample.

CONTRACT POINTS:
  - Histogram buckets are half-open on the lower bound; rows with
    planned <= 0 score 0% and land in the [0,10) bucket. Every surviving
    row falls into exactly one bucket.
  - The ranking lists are cut from ONE global sort, descending by
    absolute error: top 50 with error > 0 (actual exceeded plan) and top
    50 with error < 0, each preserving the global order.
  - The scatter sample is the first 500 points in processing order;
    simple truncation, no resampling.

SEE ALSO:
  - aggregate.go: The summary-side accumulators
  - assemble.go: Shared KPI helpers
*/
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/sales-analytics/dataset"
)

const (
	rankingCap = 50
	scatterCap = 500
)

// errorBinNames are the fixed histogram buckets, in display order.
var errorBinNames = [8]string{
	"< -30%",
	"-30% to -20%",
	"-20% to -10%",
	"-10% to 0%",
	"0% to 10%",
	"10% to 20%",
	"20% to 30%",
	"> 30%",
}

// errorBinIndex places an error percentage in exactly one bucket.
func errorBinIndex(errPct float64) int {
	switch {
	case errPct < -30:
		return 0
	case errPct < -20:
		return 1
	case errPct < -10:
		return 2
	case errPct < 0:
		return 3
	case errPct < 10:
		return 4
	case errPct < 20:
		return 5
	case errPct < 30:
		return 6
	default:
		return 7
	}
}

type cellKey struct {
	Label string
	Month string
}

type accuracyCell struct {
	Actual  decimal.Decimal
	Planned decimal.Decimal
	AbsErr  decimal.Decimal
	Err     decimal.Decimal
}

func (c *accuracyCell) add(actual, planned, diff decimal.Decimal) {
	c.Actual = c.Actual.Add(actual)
	c.Planned = c.Planned.Add(planned)
	c.AbsErr = c.AbsErr.Add(diff.Abs())
	c.Err = c.Err.Add(diff)
}

// DeepDiveBuilder accumulates classified rows for the accuracy deep dive.
type DeepDiveBuilder struct {
	breakdown string

	rows int

	actual    decimal.Decimal
	planned   decimal.Decimal
	absErr    decimal.Decimal
	signedErr decimal.Decimal
	underVol  decimal.Decimal
	overVol   decimal.Decimal

	hmCustomer      map[cellKey]*accuracyCell
	hmCustomerOrder []cellKey
	hmProduct       map[cellKey]*accuracyCell
	hmProductOrder  []cellKey

	monthly map[monthKey]*accuracyCell

	scatter []ScatterPoint
	bins    [8]int
	ranking []RankingItem
}

// NewDeepDiveBuilder creates a builder for one deep-dive request.
func NewDeepDiveBuilder(breakdown string) *DeepDiveBuilder {
	return &DeepDiveBuilder{
		breakdown:  breakdown,
		hmCustomer: make(map[cellKey]*accuracyCell),
		hmProduct:  make(map[cellKey]*accuracyCell),
		monthly:    make(map[monthKey]*accuracyCell),
	}
}

// Add folds one classified row into every deep-dive structure.
func (b *DeepDiveBuilder) Add(c Classified) {
	b.rows++

	actual := decimal.NewFromFloat(c.Actual)
	planned := decimal.NewFromFloat(c.Planned)
	diff := actual.Sub(planned)

	b.actual = b.actual.Add(actual)
	b.planned = b.planned.Add(planned)
	b.absErr = b.absErr.Add(diff.Abs())
	b.signedErr = b.signedErr.Add(diff)

	switch diff.Sign() {
	case 1:
		b.overVol = b.overVol.Add(diff)
	case -1:
		b.underVol = b.underVol.Add(diff.Abs())
	}

	monthLabel := MonthLabel(c.Year, c.Month)
	customer := fieldOr(c.Row, "Customer", "Unknown")
	product := b.productLabel(c.Row)

	b.heatCell(b.hmCustomer, &b.hmCustomerOrder, cellKey{customer, monthLabel}).add(actual, planned, diff)
	b.heatCell(b.hmProduct, &b.hmProductOrder, cellKey{product, monthLabel}).add(actual, planned, diff)

	mk := monthKey{Year: c.Year, Month: c.Month}
	cell, ok := b.monthly[mk]
	if !ok {
		cell = &accuracyCell{}
		b.monthly[mk] = cell
	}
	cell.add(actual, planned, diff)

	b.scatter = append(b.scatter, ScatterPoint{
		Planned: c.Planned,
		Actual:  c.Actual,
		IsPromo: c.IsPromo,
		Label:   product + " - " + customer,
	})

	errPct := 0.0
	if c.Planned > 0 {
		errPct = c.Error / c.Planned * 100
	}
	b.bins[errorBinIndex(errPct)]++

	b.ranking = append(b.ranking, RankingItem{
		Date:            monthLabel,
		Customer:        customer,
		SKU:             fieldOr(c.Row, "Sku", "-"),
		ProductGroup:    product,
		Flavor:          fieldOr(c.Row, "Flavor", "-"),
		Size:            fieldOr(c.Row, "Size", "-"),
		Planned:         c.Planned,
		Actual:          c.Actual,
		Error:           c.Error,
		AbsError:        abs(c.Error),
		UnderOverVolume: c.Error,
		HasPromotion:    c.IsPromo,
		MechGroup:       fieldOr(c.Row, "MechGroup", ""),
		DiscountPct:     c.Discount,
	})
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func (b *DeepDiveBuilder) heatCell(m map[cellKey]*accuracyCell, order *[]cellKey, k cellKey) *accuracyCell {
	cell, ok := m[k]
	if !ok {
		cell = &accuracyCell{}
		m[k] = cell
		*order = append(*order, k)
	}
	return cell
}

// productLabel picks the product heatmap dimension: the title-cased
// flavor when the flavor breakdown is active, else the product group.
func (b *DeepDiveBuilder) productLabel(row dataset.Row) string {
	if b.breakdown == BreakdownFlavor {
		if flavor := dataset.String(row["Flavor"]); flavor != "" {
			return titleCase(flavor)
		}
		return "Unknown"
	}
	return fieldOr(row, "Product_Group", "Unknown")
}

// Result assembles the deep-dive response from the accumulated state.
func (b *DeepDiveBuilder) Result(meta Meta) DeepDive {
	meta.RecordCount = b.rows

	kpi := KPI{
		TotalQty:        b.actual.InexactFloat64(),
		TotalActual:     b.actual.InexactFloat64(),
		TotalPlanned:    b.planned.InexactFloat64(),
		WAPE:            pctOf(b.absErr, b.actual),
		Bias:            pctOf(b.signedErr, b.actual),
		UnderPlanVolume: b.underVol.InexactFloat64(),
		UnderPlanRate:   pctOf(b.underVol, b.actual),
		OverPlanVolume:  b.overVol.InexactFloat64(),
		OverPlanRate:    pctOf(b.overVol, b.actual),

		TargetAchievementRate: pctOf(b.actual.Sub(b.planned), b.planned),
	}

	underPlan, overPlan := b.rankings()
	stability, sales := b.trends()

	scatter := b.scatter
	if len(scatter) > scatterCap {
		scatter = scatter[:scatterCap]
	}
	if scatter == nil {
		scatter = []ScatterPoint{}
	}

	dist := make([]ErrorBin, len(errorBinNames))
	for i, name := range errorBinNames {
		dist[i] = ErrorBin{Bin: name, Count: b.bins[i]}
	}

	return DeepDive{
		KPI:              kpi,
		HeatmapCustomer:  heatmapList(b.hmCustomer, b.hmCustomerOrder),
		HeatmapProduct:   heatmapList(b.hmProduct, b.hmProductOrder),
		RankingUnderPlan: underPlan,
		RankingOverPlan:  overPlan,
		ScatterData:      scatter,
		ErrorDist:        dist,
		StabilityTrend:   stability,
		SalesTrend:       sales,
		Meta:             meta,
	}
}

// rankings sorts all items once, descending by absolute error, then cuts
// the two sign-filtered top-50 lists preserving that global order.
func (b *DeepDiveBuilder) rankings() (underPlan, overPlan []RankingItem) {
	items := make([]RankingItem, len(b.ranking))
	copy(items, b.ranking)
	sort.SliceStable(items, func(i, j int) bool { return items[i].AbsError > items[j].AbsError })

	underPlan = []RankingItem{}
	overPlan = []RankingItem{}
	for _, item := range items {
		switch {
		case item.Error > 0 && len(underPlan) < rankingCap:
			underPlan = append(underPlan, item)
		case item.Error < 0 && len(overPlan) < rankingCap:
			overPlan = append(overPlan, item)
		}
		if len(underPlan) == rankingCap && len(overPlan) == rankingCap {
			break
		}
	}
	return underPlan, overPlan
}

func heatmapList(m map[cellKey]*accuracyCell, order []cellKey) []HeatmapCell {
	out := make([]HeatmapCell, 0, len(order))
	for _, k := range order {
		cell := m[k]
		out = append(out, HeatmapCell{
			Row:     k.Label,
			Month:   k.Month,
			WAPE:    pctOf(cell.AbsErr, cell.Actual),
			Bias:    pctOf(cell.Err, cell.Actual),
			Actual:  cell.Actual.InexactFloat64(),
			Planned: cell.Planned.InexactFloat64(),
			Error:   cell.Err.InexactFloat64(),
		})
	}
	return out
}

// trends builds the stability (WAPE/Bias) and sales (actual/planned)
// series from the monthly cells, ascending by month.
func (b *DeepDiveBuilder) trends() (stability, sales []SeriesGroup) {
	keys := make([]monthKey, 0, len(b.monthly))
	for k := range b.monthly {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].id() < keys[j].id() })

	wapePts := make([]MonthlyPoint, 0, len(keys))
	biasPts := make([]MonthlyPoint, 0, len(keys))
	actualPts := make([]MonthlyPoint, 0, len(keys))
	plannedPts := make([]MonthlyPoint, 0, len(keys))

	for _, k := range keys {
		cell := b.monthly[k]
		wapePts = append(wapePts, MonthlyPoint{Year: k.Year, Month: k.Month, Qty: pctOf(cell.AbsErr, cell.Actual)})
		biasPts = append(biasPts, MonthlyPoint{Year: k.Year, Month: k.Month, Qty: pctOf(cell.Err, cell.Actual)})
		actualPts = append(actualPts, MonthlyPoint{Year: k.Year, Month: k.Month, Qty: cell.Actual.InexactFloat64()})
		plannedPts = append(plannedPts, MonthlyPoint{Year: k.Year, Month: k.Month, Qty: cell.Planned.InexactFloat64()})
	}

	stability = []SeriesGroup{
		{Label: "WAPE", Data: wapePts},
		{Label: "Bias", Data: biasPts},
	}
	sales = []SeriesGroup{
		{Label: "Actual Sales", Data: actualPts},
		{Label: "Planned Sales", Data: plannedPts},
	}
	return stability, sales
}
