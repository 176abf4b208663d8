package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-analytics/dataset"
)

var testNow = time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

func query2024() Query {
	return Query{Window: WindowRequest{YearFrom: 2024, MonthFrom: 1, YearTo: 2024, MonthTo: 12}}
}

func TestSummaryAccuracyMetrics(t *testing.T) {
	rows := []dataset.Row{
		rowLevelRow("2024-03-10", 50, 40),
	}

	s := BuildSummary(rows, RowLevel, query2024(), testNow)

	assert.Equal(t, 50.0, s.KPI.TotalActual)
	assert.Equal(t, 40.0, s.KPI.TotalPlanned)
	assert.Equal(t, 20.0, s.KPI.WAPE)
	assert.Equal(t, 20.0, s.KPI.Bias)
	assert.Equal(t, 10.0, s.KPI.OverPlanVolume)
	assert.Equal(t, 20.0, s.KPI.OverPlanRate)
	assert.Equal(t, 0.0, s.KPI.UnderPlanVolume)
	assert.InDelta(t, 25.0, s.KPI.TargetAchievementRate, 1e-9)
	assert.Equal(t, 1, s.Meta.RecordCount)
}

func TestSummaryBiasSignsCancelWAPEDoesNot(t *testing.T) {
	rows := []dataset.Row{
		rowLevelRow("2024-03-10", 90, 100),  // under plan by 10
		rowLevelRow("2024-03-11", 110, 100), // over plan by 10
	}

	s := BuildSummary(rows, RowLevel, query2024(), testNow)

	assert.Equal(t, 0.0, s.KPI.Bias)
	assert.InDelta(t, 20.0/200.0*100, s.KPI.WAPE, 1e-9)
	assert.Equal(t, 10.0, s.KPI.UnderPlanVolume)
	assert.Equal(t, 10.0, s.KPI.OverPlanVolume)
	assert.GreaterOrEqual(t, s.KPI.WAPE, abs(s.KPI.Bias))
}

func TestSummaryZeroActualGuardsDenominators(t *testing.T) {
	rows := []dataset.Row{
		rowLevelRow("2024-03-10", 0, 100),
	}

	s := BuildSummary(rows, RowLevel, query2024(), testNow)

	assert.Equal(t, 0.0, s.KPI.WAPE)
	assert.Equal(t, 0.0, s.KPI.Bias)
	assert.Equal(t, 0.0, s.KPI.UnderPlanRate)
	assert.InDelta(t, -100.0, s.KPI.TargetAchievementRate, 1e-9)
}

func TestSummaryMonthlySeriesSortedAscending(t *testing.T) {
	rows := []dataset.Row{
		rowLevelRow("2024-09-01", 30, 0),
		rowLevelRow("2024-02-01", 10, 0),
		rowLevelRow("2024-02-15", 5, 0),
		rowLevelRow("2024-05-01", 20, 0),
	}

	s := BuildSummary(rows, RowLevel, query2024(), testNow)

	require.Len(t, s.MonthlyTS, 3)
	assert.Equal(t, MonthlyPoint{Year: 2024, Month: 2, Qty: 15}, s.MonthlyTS[0])
	assert.Equal(t, MonthlyPoint{Year: 2024, Month: 5, Qty: 20}, s.MonthlyTS[1])
	assert.Equal(t, MonthlyPoint{Year: 2024, Month: 9, Qty: 30}, s.MonthlyTS[2])
}

func TestSummaryMoMGrowth(t *testing.T) {
	rows := []dataset.Row{
		rowLevelRow("2024-06-01", 100, 0),
		rowLevelRow("2024-07-01", 125, 0),
	}

	s := BuildSummary(rows, RowLevel, query2024(), testNow)
	assert.InDelta(t, 25.0, s.KPI.MoMGrowth, 1e-9)

	// A single populated month has no growth figure.
	s = BuildSummary(rows[:1], RowLevel, query2024(), testNow)
	assert.Equal(t, 0.0, s.KPI.MoMGrowth)
}

func TestSummaryPromoMetrics(t *testing.T) {
	promo1 := rowLevelRow("2024-03-01", 10, 10)
	promo1["has_promotion"] = 1.0
	promo1["discount_pct"] = 20.0
	promo1["promotion_dt"] = 7.0

	promo2 := rowLevelRow("2024-04-01", 10, 10)
	promo2["has_promotion"] = 1.0
	promo2["discount_pct"] = 30.0
	promo2["promotion_dt"] = 14.0

	plain := rowLevelRow("2024-04-02", 10, 10)

	s := BuildSummary([]dataset.Row{promo1, promo2, plain}, RowLevel, query2024(), testNow)

	assert.InDelta(t, 2.0/3.0*100, s.KPI.PromoCoverage, 1e-9)
	assert.InDelta(t, 25.0, s.KPI.AvgDiscountPct, 1e-9)
	assert.InDelta(t, 10.5, s.KPI.AvgPromoDays, 1e-9)

	// Promo deltas compare the two latest promotion-months: discount
	// 20 -> 30 is +50% relative, days 7 -> 14 is +7 absolute.
	assert.InDelta(t, 50.0, s.KPI.AvgDiscountPctChange, 1e-9)
	assert.InDelta(t, 7.0, s.KPI.AvgPromoDaysChange, 1e-9)
}

func TestSummaryPromoDeltasNeedTwoMonths(t *testing.T) {
	promo := rowLevelRow("2024-03-01", 10, 10)
	promo["has_promotion"] = 1.0
	promo["discount_pct"] = 20.0

	s := BuildSummary([]dataset.Row{promo}, RowLevel, query2024(), testNow)
	assert.Equal(t, 0.0, s.KPI.AvgDiscountPctChange)
	assert.Equal(t, 0.0, s.KPI.AvgPromoDaysChange)
}

func TestSummaryActiveItems(t *testing.T) {
	a := rowLevelRow("2024-03-01", 1, 1)
	b := rowLevelRow("2024-03-02", 1, 1) // same product tuple as a
	c := rowLevelRow("2024-03-03", 1, 1)
	c["Flavor"] = "apple"

	s := BuildSummary([]dataset.Row{a, b, c}, RowLevel, query2024(), testNow)
	assert.Equal(t, 2, s.KPI.TotalActiveItems)
}

func TestSummaryCustomerPartition(t *testing.T) {
	rows := []dataset.Row{
		rowLevelRow("2024-03-01", 10, 0),
		rowLevelRow("2024-03-02", 20, 0),
		rowLevelRow("2024-04-01", 30, 0),
	}
	rows[1]["Customer"] = "City Grocer"

	s := BuildSummary(rows, RowLevel, query2024(), testNow)

	var total float64
	for _, g := range s.ByCustomer {
		total += g.Qty
	}
	assert.Equal(t, s.KPI.TotalQty, total, "customer totals partition the grand total")
	require.Len(t, s.ByCustomer, 2)
	assert.Equal(t, GroupTotal{Label: "Metro Retail", Qty: 40}, s.ByCustomer[0])
	assert.Equal(t, GroupTotal{Label: "City Grocer", Qty: 20}, s.ByCustomer[1])
}

func TestSummaryBreakdownLabels(t *testing.T) {
	r := rowLevelRow("2024-03-01", 10, 0)
	r["Flavor"] = "coconut"
	r["Size"] = "350 ml"

	q := query2024()
	q.Criteria.Breakdown = BreakdownSize
	s := BuildSummary([]dataset.Row{r}, RowLevel, q, testNow)

	require.Len(t, s.BreakdownTS, 1)
	assert.Equal(t, "Coconut 350 Ml", s.BreakdownTS[0].Label)
	require.Len(t, s.BreakdownTS[0].Data, 1)
	assert.Equal(t, MonthlyPoint{Year: 2024, Month: 3, Qty: 10}, s.BreakdownTS[0].Data[0])

	q.Criteria.Breakdown = BreakdownFlavor
	s = BuildSummary([]dataset.Row{r}, RowLevel, q, testNow)
	require.Len(t, s.BreakdownTS, 1)
	assert.Equal(t, "Coconut", s.BreakdownTS[0].Label)

	q.Criteria.Breakdown = BreakdownProductGroup
	s = BuildSummary([]dataset.Row{r}, RowLevel, q, testNow)
	require.Len(t, s.BreakdownTS, 1)
	assert.Equal(t, "Juices", s.BreakdownTS[0].Label, "product group labels are not title-cased")
}

func TestSummaryBreakdownSkipsRowsMissingFields(t *testing.T) {
	complete := rowLevelRow("2024-03-01", 10, 0)
	noFlavor := rowLevelRow("2024-03-02", 5, 0)
	noFlavor["Flavor"] = ""

	q := query2024()
	q.Criteria.Breakdown = BreakdownFlavor
	s := BuildSummary([]dataset.Row{complete, noFlavor}, RowLevel, q, testNow)

	// The incomplete row still counts toward the totals, just not the
	// breakdown series.
	assert.Equal(t, 15.0, s.KPI.TotalQty)
	require.Len(t, s.BreakdownTS, 1)
	assert.Equal(t, "Orange", s.BreakdownTS[0].Label)
}

func TestSummaryNoBreakdownOmitsSeries(t *testing.T) {
	s := BuildSummary([]dataset.Row{rowLevelRow("2024-03-01", 1, 1)}, RowLevel, query2024(), testNow)
	assert.Nil(t, s.BreakdownTS)
}

func TestSummaryTopProductsCap(t *testing.T) {
	var rows []dataset.Row
	for i := 0; i < 15; i++ {
		r := rowLevelRow("2024-03-01", float64(i+1), 0)
		r["Flavor"] = string(rune('a' + i))
		rows = append(rows, r)
	}

	s := BuildSummary(rows, RowLevel, query2024(), testNow)

	require.Len(t, s.TopProducts, 10)
	assert.Equal(t, 15.0, s.TopProducts[0].Qty, "sorted descending by quantity")
	assert.Equal(t, 6.0, s.TopProducts[9].Qty)
}

func TestSummaryPreAggregatedSchema(t *testing.T) {
	rows := []dataset.Row{
		{
			"Customer":           "Metro Retail",
			"site_name_public":   "Plant North",
			"Product_Group":      "Juices",
			"Flavor":             "orange",
			"Size":               "1 l",
			"Billing_Date_year":  2024.0,
			"Billing_Date_month": 4.0,
			"Quantity_sum":       500.0,
		},
	}

	s := BuildSummary(rows, PreAggregated, query2024(), testNow)

	assert.Equal(t, 500.0, s.KPI.TotalQty)
	assert.Equal(t, 0.0, s.KPI.TotalPlanned, "pre-aggregated rows carry no plan")
	assert.Equal(t, 0.0, s.KPI.WAPE, "plan-accuracy metrics are suppressed without planned figures")
	assert.Equal(t, 0.0, s.KPI.OverPlanVolume)
	require.Len(t, s.BySite, 1)
	assert.Equal(t, GroupTotal{Label: "Plant North", Qty: 500}, s.BySite[0])
}

func TestSummaryIdempotent(t *testing.T) {
	rows := []dataset.Row{
		rowLevelRow("2024-02-01", 10, 12),
		rowLevelRow("2024-03-01", 30, 25),
		rowLevelRow("2024-03-02", 7, 7),
	}
	rows[1]["Customer"] = "City Grocer"

	first := BuildSummary(rows, RowLevel, query2024(), testNow)
	second := BuildSummary(rows, RowLevel, query2024(), testNow)
	assert.Equal(t, first, second)
}

func TestSummaryNonFiniteQuantitiesReadAsZero(t *testing.T) {
	// Some drivers return Infinity/NaN for float columns; those values
	// must fall under the missing-numeric-means-zero policy, not crash
	// the report.
	inf := rowLevelRow("2024-03-01", 0, 0)
	inf["Actual_sale"] = math.Inf(1)
	inf["Planed_sales_from_start"] = math.NaN()
	normal := rowLevelRow("2024-03-02", 50, 40)

	s := BuildSummary([]dataset.Row{inf, normal}, RowLevel, query2024(), testNow)

	assert.Equal(t, 2, s.Meta.RecordCount)
	assert.Equal(t, 50.0, s.KPI.TotalActual)
	assert.Equal(t, 40.0, s.KPI.TotalPlanned)
	assert.Equal(t, 20.0, s.KPI.WAPE)

	dd := BuildDeepDive([]dataset.Row{inf, normal}, query2024(), testNow)
	assert.Equal(t, 2, dd.Meta.RecordCount)
	assert.Equal(t, 50.0, dd.KPI.TotalActual)
}

func TestSummaryFilterMonotonicity(t *testing.T) {
	var rows []dataset.Row
	customers := []string{"Metro Retail", "City Grocer"}
	groups := []string{"Juices", "Nectars"}
	flavors := []string{"orange", "peach"}
	sizes := []string{"1 l", "330 ml"}
	for i := 0; i < 40; i++ {
		r := rowLevelRow("2024-03-01", float64(i+1), float64(i))
		r["Customer"] = customers[i%2]
		r["Product_Group"] = groups[i%3%2]
		r["Flavor"] = flavors[i%5%2]
		r["Size"] = sizes[i%7%2]
		if i%4 == 0 {
			r["MechGroup"] = "Leaflet"
		}
		rows = append(rows, r)
	}

	// Constrain one more dimension at each step; the surviving row count
	// must never increase.
	q := query2024()
	prev := BuildSummary(rows, RowLevel, q, testNow).Meta.RecordCount
	assert.Equal(t, len(rows), prev)

	steps := []func(*Criteria){
		func(c *Criteria) { c.Customers = []string{"Metro Retail"} },
		func(c *Criteria) { c.ProductGroups = []string{"Juices"} },
		func(c *Criteria) { c.Flavors = []string{"orange"} },
		func(c *Criteria) { c.Sizes = []string{"1 l"} },
		func(c *Criteria) { c.MechGroups = []string{"Leaflet"} },
	}
	for i, step := range steps {
		step(&q.Criteria)
		count := BuildSummary(rows, RowLevel, q, testNow).Meta.RecordCount
		assert.LessOrEqual(t, count, prev, "after constraint %d", i+1)
		prev = count
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Coconut", titleCase("coconut"))
	assert.Equal(t, "Coconut 350 Ml", titleCase("coconut 350 ml"))
	assert.Equal(t, "Multi-Pack", titleCase("multi-pack"))
	assert.Equal(t, "Abc", titleCase("aBC"))
	assert.Equal(t, "", titleCase(""))
}
