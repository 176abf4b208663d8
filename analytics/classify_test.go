package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-analytics/dataset"
)

func rowLevelRow(date string, actual, planned float64) dataset.Row {
	return dataset.Row{
		"Customer":                "Metro Retail",
		"Product_Group":           "Juices",
		"Flavor":                  "orange",
		"Size":                    "1 l",
		"date":                    date,
		"Actual_sale":             actual,
		"Planed_sales_from_start": planned,
	}
}

func yearWindow(year int) Window {
	return Window{Start: NewMonthID(year, 1), End: NewMonthID(year, 12)}
}

func TestClassifyBasics(t *testing.T) {
	c := NewClassifier(RowLevel, yearWindow(2024), Criteria{})

	cl, reason := c.Classify(rowLevelRow("2024-03-15", 120, 100))
	require.Equal(t, SkipNone, reason)
	assert.Equal(t, 2024, cl.Year)
	assert.Equal(t, 3, cl.Month)
	assert.Equal(t, 120.0, cl.Actual)
	assert.Equal(t, 100.0, cl.Planned)
	assert.Equal(t, 20.0, cl.Error)
	assert.False(t, cl.IsPromo)
	assert.Equal(t, 1, c.Kept())
}

func TestClassifySkipReasons(t *testing.T) {
	c := NewClassifier(RowLevel, yearWindow(2024), Criteria{Customers: []string{"Metro Retail"}})

	bad := rowLevelRow("", 1, 1)
	_, reason := c.Classify(bad)
	assert.Equal(t, SkipBadDate, reason)

	_, reason = c.Classify(rowLevelRow("garbage-date", 1, 1))
	assert.Equal(t, SkipBadDate, reason)

	_, reason = c.Classify(rowLevelRow("2023-03-15", 1, 1))
	assert.Equal(t, SkipOutOfWindow, reason)

	excluded := rowLevelRow("2024-03-15", 1, 1)
	excluded["Product_Group"] = "Canned Fruit"
	_, reason = c.Classify(excluded)
	assert.Equal(t, SkipExcludedGroup, reason)

	other := rowLevelRow("2024-03-15", 1, 1)
	other["Customer"] = "City Grocer"
	_, reason = c.Classify(other)
	assert.Equal(t, SkipFiltered, reason)

	counts := c.SkipCounts()
	assert.Equal(t, 2, counts["bad_date"])
	assert.Equal(t, 1, counts["out_of_window"])
	assert.Equal(t, 1, counts["excluded_product_group"])
	assert.Equal(t, 1, counts["filtered"])
	assert.Equal(t, 0, c.Kept())
}

func TestSkipCountsNilWhenClean(t *testing.T) {
	c := NewClassifier(RowLevel, yearWindow(2024), Criteria{})
	_, reason := c.Classify(rowLevelRow("2024-06-01", 1, 1))
	require.Equal(t, SkipNone, reason)
	assert.Nil(t, c.SkipCounts())
}

func TestClassifyTrimmingDivergence(t *testing.T) {
	padded := rowLevelRow("2024-03-15", 1, 1)
	padded["Product_Group"] = "  Canned Fruit  "

	// The summary schemas match exactly: the padded value is not the
	// excluded group.
	exact := NewClassifier(RowLevel, yearWindow(2024), Criteria{})
	_, reason := exact.Classify(padded)
	assert.Equal(t, SkipNone, reason)

	// The deep-dive schema trims before matching.
	trimmed := NewClassifier(RowLevelDeep, yearWindow(2024), Criteria{})
	_, reason = trimmed.Classify(padded)
	assert.Equal(t, SkipExcludedGroup, reason)
}

func TestClassifySiteFilterWithoutSiteColumn(t *testing.T) {
	// The row-level schema has no site dimension; a site filter can
	// therefore never match.
	c := NewClassifier(RowLevel, yearWindow(2024), Criteria{Sites: []string{"Plant North"}})
	_, reason := c.Classify(rowLevelRow("2024-03-15", 1, 1))
	assert.Equal(t, SkipFiltered, reason)
}

func TestClassifyPromotionFilter(t *testing.T) {
	promo := rowLevelRow("2024-03-15", 1, 1)
	promo["has_promotion"] = 1.0
	plain := rowLevelRow("2024-04-15", 1, 1)

	yes := true
	c := NewClassifier(RowLevel, yearWindow(2024), Criteria{HasPromotion: &yes})
	_, reason := c.Classify(promo)
	assert.Equal(t, SkipNone, reason)
	_, reason = c.Classify(plain)
	assert.Equal(t, SkipFiltered, reason)

	no := false
	c = NewClassifier(RowLevel, yearWindow(2024), Criteria{HasPromotion: &no})
	_, reason = c.Classify(promo)
	assert.Equal(t, SkipFiltered, reason)
	_, reason = c.Classify(plain)
	assert.Equal(t, SkipNone, reason)
}

func TestDetectPromo(t *testing.T) {
	tests := []struct {
		name string
		row  dataset.Row
		want bool
	}{
		{"numeric one", dataset.Row{"has_promotion": 1.0}, true},
		{"numeric zero", dataset.Row{"has_promotion": 0.0}, false},
		{"fractional truncates", dataset.Row{"has_promotion": 1.7}, true},
		{"below one truncates to zero", dataset.Row{"has_promotion": 0.9}, false},
		{"int one", dataset.Row{"has_promotion": 1}, true},
		{"numeric string", dataset.Row{"has_promotion": "1"}, true},
		{"string true", dataset.Row{"has_promotion": "true"}, true},
		{"string TRUE", dataset.Row{"has_promotion": "TRUE"}, true},
		{"string yes", dataset.Row{"has_promotion": "yes"}, true},
		{"string no", dataset.Row{"has_promotion": "no"}, false},
		{"empty string", dataset.Row{"has_promotion": ""}, false},
		{"nil value", dataset.Row{"has_promotion": nil}, false},
		{"column absent", dataset.Row{}, false},
		{"alias is_promo", dataset.Row{"is_promo": 1.0}, true},
		{"case-insensitive column", dataset.Row{"Has_Promotion": 1.0}, true},
		{"bool value", dataset.Row{"has_promotion": true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectPromo(tt.row))
		})
	}
}

func TestResolvePromoDays(t *testing.T) {
	assert.Equal(t, 14.0, resolvePromoDays(dataset.Row{"promotion_dt": 14.0}))
	assert.Equal(t, 7.0, resolvePromoDays(dataset.Row{"Promo_Days": "7"}))
	assert.Equal(t, 3.0, resolvePromoDays(dataset.Row{"duration": 3}))

	// Present but non-positive or unparsable values floor to one day.
	assert.Equal(t, 1.0, resolvePromoDays(dataset.Row{"promotion_dt": 0.0}))
	assert.Equal(t, 1.0, resolvePromoDays(dataset.Row{"promotion_dt": -5.0}))
	assert.Equal(t, 1.0, resolvePromoDays(dataset.Row{"promotion_dt": "n/a"}))

	// Absent values contribute nothing.
	assert.Equal(t, 0.0, resolvePromoDays(dataset.Row{}))
	assert.Equal(t, 0.0, resolvePromoDays(dataset.Row{"promotion_dt": ""}))
}

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		in        string
		year      int
		month     int
		ok        bool
	}{
		{"2024-03-15", 2024, 3, true},
		{"2024-03-15T10:30:00Z", 2024, 3, true},
		{"2024-03-15 10:30:00", 2024, 3, true},
		{"2024-12-01", 2024, 12, true},
		{"2024-3", 0, 0, false},
		{"", 0, 0, false},
		{"not-a-date", 0, 0, false},
	}

	for _, tt := range tests {
		y, m, ok := parseYearMonth(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.Equal(t, tt.year, y, "input %q", tt.in)
			assert.Equal(t, tt.month, m, "input %q", tt.in)
		}
	}
}

func TestDateYearMonthNativeTime(t *testing.T) {
	r := dataset.Row{"date": time.Date(2024, time.July, 9, 0, 0, 0, 0, time.UTC)}
	y, m, ok := dateYearMonth(r)
	require.True(t, ok)
	assert.Equal(t, 2024, y)
	assert.Equal(t, 7, m)
}

func TestPreAggregatedYearMonth(t *testing.T) {
	r := dataset.Row{"Billing_Date_year": 2024.0, "Billing_Date_month": 5.0}
	y, m, ok := PreAggregated.YearMonth(r)
	require.True(t, ok)
	assert.Equal(t, 2024, y)
	assert.Equal(t, 5, m)

	_, _, ok = PreAggregated.YearMonth(dataset.Row{"Billing_Date_year": 2024.0})
	assert.False(t, ok)
}
