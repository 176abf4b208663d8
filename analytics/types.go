/*
types.go - Aggregation result types

PURPOSE:
  The response-shaped output records of the engine. These are the
  observable contract: field names, sort orders and truncation caps are
  all part of the API, not incidental.

NAMING CONVENTION:
  JSON tags follow the upstream dashboard contract (snake_case).

SEE ALSO:
  - aggregate.go: Fills the summary shapes
  - deepdive.go: Fills the deep-dive shapes
*/
package analytics

import "time"

// KPI is the scalar metric record shared by every report.
type KPI struct {
	TotalQty       float64 `json:"total_qty"`
	MoMGrowth      float64 `json:"mom_growth"`
	PromoCoverage  float64 `json:"promo_coverage"`
	AvgDiscountPct float64 `json:"avg_discount_pct"`

	TotalActual     float64 `json:"total_actual"`
	TotalPlanned    float64 `json:"total_planned"`
	WAPE            float64 `json:"wape"`
	Bias            float64 `json:"bias"`
	UnderPlanVolume float64 `json:"under_plan_volume"`
	UnderPlanRate   float64 `json:"under_plan_rate"`
	OverPlanVolume  float64 `json:"over_plan_volume"`
	OverPlanRate    float64 `json:"over_plan_rate"`

	TotalActiveItems      int     `json:"total_active_items"`
	AvgPromoDays          float64 `json:"avg_promo_days"`
	TargetAchievementRate float64 `json:"target_achievement_rate"`

	AvgDiscountPctChange float64 `json:"avg_discount_pct_change"`
	AvgPromoDaysChange   float64 `json:"avg_promo_days_change"`
}

// MonthlyPoint is one point of a monthly time series.
type MonthlyPoint struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Qty   float64 `json:"qty"`
}

// SeriesGroup is a labeled monthly series (breakdown and trend output).
type SeriesGroup struct {
	Label string         `json:"label"`
	Data  []MonthlyPoint `json:"data"`
}

// GroupTotal is one leaderboard entry (customer or site).
type GroupTotal struct {
	Label string  `json:"label"`
	Qty   float64 `json:"qty"`
}

// ProductTotal is one top-products entry.
type ProductTotal struct {
	ProductGroup string  `json:"product_group"`
	Flavor       string  `json:"flavor"`
	Size         string  `json:"size"`
	Qty          float64 `json:"qty"`
}

// Meta is the metadata block attached to every report.
type Meta struct {
	RecordCount int            `json:"record_count"`
	Dataset     string         `json:"dataset,omitempty"`
	RefreshedAt time.Time      `json:"refreshed_at"`
	Skipped     map[string]int `json:"skipped,omitempty"`
}

// Summary is the full summary-report bundle.
type Summary struct {
	KPI         KPI            `json:"kpi"`
	MonthlyTS   []MonthlyPoint `json:"monthly_ts"`
	BreakdownTS []SeriesGroup  `json:"breakdown_ts,omitempty"`
	ByCustomer  []GroupTotal   `json:"by_customer"`
	BySite      []GroupTotal   `json:"by_site"`
	TopProducts []ProductTotal `json:"top_products"`
	Meta        Meta           `json:"meta"`
}

// HeatmapCell is one (dimension value, month) accuracy cell.
type HeatmapCell struct {
	Row     string  `json:"row"`
	Month   string  `json:"month"`
	WAPE    float64 `json:"wape"`
	Bias    float64 `json:"bias"`
	Actual  float64 `json:"actual"`
	Planned float64 `json:"planned"`
	Error   float64 `json:"error"`
}

// RankingItem is one row of the plan-accuracy ranking lists.
type RankingItem struct {
	Date            string  `json:"date"`
	Customer        string  `json:"customer"`
	SKU             string  `json:"sku"`
	ProductGroup    string  `json:"product_group"`
	Flavor          string  `json:"flavor"`
	Size            string  `json:"size"`
	Planned         float64 `json:"planned"`
	Actual          float64 `json:"actual"`
	Error           float64 `json:"error"`
	AbsError        float64 `json:"abs_error"`
	UnderOverVolume float64 `json:"under_over_volume"`
	HasPromotion    bool    `json:"has_promotion"`
	MechGroup       string  `json:"mech_group,omitempty"`
	DiscountPct     float64 `json:"discount_pct"`
}

// ScatterPoint is one planned-vs-actual sample point.
type ScatterPoint struct {
	Planned float64 `json:"planned"`
	Actual  float64 `json:"actual"`
	IsPromo bool    `json:"is_promo"`
	Label   string  `json:"label"`
}

// ErrorBin is one bucket of the error-percentage histogram.
type ErrorBin struct {
	Bin   string `json:"bin"`
	Count int    `json:"count"`
}

// DeepDive is the full deep-dive report bundle.
type DeepDive struct {
	KPI              KPI           `json:"kpi"`
	HeatmapCustomer  []HeatmapCell `json:"heatmap_customer"`
	HeatmapProduct   []HeatmapCell `json:"heatmap_product"`
	RankingUnderPlan []RankingItem `json:"ranking_under_plan"`
	RankingOverPlan  []RankingItem `json:"ranking_over_plan"`
	ScatterData      []ScatterPoint `json:"scatter_data"`
	ErrorDist        []ErrorBin    `json:"error_dist"`
	StabilityTrend   []SeriesGroup `json:"stability_trend"`
	SalesTrend       []SeriesGroup `json:"sales_trend"`
	Meta             Meta          `json:"meta"`
}

// Options is the distinct filter-option bundle for dashboard dropdowns.
type Options struct {
	ProductGroups []string `json:"product_groups"`
	Flavors       []string `json:"flavors"`
	Sizes         []string `json:"sizes"`
	Customers     []string `json:"customers"`
	Sites         []string `json:"sites"`
	MechGroups    []string `json:"mechgroups"`
}
