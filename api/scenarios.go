/*
scenarios.go - Demo scenario catalogue

PURPOSE:
  Canned datasets for demos and local development. Each scenario seeds
  both dataset families of the in-memory provider: the pre-aggregated
  monthly sales table and the row-level plan-versus-actual table.
  Generation is deterministic so repeated loads produce identical
  reports.

SEE ALSO:
  - handlers.go: listScenarios / loadScenario
  - dataset/memory.go: The provider seeded here
*/
package api

import (
	"fmt"
	"time"

	"github.com/warp/sales-analytics/dataset"
)

type scenario struct {
	ID          string
	Name        string
	Description string
	Category    string
	seed        func(m *dataset.Memory, dashboardDataset, analyticsDataset string)
}

var scenarios = []scenario{
	{
		ID:          "steady-growth",
		Name:        "Steady Growth",
		Description: "Two customers, modest month over month growth, few promotions",
		Category:    "baseline",
		seed:        seedSteadyGrowth,
	},
	{
		ID:          "promo-heavy",
		Name:        "Promo Heavy",
		Description: "Frequent promotions with deep discounts driving over-plan sales",
		Category:    "promotions",
		seed:        seedPromoHeavy,
	},
	{
		ID:          "under-plan",
		Name:        "Under Plan",
		Description: "Actuals consistently short of plan across the portfolio",
		Category:    "accuracy",
		seed:        seedUnderPlan,
	},
}

func scenarioCatalogue() []ScenarioDTO {
	out := make([]ScenarioDTO, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, ScenarioDTO{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Category:    s.Category,
		})
	}
	return out
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ============================================================================
// Generators
// ============================================================================

type demoProduct struct {
	group  string
	flavor string
	size   string
	sku    string
}

var demoProducts = []demoProduct{
	{"Juices", "orange", "1 l", "JU-OR-100"},
	{"Juices", "apple", "1 l", "JU-AP-100"},
	{"Nectars", "peach", "330 ml", "NE-PE-033"},
	{"Nectars", "coconut", "350 ml", "NE-CO-035"},
	{"Still Drinks", "lemon", "500 ml", "SD-LE-050"},
}

var demoCustomers = []string{"Metro Retail", "City Grocer"}
var demoSites = []string{"Plant North", "Plant South"}

// seedFrame walks the last n months up to this month and invokes fn
// with a running index for deterministic variation.
func seedFrame(n int, fn func(idx, year, month int)) {
	now := time.Now()
	y, m := now.Year(), int(now.Month())
	// Step back to the window start, then walk forward.
	m -= n - 1
	for m < 1 {
		m += 12
		y--
	}
	for i := 0; i < n; i++ {
		fn(i, y, m)
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
}

func seedDatasets(m *dataset.Memory, dashboardDataset, analyticsDataset string,
	actual func(idx, pi, ci int) float64,
	planned func(idx, pi, ci int) float64,
	promo func(idx, pi, ci int) bool,
	discount float64, promoDays float64) {

	var dash, rows []dataset.Row
	seedFrame(18, func(idx, year, month int) {
		for pi, p := range demoProducts {
			for ci, c := range demoCustomers {
				a := actual(idx, pi, ci)
				pl := planned(idx, pi, ci)
				isPromo := promo(idx, pi, ci)

				dash = append(dash, dataset.Row{
					"Customer":           c,
					"site_name_public":   demoSites[ci%len(demoSites)],
					"Product_Group":      p.group,
					"Flavor":             p.flavor,
					"Size":               p.size,
					"Billing_Date_year":  float64(year),
					"Billing_Date_month": float64(month),
					"Quantity_sum":       a,
				})

				row := dataset.Row{
					"Customer":                c,
					"Product_Group":           p.group,
					"Flavor":                  p.flavor,
					"Size":                    p.size,
					"Sku":                     p.sku,
					"date":                    fmt.Sprintf("%04d-%02d-01", year, month),
					"Actual_sale":             a,
					"Planed_sales_from_start": pl,
					"has_promotion":           0.0,
				}
				if isPromo {
					row["has_promotion"] = 1.0
					row["discount_pct"] = discount
					row["promotion_dt"] = promoDays
					row["MechGroup"] = "Leaflet"
				}
				rows = append(rows, row)
			}
		}
	})
	m.Load(dashboardDataset, dash)
	m.Load(analyticsDataset, rows)
}

func seedSteadyGrowth(m *dataset.Memory, dashboardDataset, analyticsDataset string) {
	seedDatasets(m, dashboardDataset, analyticsDataset,
		func(idx, pi, ci int) float64 { return 900 + float64(idx*25) + float64(pi*40+ci*15) },
		func(idx, pi, ci int) float64 { return 880 + float64(idx*25) + float64(pi*40+ci*15) },
		func(idx, pi, ci int) bool { return (idx+pi)%9 == 0 },
		5, 7)
}

func seedPromoHeavy(m *dataset.Memory, dashboardDataset, analyticsDataset string) {
	seedDatasets(m, dashboardDataset, analyticsDataset,
		func(idx, pi, ci int) float64 {
			base := 700 + float64(pi*60+ci*20)
			if (idx+pi+ci)%2 == 0 {
				return base * 1.4
			}
			return base
		},
		func(idx, pi, ci int) float64 { return 720 + float64(pi*60+ci*20) },
		func(idx, pi, ci int) bool { return (idx+pi+ci)%2 == 0 },
		25, 14)
}

func seedUnderPlan(m *dataset.Memory, dashboardDataset, analyticsDataset string) {
	seedDatasets(m, dashboardDataset, analyticsDataset,
		func(idx, pi, ci int) float64 { return 600 + float64(pi*50+ci*10) },
		func(idx, pi, ci int) float64 { return 780 + float64(pi*50+ci*10) + float64(idx*5) },
		func(idx, pi, ci int) bool { return (idx+pi)%6 == 0 },
		10, 5)
}
