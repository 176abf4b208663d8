/*
query.go - Query-string parsing for report endpoints

PURPOSE:
  Translates the URL query parameters of the summary and deep-dive
  endpoints into an analytics.Query. Parsing is forgiving: numeric
  parameters that fail to parse are treated as absent, letting the
  window resolver fall back to its defaults; unknown parameters are
  ignored.

SEE ALSO:
  - analytics/criteria.go: The Query/Criteria shapes built here
  - analytics/window.go: Default resolution for absent window fields
*/
package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/warp/sales-analytics/analytics"
)

// parseQuery builds an analytics.Query from the request's URL values.
func parseQuery(r *http.Request) analytics.Query {
	v := r.URL.Query()
	q := analytics.Query{
		Window: analytics.WindowRequest{
			YearFrom:  intParam(v, "year_from"),
			MonthFrom: intParam(v, "month_from"),
			YearTo:    intParam(v, "year_to"),
			MonthTo:   intParam(v, "month_to"),
		},
		Criteria: analytics.Criteria{
			Customers:     multiParam(v, "customer"),
			Sites:         multiParam(v, "site"),
			ProductGroups: multiParam(v, "product_group"),
			Sizes:         multiParam(v, "size"),
			Flavors:       multiParam(v, "flavor"),
			MechGroups:    multiParam(v, "mechgroup"),
			HasPromotion:  boolParam(v, "has_promotion"),
			Breakdown:     v.Get("breakdown"),
		},
	}
	return q
}

// parseOptionFilter builds the cascading filter for the options endpoints.
func parseOptionFilter(r *http.Request) analytics.OptionFilter {
	v := r.URL.Query()
	return analytics.OptionFilter{
		ProductGroup: v.Get("product_group"),
		Flavor:       v.Get("flavor"),
		Size:         v.Get("size"),
		Customer:     v.Get("customer"),
	}
}

// intParam parses a positive integer parameter; malformed or missing
// values count as absent (zero).
func intParam(v url.Values, name string) int {
	s := v.Get(name)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// multiParam collects every occurrence of a repeatable parameter,
// dropping empty values.
func multiParam(v url.Values, name string) []string {
	var out []string
	for _, s := range v[name] {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// boolParam interprets a tri-state flag: "1"/"true" selects promo rows,
// "0"/"false" selects non-promo rows, anything else means no filter.
func boolParam(v url.Values, name string) *bool {
	switch v.Get(name) {
	case "1", "true":
		b := true
		return &b
	case "0", "false":
		b := false
		return &b
	}
	return nil
}
