/*
options.go - Distinct filter options

PURPOSE:
  Builds the dropdown option sets for the dashboard filter bar. The
  caller may pass a current single-value selection per dimension;
  options cascade (picking a flavor narrows the sizes on offer).

EXCLUSION STYLES:
  The legacy pre-aggregated report keeps excluded-group rows for
  cascading but hides the group itself from the product-group options;
  the row-level report drops the rows entirely. Both behaviors are
  preserved per report type.
*/
package analytics

import (
	"sort"

	"github.com/warp/sales-analytics/dataset"
)

// OptionFilter is a current single-value selection used to cascade the
// option sets. Empty fields do not constrain.
type OptionFilter struct {
	ProductGroup string
	Flavor       string
	Size         string
	Customer     string
}

func (f OptionFilter) matches(row dataset.Row) bool {
	if f.ProductGroup != "" && dataset.String(row["Product_Group"]) != f.ProductGroup {
		return false
	}
	if f.Flavor != "" && dataset.String(row["Flavor"]) != f.Flavor {
		return false
	}
	if f.Size != "" && dataset.String(row["Size"]) != f.Size {
		return false
	}
	if f.Customer != "" && dataset.String(row["Customer"]) != f.Customer {
		return false
	}
	return true
}

// BuildOptions collects the distinct, sorted filter options of a dataset
// under the given cascading selection.
func BuildOptions(rows []dataset.Row, schema Schema, f OptionFilter) Options {
	productGroups := make(map[string]struct{})
	flavors := make(map[string]struct{})
	sizes := make(map[string]struct{})
	customers := make(map[string]struct{})
	sites := make(map[string]struct{})
	mechGroups := make(map[string]struct{})

	for _, row := range rows {
		pg := dataset.String(row["Product_Group"])
		if schema.DropExcludedRows && pg == ExcludedProductGroup {
			continue
		}
		if !f.matches(row) {
			continue
		}

		if pg != "" && pg != ExcludedProductGroup {
			productGroups[pg] = struct{}{}
		}
		if v := dataset.String(row["Flavor"]); v != "" {
			flavors[v] = struct{}{}
		}
		if v := dataset.String(row["Size"]); v != "" {
			sizes[v] = struct{}{}
		}
		if v := dataset.String(row["Customer"]); v != "" {
			customers[v] = struct{}{}
		}
		if schema.SiteColumn != "" {
			if v := dataset.String(row[schema.SiteColumn]); v != "" {
				sites[v] = struct{}{}
			}
		}
		if v := dataset.String(row["MechGroup"]); v != "" {
			mechGroups[v] = struct{}{}
		}
	}

	return Options{
		ProductGroups: sortedKeys(productGroups),
		Flavors:       sortedKeys(flavors),
		Sizes:         sortedKeys(sizes),
		Customers:     sortedKeys(customers),
		Sites:         sortedKeys(sites),
		MechGroups:    sortedKeys(mechGroups),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
