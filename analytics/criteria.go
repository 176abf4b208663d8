// criteria.go - Multi-dimensional filter criteria
package analytics

// Breakdown dimensions accepted by the summary reports.
const (
	BreakdownProductGroup = "product_group"
	BreakdownFlavor       = "flavor"
	BreakdownSize         = "size"
)

// Criteria holds the optional per-dimension accepted-value sets plus the
// promotion flag and breakdown selection. An empty set means "accept all
// values for that dimension".
type Criteria struct {
	Customers     []string
	Sites         []string
	ProductGroups []string
	Sizes         []string
	Flavors       []string
	MechGroups    []string

	// HasPromotion filters rows by their resolved promotion flag when
	// non-nil.
	HasPromotion *bool

	// Breakdown selects the dynamic breakdown dimension, or "".
	Breakdown string
}

// Query is one report request: a partial date range plus filter criteria.
type Query struct {
	Window   WindowRequest
	Criteria Criteria
}
