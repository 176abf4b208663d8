/*
engine.go - Report pipeline entry points

PURPOSE:
  One function per report shape. Each runs the full pipeline over a row
  collection: resolve the window, classify row by row, accumulate, then
  assemble. The pipeline is synchronous, single-pass, and free of shared
  state; running it twice over the same rows yields identical output.

SEE ALSO:
  - classify.go, aggregate.go, deepdive.go, assemble.go: The stages
*/
package analytics

import (
	"time"

	"github.com/warp/sales-analytics/dataset"
)

// BuildSummary runs the summary pipeline over a row collection. The
// schema adapter selects the dataset layout; now anchors the default
// window end.
func BuildSummary(rows []dataset.Row, schema Schema, q Query, now time.Time) Summary {
	window := ResolveWindow(q.Window, schema.LookbackMonths, now)
	classifier := NewClassifier(schema, window, q.Criteria)
	agg := NewAggregator(schema, q.Criteria.Breakdown)

	for _, row := range rows {
		c, reason := classifier.Classify(row)
		if reason != SkipNone {
			continue
		}
		agg.Add(c)
	}

	return agg.Result(Meta{Skipped: classifier.SkipCounts()})
}

// BuildDeepDive runs the accuracy deep-dive pipeline over a row-level
// collection.
func BuildDeepDive(rows []dataset.Row, q Query, now time.Time) DeepDive {
	window := ResolveWindow(q.Window, RowLevelDeep.LookbackMonths, now)
	classifier := NewClassifier(RowLevelDeep, window, q.Criteria)
	builder := NewDeepDiveBuilder(q.Criteria.Breakdown)

	for _, row := range rows {
		c, reason := classifier.Classify(row)
		if reason != SkipNone {
			continue
		}
		builder.Add(c)
	}

	return builder.Result(Meta{Skipped: classifier.SkipCounts()})
}
