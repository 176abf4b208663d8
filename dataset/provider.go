/*
provider.go - Upstream dataset provider contract

PURPOSE:
  The engine consumes datasets through this single contract: fetch a full
  table of rows by dataset identifier. How the rows are produced (a SQL
  warehouse, a local SQLite file, an in-memory demo set) is a provider
  concern the engine knows nothing about.

ERROR CATEGORIES:
  ErrConnection - the upstream could not be reached
  ErrSchema     - the dataset exists but could not be read as rows
  ErrNotFound   - the dataset identifier is unknown

  Providers wrap these sentinels with context; callers classify with
  errors.Is().

SEE ALSO:
  - sql.go: database/sql-backed provider
  - memory.go: in-memory provider for demos and tests
  - cache.go: read-through cache in front of a provider
*/
package dataset

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConnection is returned when the upstream provider cannot be reached.
	ErrConnection = errors.New("dataset provider connection failed")

	// ErrSchema is returned when a dataset cannot be read as rows.
	ErrSchema = errors.New("dataset schema error")

	// ErrNotFound is returned when a dataset identifier is unknown.
	ErrNotFound = errors.New("dataset not found")
)

// Provider fetches dataset rows from an upstream source.
//
// Fetch returns the rows of the named dataset in upstream order. A limit
// of 0 means no limit. The context bounds the upstream wait; expiry
// surfaces as a provider error.
type Provider interface {
	Fetch(ctx context.Context, datasetID string, limit int) ([]Row, error)
}

// RowSource is what request handlers consume: a provider fronted by a
// cache. Get returns the rows along with the time they were last fetched
// from upstream; Invalidate drops any cached entry so the next Get
// refetches.
type RowSource interface {
	Get(ctx context.Context, datasetID string) ([]Row, time.Time, error)
	Invalidate(ctx context.Context, datasetID string) error
}
