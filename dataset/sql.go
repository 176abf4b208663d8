/*
sql.go - database/sql-backed dataset provider

PURPOSE:
  Fetches dataset rows from any database/sql driver. In production the
  datasets live in a warehouse (Snowflake or Postgres); for local work a
  SQLite file with the same tables behaves identically.

SUPPORTED DRIVERS:
  sqlite3    - local development and tests
  postgres   - lib/pq
  snowflake  - gosnowflake

DATASET IDENTIFIERS:
  A dataset identifier is a table name. Identifiers are validated against
  a strict [A-Za-z0-9_] pattern before being interpolated into the query;
  anything else is rejected as ErrNotFound.

SEE ALSO:
  - provider.go: Contract and error taxonomy
  - cmd/server/main.go: Driver selection from config
*/
package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"              // postgres driver
	_ "github.com/mattn/go-sqlite3"    // sqlite3 driver
	_ "github.com/snowflakedb/gosnowflake" // snowflake driver
)

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// SQLProvider reads full tables through database/sql.
type SQLProvider struct {
	db *sql.DB
}

// OpenSQL opens a provider for the given driver name and DSN.
func OpenSQL(driver, dsn string) (*SQLProvider, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnection, driver, err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &SQLProvider{db: db}, nil
}

// Close closes the underlying connection pool.
func (p *SQLProvider) Close() error {
	return p.db.Close()
}

// Ping tests the upstream connection.
func (p *SQLProvider) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return nil
}

// Fetch returns all rows of the named table as column-name keyed maps,
// in table order. A limit of 0 fetches everything.
func (p *SQLProvider) Fetch(ctx context.Context, datasetID string, limit int) ([]Row, error) {
	if !identPattern.MatchString(datasetID) {
		return nil, fmt.Errorf("%w: invalid dataset identifier %q", ErrNotFound, datasetID)
	}

	query := fmt.Sprintf("SELECT * FROM %s", datasetID)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrConnection, err)
		}
		return nil, fmt.Errorf("%w: query %s: %v", ErrSchema, datasetID, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: columns of %s: %v", ErrSchema, datasetID, err)
	}

	var result []Row
	values := make([]any, len(cols))
	scanners := make([]any, len(cols))
	for i := range values {
		scanners[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanners...); err != nil {
			return nil, fmt.Errorf("%w: scan %s: %v", ErrSchema, datasetID, err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			v := values[i]
			// Drivers hand text columns back as []byte; normalize so the
			// engine only sees strings.
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[c] = v
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate %s: %v", ErrConnection, datasetID, err)
	}

	return result, nil
}
