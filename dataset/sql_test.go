package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteProvider(t *testing.T) *SQLProvider {
	t.Helper()
	p, err := OpenSQL("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	// :memory: gives every connection its own database; pin to one so
	// the seeded table is visible to the fetch.
	p.db.SetMaxOpenConns(1)
	p.db.SetMaxIdleConns(1)

	_, err = p.db.Exec(`
		CREATE TABLE sale_data (
			Customer TEXT,
			Product_Group TEXT,
			date TEXT,
			Actual_sale REAL,
			Planed_sales_from_start REAL
		)`)
	require.NoError(t, err)
	_, err = p.db.Exec(`
		INSERT INTO sale_data VALUES
			('Metro Retail', 'Juices', '2024-03-15', 120, 100),
			('City Grocer', 'Nectars', '2024-04-01', 80, 90),
			('Metro Retail', 'Juices', '2024-05-10', NULL, 50)`)
	require.NoError(t, err)
	return p
}

func TestSQLProviderFetch(t *testing.T) {
	p := newSQLiteProvider(t)

	rows, err := p.Fetch(context.Background(), "sale_data", 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Metro Retail", String(rows[0]["Customer"]))
	assert.Equal(t, "2024-03-15", String(rows[0]["date"]))
	assert.Equal(t, 120.0, FloatOrZero(rows[0]["Actual_sale"]))
	assert.Nil(t, rows[2]["Actual_sale"], "NULL columns stay nil")
	assert.Equal(t, 0.0, FloatOrZero(rows[2]["Actual_sale"]))
}

func TestSQLProviderFetchLimit(t *testing.T) {
	p := newSQLiteProvider(t)

	rows, err := p.Fetch(context.Background(), "sale_data", 2)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSQLProviderUnknownTable(t *testing.T) {
	p := newSQLiteProvider(t)

	_, err := p.Fetch(context.Background(), "no_such_table", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestSQLProviderRejectsBadIdentifier(t *testing.T) {
	p := newSQLiteProvider(t)

	for _, id := range []string{"", "sale data", "sales;DROP TABLE x", "sales--"} {
		_, err := p.Fetch(context.Background(), id, 0)
		require.Error(t, err, "identifier %q", id)
		assert.True(t, errors.Is(err, ErrNotFound), "identifier %q", id)
	}
}

func TestSQLProviderPing(t *testing.T) {
	p := newSQLiteProvider(t)
	assert.NoError(t, p.Ping(context.Background()))
}

func TestSQLProviderClosedPool(t *testing.T) {
	p, err := OpenSQL("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, p.Close())

	_, fetchErr := p.Fetch(context.Background(), "anything", 0)
	require.Error(t, fetchErr)
}
