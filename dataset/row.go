/*
row.go - Row model and tolerant value access

PURPOSE:
  Defines the Row type consumed by the analytics engine and the tolerant
  value helpers that paper over the inconsistencies of the upstream
  datasets: numeric columns that arrive as strings, text columns that
  arrive as []byte, and logical attributes that go by several different
  column names depending on which export produced the dataset.

ALIAS RESOLUTION:
  Resolve walks an ordered list of candidate column names and returns the
  first value found. Exact-name matches win; a case-insensitive scan of
  the row's columns is the fallback. Alias lists live next to the code
  that owns the logical attribute (see analytics/classify.go) so they
  read as named configuration, not scattered literals.

SEE ALSO:
  - provider.go: Where rows come from
  - analytics/classify.go: The alias lists this resolution serves
*/
package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Row is an immutable-at-read mapping from column name to value.
// Values are one of: string, int/int64, float64, time.Time, []byte, nil.
type Row map[string]any

// Lookup returns the value for a column, trying the exact name first and
// falling back to a case-insensitive match.
func (r Row) Lookup(col string) (any, bool) {
	if v, ok := r[col]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, col) {
			return v, true
		}
	}
	return nil, false
}

// Resolve returns the first value found under any of the candidate column
// names, in order.
func Resolve(r Row, candidates []string) (any, bool) {
	for _, c := range candidates {
		if v, ok := r.Lookup(c); ok {
			return v, true
		}
	}
	return nil, false
}

// Float coerces a value to float64. Numeric strings parse; non-finite
// values (some drivers hand back Infinity/NaN for float columns) and
// everything else report false.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case []byte:
		return Float(string(t))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// FloatOrZero coerces a value to float64, defaulting to 0 for absent or
// unparsable values. This mirrors the upstream "missing numeric means
// zero" policy.
func FloatOrZero(v any) float64 {
	f, _ := Float(v)
	return f
}

// String renders a value the way the filter layer compares it: integral
// floats render without a decimal point, so numeric size 350 and string
// "350" are equivalent.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}

// IsEmpty reports whether a value is absent for analytical purposes.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}
