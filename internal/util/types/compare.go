package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Normalize folds numeric types together so that int(1), int64(1) and a JSON
// number "1" compare and hash the same. Other values are returned unchanged.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return uint64ToValue(uint64(n))
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return uint64ToValue(n)
	case float32:
		return normalizeFloat(float64(n))
	case float64:
		return normalizeFloat(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	}
	return v
}

func uint64ToValue(n uint64) any {
	if n <= math.MaxInt64 {
		return int64(n)
	}
	return float64(n)
}

// Whole floats collapse to int64 so 2.0 and 2 are the same key
func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// Equal reports whether two cell values are the same after normalisation
func Equal(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	c, err := Compare(a, b)
	if err != nil {
		return fmt.Sprint(a) == fmt.Sprint(b) && fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
	}
	return c == 0
}

// Compare orders two values. Numbers compare numerically, strings
// lexicographically, bools false<true, times chronologically. nil sorts first.
// Values of unrelated kinds cannot be ordered and return an error.
func Compare(a, b any) (int, error) {
	a, b = Normalize(a), Normalize(b)

	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}

	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			// keep int64 precision when both sides are integers
			ai, aInt := a.(int64)
			bi, bInt := b.(int64)
			if aInt && bInt {
				return cmpOrdered(ai, bi), nil
			}
			return cmpOrdered(af, bf), nil
		}
	}

	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return cmpOrdered(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0, nil
			case !av:
				return -1, nil
			default:
				return 1, nil
			}
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv), nil
		}
	}

	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

// CompareValues applies a comparison operator (=, !=, <>, <, <=, >, >=).
// Incomparable values only satisfy != and <>.
func CompareValues(a any, operator string, b any) bool {
	c, err := Compare(a, b)
	if err != nil {
		return operator == "!=" || operator == "<>"
	}
	switch operator {
	case "=", "==":
		return c == 0
	case "!=", "<>":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

// ParseScalar turns a command-line token into the most specific value:
// int64, float64, bool, or the string itself.
func ParseScalar(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}

// ParseCanonical parses s like ParseScalar but keeps the string whenever the
// parsed value would not render back to exactly s ("007", "1.50", "+3").
func ParseCanonical(s string) any {
	v := ParseScalar(s)
	if _, ok := v.(string); ok || String(v) != s {
		return s
	}
	return v
}

// String renders a cell value the way the text formats store it. nil is "".
func String(v any) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cmpOrdered[T int64 | float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
