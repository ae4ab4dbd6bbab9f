// Package records defines the row model shared by parsers, transformers and
// the merge engine. A Record maps a column label to a cell value; a missing
// key and a nil value both mean "null".
package records

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Record is a single row keyed by column label.
type Record map[string]any

// Clone returns a shallow copy of r. Cell values are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNull reports whether the cell for key is absent or nil.
func (r Record) IsNull(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// Float returns the numeric value of the cell for key.
func (r Record) Float(key string) (float64, bool) {
	return Float(r[key])
}

// Float converts a cell value to float64. Strings are trimmed and parsed;
// NaN and nil report false.
func Float(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Key returns the canonical join-key form of a cell value so that a JSON 1,
// a CSV "1" and a CSV " 1.0 " all match. Integer-valued text and json.Number
// are canonicalized exactly, at any magnitude; float64 is used only for
// fractional or exponent forms. Other strings are trimmed. nil reports false.
func Key(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(t)
		if k, ok := numberKey(s); ok {
			return k, true
		}
		return s, true
	case json.Number:
		if k, ok := numberKey(t.String()); ok {
			return k, true
		}
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case uint64:
		return strconv.FormatUint(t, 10), true
	case float64, float32:
		if f, ok := Float(t); ok && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return fmt.Sprint(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// numberKey canonicalizes numeric text. An optional sign, digits and a
// fraction of only zeros is an exact integer; anything else ParseFloat
// accepts goes through float64.
func numberKey(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	digits := s
	if i := strings.IndexByte(digits, '.'); i >= 0 && strings.Trim(digits[i+1:], "0") == "" {
		digits = digits[:i]
	}
	if n, ok := new(big.Int).SetString(digits, 10); ok {
		return n.String(), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// Text renders a cell value for tabular text output (CSV, Parquet strings,
// spreadsheet cells). nil renders as the empty string.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case time.Time:
		return t.Format(time.RFC3339)
	case map[string]any, []any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
