package builtin

import (
	"strconv"
	"time"

	"ecommetl/pkg/records"
)

// Coerce converts configured fields to typed values in place.
//
// Supported types: int, float, bool, date, string, key. "float" accepts any
// numeric cell (json.Number, ints, numeric strings). "key" rewrites the cell
// into its canonical join-key string (see records.Key).
type Coerce struct {
	Types  map[string]string // field -> one of: int, float, bool, date, string, key
	Layout string            // date layout

	// NullOnError turns unparseable values into nil instead of leaving the
	// original value in place.
	NullOnError bool
}

func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	for _, r := range in {
		for field, typ := range c.Types {
			v, ok := r[field]
			if !ok || v == nil {
				continue
			}
			switch typ {
			case "float":
				if f, ok := records.Float(v); ok {
					r[field] = f
				} else {
					c.fail(r, field)
				}
				continue
			case "key":
				if k, ok := records.Key(v); ok {
					r[field] = k
				}
				continue
			}

			s, isStr := v.(string)
			if !isStr {
				continue
			}
			switch typ {
			case "int":
				if i, err := strconv.Atoi(s); err == nil {
					r[field] = i
				} else {
					c.fail(r, field)
				}
			case "bool":
				if b, err := strconv.ParseBool(s); err == nil {
					r[field] = b
				} else {
					c.fail(r, field)
				}
			case "date":
				if t, err := time.Parse(c.Layout, s); err == nil {
					r[field] = t
				} else {
					c.fail(r, field)
				}
			case "string":
				// already string
			}
		}
	}
	return in
}

func (c Coerce) fail(r records.Record, field string) {
	if c.NullOnError {
		r[field] = nil
	}
}
