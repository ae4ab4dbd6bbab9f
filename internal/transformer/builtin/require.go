package builtin

import "ecommetl/pkg/records"

// Require keeps only records with a non-null cell for every field in Fields,
// where null means absent or nil (records.Record.IsNull). Blank strings are
// not null here; numeric fields are expected to pass through Coerce with
// NullOnError first, which turns blanks into nil.
//
// Fields with no entries keep every record. The input slice is reused.
type Require struct {
	Fields []string
}

func (r Require) Apply(in []records.Record) []records.Record {
	out := in[:0]
	for _, rec := range in {
		if r.complete(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func (r Require) complete(rec records.Record) bool {
	for _, f := range r.Fields {
		if rec.IsNull(f) {
			return false
		}
	}
	return true
}
