// Package transformer defines the row-batch transformation contract used by
// the normalizer and aggregator stages.
package transformer

import "ecommetl/pkg/records"

// Transformer rewrites a batch of records. Implementations may mutate the
// records and reuse the input slice.
type Transformer interface {
	Apply([]records.Record) []records.Record
}

// Func adapts an ordinary function to a Transformer.
type Func func([]records.Record) []records.Record

func (f Func) Apply(in []records.Record) []records.Record { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in []records.Record) []records.Record {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// CloneAll returns shallow copies of every record so a chain can mutate them
// without touching the caller's rows.
func CloneAll(in []records.Record) []records.Record {
	if in == nil {
		return nil
	}
	out := make([]records.Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
