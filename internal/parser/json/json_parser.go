// Package json turns JSON documents into records.Record maps.
//
// A document is either one object, a stream of objects (NDJSON) or, with
// AllowArrays, a top-level array of objects such as a product catalog feed.
// Numbers are kept as json.Number.
package json

import (
	"encoding/json"
	"fmt"
	"io"

	"ecommetl/internal/table"
	"ecommetl/pkg/records"
)

// Options controls top-level shape handling.
type Options struct {
	// AllowArrays accepts a top-level array of objects in DecodeAll.
	AllowArrays bool
}

// Decoder reads a stream of JSON objects one record at a time.
type Decoder struct {
	dec *json.Decoder
	opt Options
}

// NewDecoder constructs a Decoder from an io.Reader and JSON Options.
func NewDecoder(r io.Reader, opt Options) *Decoder {
	d := json.NewDecoder(r)
	d.UseNumber()
	return &Decoder{dec: d, opt: opt}
}

// Next returns the next top-level object, skipping non-object values.
// io.EOF is returned when the stream is exhausted.
func (d *Decoder) Next() (records.Record, error) {
	for {
		var raw any
		if err := d.dec.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("json parser: decode: %w", err)
		}
		if m, ok := raw.(map[string]any); ok {
			return records.Record(m), nil
		}
	}
}

// DecodeAll reads every object from r. Empty input yields (nil, nil).
func DecodeAll(r io.Reader, opt Options) ([]records.Record, error) {
	d := json.NewDecoder(r)
	d.UseNumber()

	var root any
	if err := d.Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("json parser: decode root: %w", err)
	}

	var out []records.Record
	switch v := root.(type) {
	case map[string]any:
		out = append(out, records.Record(v))
	case []any:
		if !opt.AllowArrays {
			return nil, fmt.Errorf("json parser: top-level array encountered but allow_arrays=false")
		}
		out = make([]records.Record, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("json parser: element %d in array is not an object", i)
			}
			out = append(out, records.Record(obj))
		}
	default:
		return nil, fmt.Errorf("json parser: unsupported top-level JSON type %T", v)
	}

	// Trailing NDJSON after the root.
	rest := &Decoder{dec: d, opt: opt}
	for {
		rec, err := rest.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeTable is DecodeAll returning a table whose columns are the union of
// object keys in lexical order.
func DecodeTable(r io.Reader, opt Options) (*table.Table, error) {
	recs, err := DecodeAll(r, opt)
	if err != nil {
		return nil, err
	}
	return table.FromRecords(recs), nil
}
