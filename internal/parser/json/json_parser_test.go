package json

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"testing"

	"ecommetl/pkg/records"
)

/*
TestDecoderNext_NDJSONObjectsAndPrimitives verifies Decoder.Next on a mixed
NDJSON stream:

  - primitive top-level values (e.g. 42) are skipped,
  - object top-level values are converted into records.Record,
  - EOF is returned when the stream is exhausted.
*/
func TestDecoderNext_NDJSONObjectsAndPrimitives(t *testing.T) {
	const ndjson = `{"id":1,"name":"a"}
42
{"id":2,"name":"b"}
`

	d := NewDecoder(strings.NewReader(ndjson), Options{})

	// First object
	rec1, err := d.Next()
	if err != nil {
		t.Fatalf("Next() 1 returned error: %v", err)
	}
	if got, ok := rec1["id"].(json.Number); !ok || got.String() != "1" {
		t.Fatalf("rec1[\"id\"] = %#v (type %T); want json.Number(\"1\")", rec1["id"], rec1["id"])
	}
	if got, ok := rec1["name"].(string); !ok || got != "a" {
		t.Fatalf("rec1[\"name\"] = %#v (type %T); want \"a\"", rec1["name"], rec1["name"])
	}

	// Second object (after skipping primitive 42)
	rec2, err := d.Next()
	if err != nil {
		t.Fatalf("Next() 2 returned error: %v", err)
	}
	if got, ok := rec2["id"].(json.Number); !ok || got.String() != "2" {
		t.Fatalf("rec2[\"id\"] = %#v (type %T); want json.Number(\"2\")", rec2["id"], rec2["id"])
	}

	// EOF on next call
	rec3, err := d.Next()
	if err != io.EOF {
		t.Fatalf("Next() 3 = (%#v, %v); want (nil, io.EOF)", rec3, err)
	}
}

/*
TestDecoderNext_RejectsNonObjectOnlyStream ensures that when the stream
contains only non-object top-level values, Decoder.Next eventually returns
EOF without yielding any records.
*/
func TestDecoderNext_RejectsNonObjectOnlyStream(t *testing.T) {
	const data = `1
"two"
[3]
`

	d := NewDecoder(strings.NewReader(data), Options{})

	rec, err := d.Next()
	if err != io.EOF {
		t.Fatalf("Next() on non-object-only stream = (%#v, %v); want (nil, io.EOF)", rec, err)
	}
}

/*
TestDecodeAll_EmptyInput verifies that DecodeAll returns (nil, nil) for an
empty reader.
*/
func TestDecodeAll_EmptyInput(t *testing.T) {
	recs, err := DecodeAll(strings.NewReader(""), Options{})
	if err != nil {
		t.Fatalf("DecodeAll on empty input returned error: %v", err)
	}
	if recs != nil {
		t.Fatalf("DecodeAll on empty input = %#v; want nil slice", recs)
	}
}

/*
TestDecodeAll_ObjectRoot verifies that a single top-level JSON object is
decoded into one records.Record with matching fields.
*/
func TestDecodeAll_ObjectRoot(t *testing.T) {
	const data = `{"id":1,"name":"a"}`

	recs, err := DecodeAll(strings.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("DecodeAll returned error: %v", err)
	}
	if got, want := len(recs), 1; got != want {
		t.Fatalf("len(recs)=%d; want %d", got, want)
	}

	want := records.Record{
		"id":   json.Number("1"),
		"name": "a",
	}
	if !reflect.DeepEqual(recs[0], want) {
		t.Fatalf("DecodeAll object root mismatch:\n got: %#v\nwant: %#v", recs[0], want)
	}
}

/*
TestDecodeAll_ArrayRootAllowArrays verifies that a single top-level JSON array
of objects is expanded into records when Options.AllowArrays is true:

  - each array element must be an object,
  - DecodeAll returns one records.Record per element.
*/
func TestDecodeAll_ArrayRootAllowArrays(t *testing.T) {
	const data = `[{"id":1},{"id":2}]`

	recs, err := DecodeAll(strings.NewReader(data), Options{AllowArrays: true})
	if err != nil {
		t.Fatalf("DecodeAll returned error: %v", err)
	}
	if got, want := len(recs), 2; got != want {
		t.Fatalf("len(recs)=%d; want %d", got, want)
	}
	if got := recs[0]["id"].(json.Number).String(); got != "1" {
		t.Fatalf("recs[0][\"id\"] = %q; want \"1\"", got)
	}
	if got := recs[1]["id"].(json.Number).String(); got != "2" {
		t.Fatalf("recs[1][\"id\"] = %q; want \"2\"", got)
	}
}

/*
TestDecodeAll_ArrayRootDisallowed verifies that when the top-level value is an
array and Options.AllowArrays is false, DecodeAll returns an error.
*/
func TestDecodeAll_ArrayRootDisallowed(t *testing.T) {
	const data = `[{"id":1},{"id":2}]`

	recs, err := DecodeAll(strings.NewReader(data), Options{AllowArrays: false})
	if err == nil {
		t.Fatalf("DecodeAll with allow_arrays=false on array root = %#v, nil; want non-nil error", recs)
	}
}

/*
TestDecodeAll_ArrayRootNonObjectElement ensures that a top-level array with
a non-object element causes DecodeAll to fail with a descriptive error.
*/
func TestDecodeAll_ArrayRootNonObjectElement(t *testing.T) {
	const data = `[{"id":1}, 2]`

	recs, err := DecodeAll(strings.NewReader(data), Options{AllowArrays: true})
	if err == nil {
		t.Fatalf("DecodeAll on array with non-object element = %#v, nil; want error", recs)
	}
}

/*
TestDecodeAll_UnsupportedRootType verifies that unsupported top-level JSON
types (such as a primitive) produce an error.
*/
func TestDecodeAll_UnsupportedRootType(t *testing.T) {
	const data = `42`

	recs, err := DecodeAll(strings.NewReader(data), Options{})
	if err == nil {
		t.Fatalf("DecodeAll on primitive root = %#v, nil; want error", recs)
	}
}

/*
TestDecodeAll_IncludesTrailingNDJSON verifies that objects following the root
value on the same stream are decoded too.
*/
func TestDecodeAll_IncludesTrailingNDJSON(t *testing.T) {
	const data = `{"id":1}
{"id":2}
`

	recs, err := DecodeAll(strings.NewReader(data), Options{})
	if err != nil {
		t.Fatalf("DecodeAll returned error: %v", err)
	}

	if got, want := len(recs), 2; got != want {
		t.Fatalf("len(recs)=%d; want %d (root plus trailing object)", got, want)
	}

	if got := recs[0]["id"].(json.Number).String(); got != "1" {
		t.Fatalf("recs[0][\"id\"] = %q; want \"1\"", got)
	}
	if got := recs[1]["id"].(json.Number).String(); got != "2" {
		t.Fatalf("recs[1][\"id\"] = %q; want \"2\"", got)
	}
}

func TestDecodeTable_CatalogFeed(t *testing.T) {
	const feed = `[
  {"id": 1, "title": "Laptop", "price": 999.99, "category": "electronics"},
  {"id": 2, "title": "Mouse", "price": 19.5, "category": "electronics", "rating": {"rate": 4.1}}
]`
	tb, err := DecodeTable(strings.NewReader(feed), Options{AllowArrays: true})
	if err != nil {
		t.Fatalf("DecodeTable: %v", err)
	}
	want := []string{"category", "id", "price", "rating", "title"}
	if got := tb.Columns(); !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v; want %v", got, want)
	}
	if tb.Len() != 2 || tb.Value(0, "rating") != nil {
		t.Fatalf("rows = %#v", tb.Rows())
	}
	if p, ok := tb.Float(1, "price"); !ok || p != 19.5 {
		t.Fatalf("price = %v, %v", p, ok)
	}
}
