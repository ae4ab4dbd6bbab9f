// Package snapshot persists raw input tables as Parquet files.
//
// Inputs are schemaless, so every column is written as a nullable UTF-8
// string; cells are rendered with records.Text. Each file gets an xxh3
// fingerprint of its bytes so runs over identical inputs can be compared.
package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/zeebo/xxh3"

	"ecommetl/internal/table"
	"ecommetl/pkg/records"
)

// Info describes one written snapshot.
type Info struct {
	Path        string
	Rows        int
	Columns     int
	Bytes       int64
	Fingerprint string // xxh3-64 of the file, hex
	Skipped     bool   // table had no columns; nothing written
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Write stores t at path, creating parent directories.
func Write(path string, t *table.Table) (Info, error) {
	cols := t.Columns()
	info := Info{Path: path, Rows: t.Len(), Columns: len(cols)}
	if len(cols) == 0 {
		info.Skipped = true
		return info, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return info, fmt.Errorf("snapshot: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return info, fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	defer f.Close()

	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i, c := range cols {
		sb := b.Field(i).(*array.StringBuilder)
		for _, r := range t.Rows() {
			if r.IsNull(c) {
				sb.AppendNull()
			} else {
				sb.Append(records.Text(r[c]))
			}
		}
	}
	rec := b.NewRecord()
	defer rec.Release()

	h := xxh3.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	fw, err := pqarrow.NewFileWriter(schema, cw, props, pqarrow.DefaultWriterProps())
	if err != nil {
		return info, fmt.Errorf("snapshot: writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return info, fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	if err := fw.Close(); err != nil {
		return info, fmt.Errorf("snapshot: close writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return info, fmt.Errorf("snapshot: close %s: %w", path, err)
	}

	info.Bytes = cw.n
	info.Fingerprint = fmt.Sprintf("%016x", h.Sum64())
	return info, nil
}

// Read loads a snapshot back into a table. Null cells are absent from rows.
func Read(ctx context.Context, path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	tbl, err := pqarrow.ReadTable(ctx, f, parquet.NewReaderProperties(nil), pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	defer tbl.Release()

	n := int(tbl.NumRows())
	rows := make([]records.Record, n)
	for i := range rows {
		rows[i] = records.Record{}
	}
	cols := make([]string, tbl.NumCols())
	for ci := range cols {
		cols[ci] = tbl.Schema().Field(ci).Name
		offset := 0
		for _, chunk := range tbl.Column(ci).Data().Chunks() {
			strs, ok := chunk.(*array.String)
			if !ok {
				return nil, fmt.Errorf("snapshot: column %s has type %s, want utf8", cols[ci], chunk.DataType())
			}
			for j := 0; j < strs.Len(); j++ {
				if !strs.IsNull(j) {
					rows[offset+j][cols[ci]] = strs.Value(j)
				}
			}
			offset += strs.Len()
		}
	}
	return table.New(cols, rows), nil
}
