// Package csv parses delimited text into records while keeping the header
// order, so callers can build ordered tables from it.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"ecommetl/internal/parser"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"
)

var _ parser.Parser = (*Parser)(nil)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0 and there is no header, names columns col_0..
	// and enforces that width.
	ExpectedFields int

	// HeaderMap renames source headers (after trimming and BOM removal).
	HeaderMap map[string]string

	// LogLimit caps the number of skipped-row log lines. Zero means 400.
	LogLimit int
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse consumes CSV records from r and returns the parsed rows along with the
// number of rows that were skipped due to parse errors or field-count
// mismatches. Empty cells are nil.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	_, out, skipped, err := p.parse(r)
	return out, skipped, err
}

// ParseTable is Parse returning an ordered table whose columns follow the
// header.
func (p *Parser) ParseTable(r io.Reader) (*table.Table, int, error) {
	headers, out, skipped, err := p.parse(r)
	if err != nil {
		return nil, skipped, err
	}
	return table.New(headers, out), skipped, nil
}

func (p *Parser) parse(r io.Reader) ([]string, []records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err == io.EOF {
			return nil, nil, 0, fmt.Errorf("read csv header: empty input")
		}
		if err != nil {
			return nil, nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	limit := p.opt.LogLimit
	if limit <= 0 {
		limit = 400
	}
	out := []records.Record{}
	var skipped int
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < limit {
				log.Printf("Skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(headers) > 0 && len(row) != len(headers) {
			if skipped < limit {
				log.Printf("Skipping row %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, headers)] = emptyToNil(val)
		}
		out = append(out, rec)
	}
	if headers == nil {
		headers = table.FromRecords(out).Columns()
	}
	return headers, out, skipped, nil
}

// keyFor returns the column key for index idx, using headers when available,
// otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders trims header cells, drops a leading BOM and applies
// HeaderMap. Case is preserved.
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if m, ok := opt.HeaderMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}
