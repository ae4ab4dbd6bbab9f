// Package table implements a small, ordered, null-aware table over
// records.Record rows. It provides the column-oriented operations the merge
// engine needs (rename, drop, derived columns, projection, filtering, left
// join, ordered grouping) without mutating its receivers: every operation
// returns a new *Table.
//
// A cell is null when the row has no entry for the column or the entry is nil.
package table

import (
	"sort"
	"strings"

	"ecommetl/pkg/records"
)

// Table is an ordered list of column labels plus rows.
type Table struct {
	cols []string
	rows []records.Record
}

// New builds a table from column labels and rows. Duplicate labels are
// collapsed to their first occurrence. The table takes ownership of rows;
// callers must not modify them afterwards.
func New(cols []string, rows []records.Record) *Table {
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	if rows == nil {
		rows = []records.Record{}
	}
	return &Table{cols: out, rows: rows}
}

// FromRecords builds a table whose columns are the union of all row keys in
// lexical order. It is meant for sources without a header, such as JSON.
func FromRecords(rows []records.Record) *Table {
	set := map[string]struct{}{}
	for _, r := range rows {
		for k := range r {
			set[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(set))
	for k := range set {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return New(cols, rows)
}

// Columns returns a copy of the column labels in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Row returns row i. The returned record must be treated as read-only.
func (t *Table) Row(i int) records.Record { return t.rows[i] }

// Rows returns the rows in order. The records must be treated as read-only.
func (t *Table) Rows() []records.Record {
	return append([]records.Record(nil), t.rows...)
}

// Has reports whether the table carries column col.
func (t *Table) Has(col string) bool {
	for _, c := range t.cols {
		if c == col {
			return true
		}
	}
	return false
}

// Missing returns the labels from want that the table does not carry, in the
// order given.
func (t *Table) Missing(want ...string) []string {
	var out []string
	for _, w := range want {
		if !t.Has(w) {
			out = append(out, w)
		}
	}
	return out
}

// Value returns the cell at row i, column col (nil when null).
func (t *Table) Value(i int, col string) any { return t.rows[i][col] }

// Float returns the numeric cell at row i, column col.
func (t *Table) Float(i int, col string) (float64, bool) {
	return records.Float(t.rows[i][col])
}

// Sum adds the numeric cells of col, skipping nulls.
func (t *Table) Sum(col string) float64 {
	var s float64
	for _, r := range t.rows {
		if f, ok := r.Float(col); ok {
			s += f
		}
	}
	return s
}

// Distinct counts the distinct non-null values of col.
func (t *Table) Distinct(col string) int {
	set := map[string]struct{}{}
	for _, r := range t.rows {
		if k, ok := records.Key(r[col]); ok {
			set[k] = struct{}{}
		}
	}
	return len(set)
}

// RenameColumns relabels every column through fn. When two labels map to the
// same new label, the later column wins.
func (t *Table) RenameColumns(fn func(string) string) *Table {
	cols := make([]string, len(t.cols))
	for i, c := range t.cols {
		cols[i] = fn(c)
	}
	rows := make([]records.Record, len(t.rows))
	for i, r := range t.rows {
		nr := make(records.Record, len(r))
		for _, c := range t.cols {
			if v, ok := r[c]; ok {
				nr[fn(c)] = v
			}
		}
		rows[i] = nr
	}
	return New(cols, rows)
}

// Rename relabels column from to to. Other columns are untouched.
func (t *Table) Rename(from, to string) *Table {
	return t.RenameColumns(func(c string) string {
		if c == from {
			return to
		}
		return c
	})
}

// Drop removes the given columns. Unknown labels are ignored.
func (t *Table) Drop(cols ...string) *Table {
	drop := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		drop[c] = struct{}{}
	}
	keep := make([]string, 0, len(t.cols))
	for _, c := range t.cols {
		if _, ok := drop[c]; !ok {
			keep = append(keep, c)
		}
	}
	return t.Project(keep...)
}

// Project keeps only the listed columns that exist, in the order listed.
func (t *Table) Project(cols ...string) *Table {
	keep := make([]string, 0, len(cols))
	for _, c := range cols {
		if t.Has(c) {
			keep = append(keep, c)
		}
	}
	rows := make([]records.Record, len(t.rows))
	for i, r := range t.rows {
		nr := make(records.Record, len(keep))
		for _, c := range keep {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		rows[i] = nr
	}
	return New(keep, rows)
}

// WithConstant sets col to v on every row, appending the column when absent.
func (t *Table) WithConstant(col string, v any) *Table {
	return t.WithColumn(col, func(records.Record) any { return v })
}

// WithColumn sets col on every row to fn(row), appending the column when
// absent. fn receives the source row and must not modify it.
func (t *Table) WithColumn(col string, fn func(records.Record) any) *Table {
	cols := t.cols
	if !t.Has(col) {
		cols = append(append([]string(nil), t.cols...), col)
	}
	rows := make([]records.Record, len(t.rows))
	for i, r := range t.rows {
		nr := r.Clone()
		if v := fn(r); v != nil {
			nr[col] = v
		} else {
			delete(nr, col)
		}
		rows[i] = nr
	}
	return New(cols, rows)
}

// Filter keeps the rows for which keep returns true, preserving order.
func (t *Table) Filter(keep func(records.Record) bool) *Table {
	rows := make([]records.Record, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return New(t.cols, rows)
}

// SortDesc returns the rows ordered by the numeric column col, largest first.
// The sort is stable; null cells sort last.
func (t *Table) SortDesc(col string) *Table {
	rows := t.Rows()
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i].Float(col)
		b, bok := rows[j].Float(col)
		if aok != bok {
			return aok
		}
		return a > b
	})
	return New(t.cols, rows)
}

// JoinStats describes how the rows of a left join matched.
type JoinStats struct {
	Matched   int // left rows with at least one right match
	Unmatched int // left rows with no right match
	Fanout    int // extra rows produced by duplicate right keys
}

// LeftJoin joins t with right on column key. Every left row is kept; a left
// row matching n right rows yields n output rows in right-row order. Right
// columns other than key are appended; a right column that shares a label
// with a left column replaces it, so the right side is authoritative for
// overlapping labels (null when unmatched). Null keys never match.
func (t *Table) LeftJoin(right *Table, key string) (*Table, JoinStats) {
	return t.leftJoin(right, key, nil)
}

// LeftJoinSuffix is LeftJoin without an authoritative side: every non-key
// label present on both sides is kept twice, renamed label+leftSuffix and
// label+rightSuffix, and the bare label disappears from the result.
func (t *Table) LeftJoinSuffix(right *Table, key, leftSuffix, rightSuffix string) (*Table, JoinStats) {
	return t.leftJoin(right, key, &suffixes{left: leftSuffix, right: rightSuffix})
}

type suffixes struct{ left, right string }

func (t *Table) leftJoin(right *Table, key string, sfx *suffixes) (*Table, JoinStats) {
	index := make(map[string][]int, right.Len())
	for i, r := range right.rows {
		if k, ok := records.Key(r[key]); ok {
			index[k] = append(index[k], i)
		}
	}

	overlap := map[string]bool{}
	if sfx != nil {
		for _, c := range right.cols {
			if c != key && t.Has(c) {
				overlap[c] = true
			}
		}
	}
	// rightOut maps each right column to its output label.
	rightOut := map[string]string{}
	var rightCols []string
	for _, c := range right.cols {
		if c == key {
			continue
		}
		rightCols = append(rightCols, c)
		rightOut[c] = c
		if overlap[c] {
			rightOut[c] = c + sfx.right
		}
	}

	cols := make([]string, 0, len(t.cols)+len(rightCols))
	for _, c := range t.cols {
		if overlap[c] {
			c += sfx.left
		}
		cols = append(cols, c)
	}
	for _, c := range rightCols {
		cols = append(cols, rightOut[c])
	}

	leftRow := func(l records.Record) records.Record {
		nr := l.Clone()
		for c := range overlap {
			if v, ok := nr[c]; ok {
				delete(nr, c)
				if v != nil {
					nr[c+sfx.left] = v
				}
			}
		}
		return nr
	}

	var stats JoinStats
	rows := make([]records.Record, 0, len(t.rows))
	for _, l := range t.rows {
		var matches []int
		if k, ok := records.Key(l[key]); ok {
			matches = index[k]
		}
		if len(matches) == 0 {
			stats.Unmatched++
			nr := leftRow(l)
			for _, c := range rightCols {
				delete(nr, rightOut[c])
			}
			rows = append(rows, nr)
			continue
		}
		stats.Matched++
		stats.Fanout += len(matches) - 1
		for _, m := range matches {
			nr := leftRow(l)
			rr := right.rows[m]
			for _, c := range rightCols {
				if v, ok := rr[c]; ok && v != nil {
					nr[rightOut[c]] = v
				} else {
					delete(nr, rightOut[c])
				}
			}
			rows = append(rows, nr)
		}
	}
	return New(cols, rows), stats
}

// Group is one group produced by GroupBy: the key cell values (nil for null)
// and the indexes of its rows in table order.
type Group struct {
	Key  []any
	Rows []int
}

// GroupBy partitions rows by the given columns. Groups are returned in order
// of first encounter; null key cells form their own group.
func (t *Table) GroupBy(cols ...string) []Group {
	pos := map[string]int{}
	var groups []Group
	for i, r := range t.rows {
		var b strings.Builder
		for j, c := range cols {
			if j > 0 {
				b.WriteByte('\x1f')
			}
			if k, ok := records.Key(r[c]); ok {
				b.WriteByte('v')
				b.WriteString(k)
			} else {
				b.WriteByte('\x00')
			}
		}
		k := b.String()
		g, ok := pos[k]
		if !ok {
			key := make([]any, len(cols))
			for j, c := range cols {
				key[j] = r[c]
			}
			g = len(groups)
			pos[k] = g
			groups = append(groups, Group{Key: key})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}
	return groups
}

// SumRows adds the numeric cells of col over the given row indexes.
func (t *Table) SumRows(col string, idx []int) float64 {
	var s float64
	for _, i := range idx {
		if f, ok := t.rows[i].Float(col); ok {
			s += f
		}
	}
	return s
}
