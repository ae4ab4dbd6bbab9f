package builtin

import (
	"sort"
	"strings"

	"ecommetl/pkg/records"
)

// DeDup collapses records sharing the same key and keeps one winner per key.
//
// Policies:
//
//   - "keep-first"   : the earliest occurrence wins
//   - "keep-last"    : the latest occurrence wins (default)
//   - "most-complete": the record with the most non-null cells wins; ties
//     break by keep-last
//
// Key cells are compared in canonical form (records.Key), so a numeric 7 and
// the string "7" collide. Winners are emitted in input order; records missing
// a key field pass through after them.
type DeDup struct {
	Keys   []string
	Policy string

	// PreferFields add weight to "most-complete" scoring when non-null.
	PreferFields []string
}

func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	policy := strings.ToLower(strings.TrimSpace(d.Policy))
	if policy == "" {
		policy = "keep-last"
	}

	type slot struct {
		index int
		score int
	}
	winners := make(map[string]slot, len(in))

	prefer := make(map[string]struct{}, len(d.PreferFields))
	for _, f := range d.PreferFields {
		prefer[f] = struct{}{}
	}

	keyOf := func(r records.Record) (string, bool) {
		var b strings.Builder
		for i, k := range d.Keys {
			v, ok := r[k]
			if !ok {
				return "", false
			}
			if i > 0 {
				b.WriteByte('\x1f')
			}
			if s, ok := records.Key(v); ok {
				b.WriteString(s)
			} else {
				b.WriteByte('\x00')
			}
		}
		return b.String(), true
	}

	scoreOf := func(r records.Record) int {
		score, bonus := 0, 0
		for k, v := range r {
			if v == nil || v == "" {
				continue
			}
			score++
			if _, ok := prefer[k]; ok {
				bonus++
			}
		}
		return score*10 + bonus
	}

	var passthrough []int
	for i, r := range in {
		key, ok := keyOf(r)
		if !ok {
			passthrough = append(passthrough, i)
			continue
		}
		prev, exists := winners[key]
		switch policy {
		case "keep-first":
			if !exists {
				winners[key] = slot{index: i}
			}
		case "most-complete":
			s := slot{index: i, score: scoreOf(r)}
			if !exists || s.score >= prev.score {
				winners[key] = s
			}
		default:
			winners[key] = slot{index: i}
		}
	}

	idx := make([]int, 0, len(winners))
	for _, s := range winners {
		idx = append(idx, s.index)
	}
	sort.Ints(idx)

	out := make([]records.Record, 0, len(idx)+len(passthrough))
	for _, i := range idx {
		out = append(out, in[i])
	}
	for _, i := range passthrough {
		out = append(out, in[i])
	}
	return out
}
