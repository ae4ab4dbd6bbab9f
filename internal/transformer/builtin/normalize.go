package builtin

import (
	"strings"

	"ecommetl/pkg/records"
)

const (
	nbspace = "\u00a0"
	// mojibake of NBSP when UTF-8 bytes are read as Latin-1.
	latinNBSP = "\u00c2\u00a0"
)

// Normalize trims string cells and turns non-breaking spaces, including their
// Latin-1 mojibake, into ASCII spaces.
type Normalize struct{}

func (Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for k, v := range r {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if strings.Contains(s, nbspace) {
				s = strings.ReplaceAll(s, latinNBSP, " ")
				s = strings.ReplaceAll(s, nbspace, " ")
			}
			if HasEdgeSpace(s) {
				s = strings.TrimSpace(s)
			}
			r[k] = s
		}
	}
	return in
}

// HasEdgeSpace reports whether s starts or ends with ASCII whitespace.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
