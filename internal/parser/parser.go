// Package parser defines the contract shared by the record parsers.
package parser

import (
	"io"

	"ecommetl/pkg/records"
)

// Parser turns raw input into records. The int result counts rows skipped as
// malformed.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
