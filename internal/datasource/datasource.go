// Package datasource defines where raw input bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a raw input stream. Callers must close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
