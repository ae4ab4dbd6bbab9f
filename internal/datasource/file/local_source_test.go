package file

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLocalOpen covers success, a missing file and a pre-canceled context.
func TestLocalOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sales := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(sales, []byte("product_id,quantity\n1,3\n"), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name        string
		path        string
		ctx         context.Context
		wantErrIs   error
		wantContent string
	}{
		{name: "reads_content", path: sales, ctx: context.Background(), wantContent: "product_id,quantity\n1,3\n"},
		{name: "missing_file", path: filepath.Join(dir, "inventory.csv"), ctx: context.Background(), wantErrIs: os.ErrNotExist},
		{name: "canceled_context", path: sales, ctx: canceled, wantErrIs: context.Canceled},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			rc, err := NewLocal(c.path).Open(c.ctx)
			if c.wantErrIs != nil {
				if !errors.Is(err, c.wantErrIs) {
					t.Fatalf("err = %v; want errors.Is %v", err, c.wantErrIs)
				}
				if c.wantErrIs == os.ErrNotExist && !strings.Contains(err.Error(), c.path) {
					t.Fatalf("error %q should name the path", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer rc.Close()
			b, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(b) != c.wantContent {
				t.Fatalf("content = %q; want %q", b, c.wantContent)
			}
		})
	}
}
