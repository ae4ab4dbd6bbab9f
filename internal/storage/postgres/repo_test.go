package postgres

import (
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"ecommetl/internal/storage"
	"ecommetl/internal/table"
	"ecommetl/pkg/records"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestSplitFQN(t *testing.T) {
	tests := []struct {
		in   string
		want pgx.Identifier
	}{
		{"merged", pgx.Identifier{"merged"}},
		{"public.merged", pgx.Identifier{"public", "merged"}},
		{"public..merged", pgx.Identifier{"public", "merged"}},
	}
	for _, tt := range tests {
		if got := splitFQN(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFQN(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDialect(t *testing.T) {
	d := Dialect{}
	cols := []storage.Column{{Name: "product_id", Kind: storage.KindText}, {Name: "total_vendido", Kind: storage.KindNumeric}}
	got, err := d.CreateTableSQL(storage.TableDef(d, "public.top_productos", cols))
	if err != nil {
		t.Fatal(err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"public\".\"top_productos\" (\n  \"product_id\" TEXT,\n  \"total_vendido\" DOUBLE PRECISION\n);"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestDescribe(t *testing.T) {
	plain := errors.New("plain")
	if describe(plain) != plain {
		t.Fatal("describe changed a non-Postgres error")
	}
	pgErr := &pgconn.PgError{Code: "23502", Detail: "Failing row contains (null)."}
	got := describe(pgErr)
	if !errors.Is(got, pgErr) || !strings.Contains(got.Error(), "Failing row") || !strings.Contains(got.Error(), "23502") {
		t.Fatalf("describe = %v", got)
	}
}

func TestNewRepositoryBadDSN(t *testing.T) {
	if _, err := NewRepository(context.Background(), "postgres://%zz"); err == nil {
		t.Fatal("NewRepository(bad dsn) error = nil")
	}
}

// TestExportIntegration runs against a real server when PIPELINE_TEST_POSTGRES_DSN is set.
func TestExportIntegration(t *testing.T) {
	dsn := os.Getenv("PIPELINE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PIPELINE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	repo, err := storage.New(ctx, storage.Config{Kind: Kind, DSN: dsn})
	if err != nil {
		t.Fatal(err)
	}
	defer repo.Close()

	if err := repo.Exec(ctx, `DROP TABLE IF EXISTS "it_top_productos"`); err != nil {
		t.Fatal(err)
	}
	tb := table.New([]string{"product_id", "total_vendido"}, []records.Record{
		{"product_id": "1", "total_vendido": 3.0},
		{"product_id": "2"},
	})
	stats, err := storage.Export(ctx, repo, "top_productos", tb, storage.ExportOptions{Prefix: "it_", AutoCreate: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 2 {
		t.Fatalf("rows = %d, want 2", stats.Rows)
	}
}
