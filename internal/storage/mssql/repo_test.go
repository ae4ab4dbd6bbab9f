package mssql

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ecommetl/internal/storage"
)

func TestDialect(t *testing.T) {
	d := Dialect{}
	cols := []storage.Column{{Name: "category", Kind: storage.KindText}, {Name: "ventas_totales", Kind: storage.KindNumeric}}
	got, err := d.CreateTableSQL(storage.TableDef(d, "dbo.ventas_categoria", cols))
	if err != nil {
		t.Fatal(err)
	}
	want := "IF OBJECT_ID(N'[dbo].[ventas_categoria]', N'U') IS NULL\nBEGIN\n" +
		"  CREATE TABLE [dbo].[ventas_categoria] (\n  [category] NVARCHAR(MAX),\n  [ventas_totales] FLOAT\n  );\nEND;"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestQuoting(t *testing.T) {
	tests := []struct{ in, want string }{
		{"merged", "[merged]"},
		{"dbo.merged", "[dbo].[merged]"},
		{"weird]id", "[weird]]id]"},
	}
	for _, tt := range tests {
		if got := quoteFQN(tt.in); got != tt.want {
			t.Errorf("quoteFQN(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := bulkTarget("merged"); got != "merged" {
		t.Errorf("bulkTarget(merged) = %q", got)
	}
	if got := bulkTarget("dbo.merged"); got != "[dbo].[merged]" {
		t.Errorf("bulkTarget(dbo.merged) = %q", got)
	}
}

func TestFactoryUsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotDSN string
	newRepository = func(ctx context.Context, dsn string) (*Repository, error) {
		gotDSN = dsn
		return nil, errors.New("hooked")
	}
	dsn := "sqlserver://sa:pw@localhost:1433?database=pipeline"
	_, err := storage.New(context.Background(), storage.Config{Kind: Kind, DSN: dsn})
	if err == nil || !strings.Contains(err.Error(), "hooked") || gotDSN != dsn {
		t.Fatalf("err = %v, dsn = %q", err, gotDSN)
	}
}
