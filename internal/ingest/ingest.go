// Package ingest loads the three raw input tables concurrently and snapshots
// them as Parquet.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"ecommetl/internal/config"
	"ecommetl/internal/datasource"
	"ecommetl/internal/datasource/file"
	"ecommetl/internal/datasource/httpds"
	"ecommetl/internal/engine"
	pcsv "ecommetl/internal/parser/csv"
	pjson "ecommetl/internal/parser/json"
	"ecommetl/internal/snapshot"
	"ecommetl/internal/table"
)

// Snapshot file names under SnapshotDir.
const (
	ProductsFile  = "products.parquet"
	SalesFile     = "sales.parquet"
	InventoryFile = "inventory.parquet"
)

// Ingestor reads the catalog feed (JSON) and the sales and inventory files
// (CSV).
type Ingestor struct {
	Catalog   datasource.Source
	Sales     datasource.Source
	Inventory datasource.Source

	// SnapshotDir receives the Parquet snapshots. Empty disables them.
	SnapshotDir string
}

// Snapshots describes the files written by one Ingest call.
type Snapshots struct {
	Catalog   snapshot.Info
	Sales     snapshot.Info
	Inventory snapshot.Info
}

// FromConfig wires the configured catalog URL and local files.
func FromConfig(p config.Pipeline) *Ingestor {
	client := httpds.NewClient(httpds.Config{
		Timeout:     p.API.Timeout,
		MaxRetries:  p.API.MaxRetries,
		BaseHeaders: http.Header{"Accept": {"application/json"}},
	})
	return &Ingestor{
		Catalog:     httpds.NewSource(client, p.API.URL, nil),
		Sales:       file.NewLocal(p.DataSources.SalesFile),
		Inventory:   file.NewLocal(p.DataSources.InventoryFile),
		SnapshotDir: p.Processing.OutputPath,
	}
}

// Ingest loads the three tables. The first failure cancels the other loads.
func (i *Ingestor) Ingest(ctx context.Context) (engine.Inputs, Snapshots, error) {
	var in engine.Inputs
	var snaps Snapshots

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := load(ctx, "catalog", i.Catalog, decodeCatalog)
		if err != nil {
			return err
		}
		in.Catalog = t
		snaps.Catalog, err = i.snapshot(ProductsFile, t)
		return err
	})
	g.Go(func() error {
		t, err := load(ctx, "sales", i.Sales, decodeCSV)
		if err != nil {
			return err
		}
		in.Sales = t
		snaps.Sales, err = i.snapshot(SalesFile, t)
		return err
	})
	g.Go(func() error {
		t, err := load(ctx, "inventory", i.Inventory, decodeCSV)
		if err != nil {
			return err
		}
		in.Inventory = t
		snaps.Inventory, err = i.snapshot(InventoryFile, t)
		return err
	})
	if err := g.Wait(); err != nil {
		return engine.Inputs{}, Snapshots{}, err
	}
	return in, snaps, nil
}

type decodeFunc func(name string, rc io.Reader) (*table.Table, error)

func load(ctx context.Context, name string, src datasource.Source, decode decodeFunc) (*table.Table, error) {
	if src == nil {
		return nil, fmt.Errorf("ingest %s: no source configured", name)
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}
	defer rc.Close()

	t, err := decode(name, rc)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", name, err)
	}
	log.Printf("ingest: %s rows=%d columns=%v", name, t.Len(), t.Columns())
	return t, nil
}

func decodeCatalog(_ string, r io.Reader) (*table.Table, error) {
	return pjson.DecodeTable(r, pjson.Options{AllowArrays: true})
}

func decodeCSV(name string, r io.Reader) (*table.Table, error) {
	p := pcsv.NewParser(pcsv.Options{HasHeader: true, TrimSpace: true})
	t, skipped, err := p.ParseTable(r)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("ingest: WARNING %s skipped %d malformed rows", name, skipped)
	}
	return t, nil
}

func (i *Ingestor) snapshot(name string, t *table.Table) (snapshot.Info, error) {
	if i.SnapshotDir == "" {
		return snapshot.Info{}, nil
	}
	info, err := snapshot.Write(filepath.Join(i.SnapshotDir, name), t)
	if err != nil {
		return info, fmt.Errorf("ingest: %w", err)
	}
	log.Printf("ingest: snapshot %s rows=%d xxh3=%s", info.Path, info.Rows, info.Fingerprint)
	return info, nil
}
