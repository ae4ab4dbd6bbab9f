package app

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ecommetl/internal/config"
	"ecommetl/internal/metrics"
	"ecommetl/internal/metrics/datadog"
	"ecommetl/internal/metrics/prompush"
)

// DatadogNamespace prefixes every DogStatsD metric name.
const DatadogNamespace = "ecommetl."

// SetupMetrics installs the backend named by p.Metrics.Backend and returns a
// flush function to defer. "none" or empty keeps the nop backend.
func SetupMetrics(p config.Pipeline) (flush func(), err error) {
	var b metrics.Backend
	switch p.Metrics.Backend {
	case "", "none":
		return func() {}, nil
	case "prometheus":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  DatadogNamespace,
			GlobalTags: []string{"job:" + p.Job},
		})
	default:
		return nil, fmt.Errorf("metrics: unknown backend %q", p.Metrics.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("metrics: %s: %w", p.Metrics.Backend, err)
	}
	log.Printf("metrics: backend=%s job=%s", p.Metrics.Backend, p.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
		metrics.SetBackend(nil)
	}, nil
}

// OpenLog returns a writer teeing to stderr and the file at path (appended,
// parent directories created). An empty path logs to stderr only.
func OpenLog(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("log: create %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("log: open %s: %w", path, err)
	}
	return io.MultiWriter(os.Stderr, f), f.Close, nil
}

// LogSummary prints the end-of-run block.
func LogSummary(s *Summary) {
	log.Printf("==== pipeline summary ====")
	log.Printf("run=%s job=%s duration=%s", s.RunID, s.Job, s.Duration.Truncate(time.Millisecond))
	for _, snap := range []struct {
		name string
		rows int
		path string
	}{
		{"catalog", s.Snapshots.Catalog.Rows, s.Snapshots.Catalog.Path},
		{"sales", s.Snapshots.Sales.Rows, s.Snapshots.Sales.Path},
		{"inventory", s.Snapshots.Inventory.Rows, s.Snapshots.Inventory.Path},
	} {
		if snap.path != "" {
			log.Printf("snapshot %-9s rows=%d -> %s", snap.name, snap.rows, snap.path)
		}
	}
	if res := s.Result; res != nil {
		log.Printf("merged=%d dropped=%d critical_stock=%d top_productos=%d categorias=%d",
			res.Merged.Len(), res.Dropped, res.CriticalStock.Len(), res.TopProducts.Len(), res.CategorySales.Len())
	}
	if failed := s.Quality.Failed(); len(failed) > 0 {
		log.Printf("quality: FAILED %v", failed)
	} else if len(s.Quality.Results) > 0 {
		log.Printf("quality: ok")
	}
	for _, f := range s.Files.All() {
		log.Printf("file: %s", f)
	}
	if len(s.Stored) > 0 {
		names := make([]string, 0, len(s.Stored))
		for n := range s.Stored {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			log.Printf("stored %s rows=%d", n, s.Stored[n])
		}
	}
}
