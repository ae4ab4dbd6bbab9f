// Package app runs one pipeline execution end to end: ingest, transform,
// quality checks, reports and optional storage. Every phase is timed and
// reported to the metrics facade under the configured job name.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"ecommetl/internal/config"
	"ecommetl/internal/engine"
	"ecommetl/internal/ingest"
	"ecommetl/internal/metrics"
	"ecommetl/internal/quality"
	"ecommetl/internal/report"
	"ecommetl/internal/storage"
)

// Summary describes a finished run.
type Summary struct {
	RunID    string
	Job      string
	Started  time.Time
	Duration time.Duration

	Snapshots ingest.Snapshots
	Result    *engine.Result
	Quality   quality.Report
	Files     report.Files

	// Stored maps each persisted table to the rows written. Nil when storage
	// is disabled.
	Stored map[string]int64
}

// Runner holds the collaborators of a run. Zero fields are built from the
// configuration.
type Runner struct {
	Config config.Pipeline

	Ingestor *ingest.Ingestor
	Reports  *report.Writer

	// NewRunID defaults to uuid.NewString.
	NewRunID func() string
	// Now defaults to time.Now.
	Now func() time.Time
}

// New returns a Runner for p.
func New(p config.Pipeline) *Runner {
	return &Runner{Config: p}
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Run executes the pipeline once. Quality failures are logged as warnings;
// any other phase error stops the run and is returned wrapped with the phase
// name.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	p := r.Config
	newID := r.NewRunID
	if newID == nil {
		newID = uuid.NewString
	}
	sum := &Summary{RunID: newID(), Job: p.Job, Started: r.now()}
	log.Printf("pipeline: run=%s job=%s started", sum.RunID, p.Job)

	ing := r.Ingestor
	if ing == nil {
		ing = ingest.FromConfig(p)
	}
	var in engine.Inputs
	err := r.step(metrics.StepIngest, func() error {
		var err error
		in, sum.Snapshots, err = ing.Ingest(ctx)
		return err
	})
	if err != nil {
		return sum, fmt.Errorf("ingest: %w", err)
	}
	if in.Sales != nil {
		metrics.RecordRow(p.Job, metrics.KindSalesIn, int64(in.Sales.Len()))
	}

	eng := engine.New(engine.Defaults{
		MinStock: p.Processing.DefaultMinStock,
		Cost:     p.Processing.DefaultCost,
	})
	err = r.step(metrics.StepTransform, func() error {
		var err error
		sum.Result, err = eng.Run(in)
		return err
	})
	if err != nil {
		return sum, fmt.Errorf("transform: %w", err)
	}
	res := sum.Result
	metrics.RecordRow(p.Job, metrics.KindMerged, int64(res.Merged.Len()))
	metrics.RecordRow(p.Job, metrics.KindDroppedInvalid, int64(res.Dropped))
	metrics.RecordRow(p.Job, metrics.KindCriticalStock, int64(res.CriticalStock.Len()))

	_ = r.step(metrics.StepQuality, func() error {
		sum.Quality = quality.Run(res.Merged)
		if failed := sum.Quality.Failed(); len(failed) > 0 {
			log.Printf("quality: WARNING %d check(s) failed: %v", len(failed), failed)
			return errQualityFailed
		}
		log.Printf("quality: all %d checks passed", len(sum.Quality.Results))
		return nil
	})

	w := r.Reports
	if w == nil {
		w = report.New(p.Output.ReportsPath, p.Output.Excel)
	}
	err = r.step(metrics.StepReport, func() error {
		var err error
		sum.Files, err = w.Write(res, sum.Quality, report.RunInfo{RunID: sum.RunID, Job: p.Job})
		return err
	})
	if err != nil {
		return sum, fmt.Errorf("report: %w", err)
	}

	if p.Storage.Kind != "" {
		err = r.step(metrics.StepStore, func() error {
			var err error
			sum.Stored, err = store(ctx, p, res, sum.RunID)
			return err
		})
		if err != nil {
			return sum, fmt.Errorf("store: %w", err)
		}
	}

	sum.Duration = r.now().Sub(sum.Started)
	return sum, nil
}

// errQualityFailed marks the quality step as failed in metrics without
// stopping the run.
var errQualityFailed = errors.New("quality checks failed")

func (r *Runner) step(name string, fn func() error) error {
	start := r.now()
	err := fn()
	d := r.now().Sub(start)
	metrics.RecordStep(r.Config.Job, name, err, d)
	if err != nil && !errors.Is(err, errQualityFailed) {
		log.Printf("%s: failed after %s: %v", name, d.Truncate(time.Millisecond), err)
	}
	return err
}

// store opens the configured repository and exports the four result tables
// in report order.
func store(ctx context.Context, p config.Pipeline, res *engine.Result, runID string) (map[string]int64, error) {
	repo, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DSN})
	if err != nil {
		return nil, err
	}
	defer repo.Close()

	opts := storage.ExportOptions{
		Prefix:     p.Storage.TablePrefix,
		AutoCreate: p.Storage.AutoCreateTable,
		BatchSize:  p.Storage.BatchSize,
		RunID:      runID,
	}
	tables := res.Tables()
	out := make(map[string]int64, len(tables))
	for _, name := range engine.TableNames {
		stats, err := storage.Export(ctx, repo, name, tables[name], opts)
		metrics.RecordRow(p.Job, metrics.KindInserted, stats.Rows)
		metrics.RecordBatches(p.Job, stats.Batches)
		if err != nil {
			return out, err
		}
		out[name] = stats.Rows
	}
	return out, nil
}
