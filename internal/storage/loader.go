package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn inserts one batch of rows aligned to columns and returns the number
// of rows inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadStats summarizes a LoadBatches call.
type LoadStats struct {
	Rows    int64
	Batches int64
}

// LoadBatches drains rows from in, groups them into batches of batchSize and
// calls copyFn per non-empty batch. Rows reported by a failing copyFn still
// count toward the total. A progress line is logged after each flush.
//
// It returns ctx.Err() when ctx is canceled before in is closed.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (LoadStats, error) {
	if batchSize <= 0 {
		return LoadStats{}, fmt.Errorf("storage: batchSize must be > 0")
	}
	if copyFn == nil {
		return LoadStats{}, fmt.Errorf("storage: copyFn must not be nil")
	}

	var (
		stats LoadStats
		batch = make([][]any, 0, batchSize)
		start = time.Now()
		last  = start
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		stats.Rows += n
		batch = batch[:0]
		if err != nil {
			log.Printf("loader: copy failed after=%d total=%d err=%v", n, stats.Rows, err)
			return err
		}

		stats.Batches++
		now := time.Now()
		since := now.Sub(last)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Printf("loader: batch #%d rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			stats.Batches, rps, n, stats.Rows, now.Sub(start).Truncate(time.Millisecond))
		last = now
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return stats, err
				}
				return stats, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}
}
