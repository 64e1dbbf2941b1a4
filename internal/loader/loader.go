// Package loader reads records from a source table and submits them to a
// sink in fixed-size batches, preserving source order. A single batch is
// in flight at a time; a failed submit aborts the run with the count of
// rows already committed.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"dbf2sql/internal/logging"
	"dbf2sql/internal/source"
)

// DefaultBatchSize is used when the caller does not set one.
const DefaultBatchSize = 1000

// Sink receives batches of rows. Each WriteBatch call either commits every
// row in the batch or none of them.
type Sink interface {
	WriteBatch(ctx context.Context, rows [][]any) error
}

// ProgressFunc is called after each committed batch with cumulative counts.
type ProgressFunc func(inserted, read int64)

// Options configure a load.
type Options struct {
	BatchSize int
	Progress  ProgressFunc
}

// Result summarizes a finished (or aborted) load.
type Result struct {
	RowsRead     int64
	RowsInserted int64
	RowsSkipped  int64
	Duration     time.Duration
}

// Run drains table into sink. On error the returned Result still carries
// the counts of rows read and committed so far. Cancellation is observed
// between batches only; an in-flight batch always runs to completion.
func Run(ctx context.Context, table source.Table, sink Sink, opts Options) (Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	start := time.Now()
	res := Result{}
	batch := make([][]any, 0, batchSize)

	// A submitted batch always runs to completion; cancellation is
	// observed between batches only.
	sinkCtx := context.WithoutCancel(ctx)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.WriteBatch(sinkCtx, batch); err != nil {
			return fmt.Errorf("flush batch of %d rows after %d committed: %w", len(batch), res.RowsInserted, err)
		}
		res.RowsInserted += int64(len(batch))
		batch = batch[:0]
		if opts.Progress != nil {
			opts.Progress(res.RowsInserted, res.RowsRead)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		row, err := table.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("read record %d: %w", res.RowsRead+1, err)
		}

		res.RowsRead++
		batch = append(batch, cleanRow(row))
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				res.Duration = time.Since(start)
				return res, err
			}
		}
	}

	if err := flush(); err != nil {
		res.Duration = time.Since(start)
		return res, err
	}

	res.RowsSkipped = int64(table.Deleted())
	res.Duration = time.Since(start)
	if res.RowsSkipped > 0 {
		logging.Debug("Skipped %d deleted records", res.RowsSkipped)
	}
	return res, nil
}

// cleanRow normalizes raw field values before they reach the sink: text is
// trimmed and empty strings become NULL, as do zero dates.
func cleanRow(row []any) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = cleanValue(v)
	}
	return out
}

func cleanValue(v any) any {
	switch val := v.(type) {
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return nil
		}
		return trimmed
	case time.Time:
		if val.IsZero() {
			return nil
		}
		return val
	default:
		return v
	}
}
