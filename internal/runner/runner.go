// Package runner orchestrates one conversion run end to end: connect,
// read the source header, prepare the target table, and stream the data.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dbf2sql/internal/driver"
	"dbf2sql/internal/history"
	"dbf2sql/internal/loader"
	"dbf2sql/internal/logging"
	"dbf2sql/internal/mssql"
	"dbf2sql/internal/schema"
	"dbf2sql/internal/source/dbf"
)

// Params collect everything one run needs. Spec carries credentials in
// memory only.
type Params struct {
	Spec      driver.ConnSpec
	File      string
	Encoding  string
	Schema    string
	Table     string
	BatchSize int
	Progress  loader.ProgressFunc
	// OnOpen, when set, receives the header record count once the source
	// file is open and mapped, before any rows move.
	OnOpen  func(recordCount int64)
	History *history.Store // optional
}

// Outcome reports what a run did, including partial counts on failure.
type Outcome struct {
	RunID  string
	Table  string
	Status string
	Result loader.Result
}

// Run performs one conversion. The connection is established and verified
// before the source file is opened, so an unreachable server fails fast
// without touching the input. Cancellation via ctx stops the load at the
// next batch boundary.
func Run(ctx context.Context, p Params) (Outcome, error) {
	out := Outcome{Table: p.Table, Status: history.StatusFailed}

	if p.Schema == "" {
		p.Schema = schema.DefaultSchema
	}

	client, err := mssql.Connect(ctx, p.Spec)
	if err != nil {
		return out, err
	}
	defer client.Close()

	table, err := dbf.Open(p.File, p.Encoding)
	if err != nil {
		return out, err
	}
	defer table.Close()

	cols, err := schema.MapFields(table.Fields())
	if err != nil {
		return out, err
	}

	if p.OnOpen != nil {
		p.OnOpen(int64(table.RecordCount()))
	}

	if p.History != nil {
		id, err := p.History.Begin(p.File, p.Spec.Server, p.Spec.Database, p.Table)
		if err != nil {
			logging.Warn("Could not record run start: %v", err)
		} else {
			out.RunID = id
		}
	}

	if err := client.EnsureTable(ctx, p.Schema, p.Table, cols); err != nil {
		finishHistory(p.History, out.RunID, history.StatusFailed, loader.Result{}, err)
		return out, err
	}

	sink := client.NewBulkSink(p.Schema, p.Table, schema.ColumnNames(cols), p.BatchSize)

	logging.Info("Loading %s into %s (%d records declared)",
		p.File, schema.QualifyTable(p.Schema, p.Table), table.RecordCount())

	res, err := loader.Run(ctx, table, sink, loader.Options{
		BatchSize: p.BatchSize,
		Progress:  p.Progress,
	})
	out.Result = res
	if err != nil {
		status := history.StatusFailed
		if errors.Is(err, context.Canceled) {
			status = history.StatusCancelled
			err = fmt.Errorf("cancelled after %d rows committed: %w", res.RowsInserted, err)
		}
		out.Status = status
		finishHistory(p.History, out.RunID, status, res, err)
		return out, err
	}

	out.Status = history.StatusCompleted
	finishHistory(p.History, out.RunID, history.StatusCompleted, res, nil)

	logging.Info("Loaded %d rows into %s in %s (%d deleted records skipped)",
		res.RowsInserted, schema.QualifyTable(p.Schema, p.Table),
		res.Duration.Round(time.Millisecond), res.RowsSkipped)
	return out, nil
}

func finishHistory(store *history.Store, runID, status string, res loader.Result, runErr error) {
	if store == nil || runID == "" {
		return
	}
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	if err := store.Finish(runID, status, res.RowsInserted, res.RowsSkipped, msg); err != nil {
		logging.Warn("Could not record run outcome: %v", err)
	}
}
