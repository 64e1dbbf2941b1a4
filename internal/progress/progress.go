// Package progress tracks how far a load has gotten. Snapshots feed the
// interactive UI; Tracker renders a terminal bar in scripted runs.
package progress

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Snapshot is one point-in-time view of a running load.
type Snapshot struct {
	Table        string
	RowsInserted int64
	RowsRead     int64
	RowsTotal    int64
	Elapsed      time.Duration
}

// Percent returns completion as 0..100, or -1 when the total is unknown.
func (s Snapshot) Percent() float64 {
	if s.RowsTotal <= 0 {
		return -1
	}
	pct := float64(s.RowsInserted) / float64(s.RowsTotal) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}

// RowsPerSecond returns the average insert rate so far.
func (s Snapshot) RowsPerSecond() int64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return int64(float64(s.RowsInserted) / secs)
}

func (s Snapshot) String() string {
	if pct := s.Percent(); pct >= 0 {
		return fmt.Sprintf("%s: %d/%d rows (%.1f%%)", s.Table, s.RowsInserted, s.RowsTotal, pct)
	}
	return fmt.Sprintf("%s: %d rows", s.Table, s.RowsInserted)
}

// Tracker renders load progress as a terminal bar in scripted mode.
type Tracker struct {
	bar       *progressbar.ProgressBar
	total     int64
	current   atomic.Int64
	startTime time.Time
}

// NewTracker creates a tracker for a load of total rows into table.
func NewTracker(table string, total int64) *Tracker {
	t := &Tracker{
		total:     total,
		startTime: time.Now(),
	}
	barMax := total
	if barMax <= 0 {
		// Unknown total renders as a spinner.
		barMax = -1
	}
	t.bar = progressbar.NewOptions64(
		barMax,
		progressbar.OptionSetDescription(fmt.Sprintf("Loading %s", table)),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("rows"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
	return t
}

// Set moves the bar to the cumulative inserted count.
func (t *Tracker) Set(inserted int64) {
	prev := t.current.Swap(inserted)
	if delta := inserted - prev; delta > 0 && t.bar != nil {
		t.bar.Add64(delta)
	}
}

// Current returns the current count.
func (t *Tracker) Current() int64 {
	return t.current.Load()
}

// Finish completes the bar.
func (t *Tracker) Finish() {
	if t.bar != nil {
		t.bar.Finish()
	}
}
