package progress

import (
	"testing"
	"time"
)

func TestSnapshotPercent(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want float64
	}{
		{"halfway", Snapshot{RowsInserted: 50, RowsTotal: 100}, 50},
		{"done", Snapshot{RowsInserted: 100, RowsTotal: 100}, 100},
		{"unknown total", Snapshot{RowsInserted: 50}, -1},
		{"overshoot capped", Snapshot{RowsInserted: 120, RowsTotal: 100}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Percent(); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotRowsPerSecond(t *testing.T) {
	s := Snapshot{RowsInserted: 1000, Elapsed: 2 * time.Second}
	if got := s.RowsPerSecond(); got != 500 {
		t.Errorf("RowsPerSecond() = %d, want 500", got)
	}
	if got := (Snapshot{RowsInserted: 10}).RowsPerSecond(); got != 0 {
		t.Errorf("RowsPerSecond() with zero elapsed = %d, want 0", got)
	}
}

func TestTrackerSetIsCumulative(t *testing.T) {
	tr := NewTracker("xxx_people", 10)
	tr.Set(4)
	tr.Set(10)
	if got := tr.Current(); got != 10 {
		t.Errorf("Current() = %d, want 10", got)
	}
	tr.Finish()
}
