package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mercator-hq/creditpilot/pkg/optimizer"
	"github.com/mercator-hq/creditpilot/pkg/pid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testDecision(ts time.Time, final float64) *optimizer.Decision {
	return &optimizer.Decision{
		CycleID:         uuid.NewString(),
		Timestamp:       ts,
		FinalPercentage: final,
		BasePercentage:  35,
		RawPercentage:   final,
		Components:      pid.Output{P: 1.5, I: 0.25, D: -0.1},
		SpendError:      1000,
		IdealSpend:      245000,
		TargetDailyRate: 16000,
		Snapshot: optimizer.SpendSnapshot{
			CurrentMonthSpend: 244000,
			DailySpendRate:    15500,
		},
	}
}

func TestStore_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		d := testDecision(base.Add(time.Duration(i)*time.Hour), float64(30+i))
		if err := s.Record(ctx, d); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	records, err := s.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(records))
	}

	// Newest first.
	if records[0].FinalPercentage != 34 {
		t.Errorf("expected newest record first, got final %v", records[0].FinalPercentage)
	}

	got := records[4]
	if got.CurrentMonthSpend != 244000 || got.P != 1.5 || got.I != 0.25 || got.D != -0.1 {
		t.Errorf("record fields did not round trip: %+v", got)
	}
	if !got.Timestamp.Equal(base) {
		t.Errorf("timestamp did not round trip: got %v, want %v", got.Timestamp, base)
	}
}

func TestStore_QueryTimeRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		if err := s.Record(ctx, testDecision(base.Add(time.Duration(i)*time.Hour), 40)); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.Query(ctx, QueryFilter{
		Since: base.Add(2 * time.Hour),
		Until: base.Add(5 * time.Hour),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 4 {
		t.Errorf("expected 4 records in range, got %d", len(records))
	}
}

func TestStore_Latest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		if err := s.Record(ctx, testDecision(base.Add(time.Duration(i)*time.Hour), 40)); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.Latest(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

func TestStore_OverriddenRoundTrips(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	d := testDecision(time.Now(), 0)
	d.Overridden = true
	if err := s.Record(ctx, d); err != nil {
		t.Fatal(err)
	}

	records, err := s.Latest(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || !records[0].Overridden {
		t.Error("overridden flag did not round trip")
	}
}

func TestStore_Prune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		if err := s.Record(ctx, testDecision(base.AddDate(0, 0, i), 40)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Prune(ctx, base.AddDate(0, 0, 3))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 pruned, got %d", n)
	}

	remaining, err := s.Query(ctx, QueryFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 3 {
		t.Errorf("expected 3 remaining, got %d", len(remaining))
	}
}
