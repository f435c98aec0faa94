package scheduler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mercator-hq/creditpilot/pkg/fetch"
	"github.com/mercator-hq/creditpilot/pkg/optimizer"
	"github.com/mercator-hq/creditpilot/pkg/pid"
	"github.com/mercator-hq/creditpilot/pkg/state"
	"github.com/mercator-hq/creditpilot/pkg/telemetry/metrics"
)

type stubSpend struct {
	monthSpend float64
	dailyRate  float64
	err        error
}

func (s *stubSpend) MonthToDateSpend(ctx context.Context) (float64, error) {
	return s.monthSpend, s.err
}

func (s *stubSpend) DailySpendRate(ctx context.Context, lookbackDays int) (float64, error) {
	return s.dailyRate, s.err
}

type stubBaseline struct {
	pct float64
}

func (s *stubBaseline) BaselinePercentage(ctx context.Context) (float64, error) {
	return s.pct, nil
}

func newTestOptimizer(t *testing.T, spendSource optimizer.SpendSource) *optimizer.Optimizer {
	t.Helper()

	opt, err := optimizer.New(optimizer.Config{
		Budget:       optimizer.DefaultBudget(),
		Gains:        pid.DefaultGains(),
		LookbackDays: 3,
	}, state.NewMemoryBackend(), spendSource, &stubBaseline{pct: 50}, nil)
	if err != nil {
		t.Fatalf("New optimizer: %v", err)
	}
	return opt
}

func TestNew_RejectsInvalidSchedule(t *testing.T) {
	opt := newTestOptimizer(t, &stubSpend{})

	_, err := New(Config{Schedule: "not a cron line"}, opt, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for invalid cron schedule")
	}
}

func TestRunCycle_SuccessRecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New("creditpilot", registry)
	opt := newTestOptimizer(t, &stubSpend{monthSpend: 100000, dailyRate: 15000})

	s, err := New(Config{Schedule: "@hourly"}, opt, m, nil, registry)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.runCycle(context.Background())

	expected := `
# HELP creditpilot_cycles_total Completed control cycles by outcome
# TYPE creditpilot_cycles_total counter
creditpilot_cycles_total{outcome="success"} 1
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "creditpilot_cycles_total"); err != nil {
		t.Errorf("cycles_total mismatch: %v", err)
	}
}

func TestRunCycle_FailureCountsAndKeepsGoing(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New("creditpilot", registry)
	opt := newTestOptimizer(t, &stubSpend{
		err: &fetch.Error{Source: "spend", Cause: errors.New("connection refused")},
	})

	s, err := New(Config{Schedule: "@hourly"}, opt, m, nil, registry)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	s.runCycle(context.Background())
	s.runCycle(context.Background())

	expectedCycles := `
# HELP creditpilot_cycles_total Completed control cycles by outcome
# TYPE creditpilot_cycles_total counter
creditpilot_cycles_total{outcome="failure"} 2
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expectedCycles), "creditpilot_cycles_total"); err != nil {
		t.Errorf("cycles_total mismatch: %v", err)
	}

	expectedFetch := `
# HELP creditpilot_fetch_errors_total Fetch failures by external source
# TYPE creditpilot_fetch_errors_total counter
creditpilot_fetch_errors_total{source="spend"} 2
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expectedFetch), "creditpilot_fetch_errors_total"); err != nil {
		t.Errorf("fetch_errors_total mismatch: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	opt := newTestOptimizer(t, &stubSpend{})

	s, err := New(Config{Schedule: "@hourly", ListenAddress: "127.0.0.1:0"}, opt, nil, nil, registry)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestStartStop(t *testing.T) {
	opt := newTestOptimizer(t, &stubSpend{})

	s, err := New(Config{Schedule: "0 0 1 1 *"}, opt, nil, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !s.IsRunning() {
		t.Error("expected scheduler to be running after Start")
	}
	if err := s.Start(ctx); err == nil {
		t.Error("expected second Start to fail")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("expected scheduler to be stopped after Stop")
	}
	s.Stop()
}
