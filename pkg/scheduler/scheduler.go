package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/mercator-hq/creditpilot/pkg/fetch"
	"github.com/mercator-hq/creditpilot/pkg/history"
	"github.com/mercator-hq/creditpilot/pkg/optimizer"
	"github.com/mercator-hq/creditpilot/pkg/telemetry/metrics"
)

// pruneSchedule is when daemon mode trims old audit records.
const pruneSchedule = "0 3 * * *"

// Config configures daemon mode.
type Config struct {
	// Schedule is the cron expression driving decision cycles.
	Schedule string

	// ListenAddress exposes /metrics and /healthz when non-empty.
	ListenAddress string

	// RetentionDays prunes audit records older than this once a day.
	// Zero keeps everything.
	RetentionDays int
}

// Scheduler drives repeated decision cycles on a cron schedule.
type Scheduler struct {
	config    Config
	optimizer *optimizer.Optimizer
	metrics   *metrics.Metrics
	audit     *history.Store
	cron      *cron.Cron
	server    *http.Server
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
}

// New creates a daemon scheduler. metrics and audit may be nil; registry is
// only used when Config.ListenAddress is set.
func New(cfg Config, opt *optimizer.Optimizer, m *metrics.Metrics, audit *history.Store, registry *prometheus.Registry) (*Scheduler, error) {
	if opt == nil {
		return nil, fmt.Errorf("optimizer is required")
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", cfg.Schedule, err)
	}

	s := &Scheduler{
		config:    cfg,
		optimizer: opt,
		metrics:   m,
		audit:     audit,
		cron:      cron.New(),
		logger:    slog.Default().With("component", "scheduler"),
	}

	if cfg.ListenAddress != "" {
		mux := http.NewServeMux()
		if registry != nil {
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		}
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})
		s.server = &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s, nil
}

// Start schedules the cycle and pruning jobs and serves the metrics
// endpoint. It returns immediately; use Run for a blocking daemon.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runCycle(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule cycles: %w", err)
	}

	if s.audit != nil && s.config.RetentionDays > 0 {
		if _, err := s.cron.AddFunc(pruneSchedule, func() {
			s.runPruning(ctx)
		}); err != nil {
			return fmt.Errorf("failed to schedule pruning: %w", err)
		}
	}

	if s.server != nil {
		go func() {
			s.logger.Info("metrics endpoint listening", "address", s.server.Addr)
			if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("scheduler started",
		"schedule", s.config.Schedule,
		"retention_days", s.config.RetentionDays,
	)
	return nil
}

// Run starts the scheduler and blocks until the context is cancelled,
// then shuts everything down.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// runCycle executes one decision cycle and records its outcome. Cycle
// failures are logged and counted, never propagated; the daemon keeps
// ticking.
func (s *Scheduler) runCycle(ctx context.Context) {
	start := time.Now()

	decision, err := s.optimizer.RunCycle(ctx)

	if s.metrics != nil {
		s.metrics.ObserveCycleDuration(time.Since(start))
	}

	if err != nil {
		s.logger.Error("decision cycle failed", "error", err)
		if s.metrics != nil {
			s.metrics.RecordCycleFailure()
			var fetchErr *fetch.Error
			if errors.As(err, &fetchErr) {
				s.metrics.RecordFetchError(fetchErr.Source)
			}
		}
		return
	}

	if s.metrics != nil {
		s.metrics.RecordDecision(decision)
	}
}

// runPruning trims audit records past the retention window.
func (s *Scheduler) runPruning(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	deleted, err := s.audit.Prune(ctx, cutoff)
	if err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("scheduled pruning completed", "deleted_count", deleted)
	} else {
		s.logger.Debug("scheduled pruning completed, no records deleted")
	}
}

// Stop stops the cron jobs, waits for a cycle in flight to finish, and
// shuts down the metrics endpoint.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("metrics endpoint shutdown failed", "error", err)
		}
	}

	s.running = false
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether the scheduler has been started and not yet
// stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
