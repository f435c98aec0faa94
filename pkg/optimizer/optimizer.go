package optimizer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mercator-hq/creditpilot/pkg/pid"
	"github.com/mercator-hq/creditpilot/pkg/rollout"
	"github.com/mercator-hq/creditpilot/pkg/state"
)

// Config configures an Optimizer.
type Config struct {
	// Budget is the monthly credit budget.
	Budget Budget

	// Gains are the PID tuning coefficients.
	Gains pid.Gains

	// LookbackDays is the daily-rate window. Must be >= 1.
	LookbackDays int

	// DryRun computes and logs a decision without persisting state or
	// recording history.
	DryRun bool
}

// Optimizer runs the end-to-end decision for one cycle.
type Optimizer struct {
	// mu guards the tunables, which daemon mode may swap between cycles
	// on a config reload.
	mu           sync.RWMutex
	budget       Budget
	gains        pid.Gains
	lookbackDays int
	dryRun       bool

	store    state.Backend
	spend    SpendSource
	baseline rollout.Source
	recorder DecisionRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Optimizer. store, spendSource and baselineSource are
// required; recorder may be nil when no audit trail is wanted.
func New(cfg Config, store state.Backend, spendSource SpendSource, baselineSource rollout.Source, recorder DecisionRecorder) (*Optimizer, error) {
	if store == nil {
		return nil, fmt.Errorf("state backend is required")
	}
	if spendSource == nil {
		return nil, fmt.Errorf("spend source is required")
	}
	if baselineSource == nil {
		return nil, fmt.Errorf("baseline source is required")
	}
	if cfg.LookbackDays < 1 {
		return nil, fmt.Errorf("lookback days must be >= 1, got %d", cfg.LookbackDays)
	}
	if cfg.Budget.TotalCredits <= 0 {
		return nil, fmt.Errorf("total credits must be positive, got %v", cfg.Budget.TotalCredits)
	}
	if cfg.Budget.SafetyMargin < 0 || cfg.Budget.SafetyMargin >= 1 {
		return nil, fmt.Errorf("safety margin must be in [0, 1), got %v", cfg.Budget.SafetyMargin)
	}

	return &Optimizer{
		budget:       cfg.Budget,
		gains:        cfg.Gains,
		lookbackDays: cfg.LookbackDays,
		dryRun:       cfg.DryRun,
		store:        store,
		spend:        spendSource,
		baseline:     baselineSource,
		recorder:     recorder,
		logger:       slog.Default().With("component", "optimizer"),
		now:          time.Now,
	}, nil
}

// Retune replaces the budget and gains. Daemon mode calls this between
// cycles after a config reload; a cycle in flight keeps the values it
// started with.
func (o *Optimizer) Retune(budget Budget, gains pid.Gains) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.budget = budget
	o.gains = gains
	o.logger.Info("controller retuned",
		"total_credits", budget.TotalCredits,
		"safety_margin", budget.SafetyMargin,
		"kp", gains.Kp,
		"ki", gains.Ki,
		"kd", gains.Kd,
	)
}

// RunCycle executes one complete decision cycle.
//
// Any fetch failure is fatal for the cycle: no decision is emitted and the
// persisted state is left untouched, so the next cycle continues from the
// last good state. There is deliberately no stale-data fallback; acting on
// silently outdated numbers is worse than skipping the cycle loudly.
func (o *Optimizer) RunCycle(ctx context.Context) (*Decision, error) {
	o.mu.RLock()
	budget := o.budget
	gains := o.gains
	lookback := o.lookbackDays
	dryRun := o.dryRun
	o.mu.RUnlock()

	now := o.now()
	nowUnix := float64(now.UnixNano()) / float64(time.Second)

	prev, err := o.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load controller state: %w", err)
	}

	currentSpend, err := o.spend.MonthToDateSpend(ctx)
	if err != nil {
		return nil, err
	}
	dailyRate, err := o.spend.DailySpendRate(ctx, lookback)
	if err != nil {
		return nil, err
	}
	base, err := o.baseline.BaselinePercentage(ctx)
	if err != nil {
		return nil, err
	}
	if !finite(currentSpend) || !finite(dailyRate) || !finite(base) {
		return nil, fmt.Errorf("fetched values are not finite: spend=%v rate=%v base=%v",
			currentSpend, dailyRate, base)
	}

	daysElapsed, daysInMonth := monthCalendar(now)
	snap := SpendSnapshot{
		CurrentMonthSpend:  currentSpend,
		DailySpendRate:     dailyRate,
		DaysElapsedInMonth: daysElapsed,
		DaysInMonth:        daysInMonth,
		LookbackDays:       lookback,
	}

	traj := ComputeTrajectory(budget, snap)
	elapsed := nowUnix - prev.LastUpdate
	out, next := pid.Step(gains, traj.ErrorPercent, elapsed, prev, nowUnix)

	d := &Decision{
		CycleID:         uuid.NewString(),
		Timestamp:       now,
		BasePercentage:  base,
		RawPercentage:   base + out.Value,
		Components:      out,
		SpendError:      traj.SpendError,
		ErrorPercent:    traj.ErrorPercent,
		RateError:       traj.RateError,
		IdealSpend:      traj.IdealSpend,
		TargetDailyRate: traj.TargetDailyRate,
		Snapshot:        snap,
	}

	// Hard safety stop: at or over the target budget, stop routing to the
	// credited account no matter what the controller says.
	if currentSpend >= budget.TargetCredits() {
		d.Overridden = true
		d.FinalPercentage = 0
		o.logger.Warn("at or over target spend, forcing zero routing",
			"cycle_id", d.CycleID,
			"current_spend", currentSpend,
			"target_credits", budget.TargetCredits(),
		)
	} else {
		d.FinalPercentage = clamp(d.RawPercentage, 0, 100)
	}

	if !dryRun {
		if err := o.store.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to persist controller state: %w", err)
		}
	}

	o.logDecision(d)

	if o.recorder != nil && !dryRun {
		if err := o.recorder.Record(ctx, d); err != nil {
			// Audit plumbing must never block the decision.
			o.logger.Error("failed to record decision history",
				"cycle_id", d.CycleID,
				"error", err,
			)
		}
	}

	return d, nil
}

// logDecision emits the cycle summary the operators read.
func (o *Optimizer) logDecision(d *Decision) {
	o.logger.Info("cycle computed",
		"cycle_id", d.CycleID,
		"day", fmt.Sprintf("%d/%d", d.Snapshot.DaysElapsedInMonth, d.Snapshot.DaysInMonth),
		"current_spend", d.Snapshot.CurrentMonthSpend,
		"ideal_spend", d.IdealSpend,
		"target_daily_rate", d.TargetDailyRate,
		"daily_spend_rate", d.Snapshot.DailySpendRate,
		"spend_error", d.SpendError,
		"error_pct", d.ErrorPercent,
		"rate_error", d.RateError,
		"p", d.Components.P,
		"i", d.Components.I,
		"d", d.Components.D,
		"base_pct", d.BasePercentage,
		"raw_pct", d.RawPercentage,
		"final_pct", d.FinalPercentage,
		"overridden", d.Overridden,
	)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
