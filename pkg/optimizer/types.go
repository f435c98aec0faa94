package optimizer

import (
	"context"
	"time"

	"github.com/mercator-hq/creditpilot/pkg/pid"
)

// Budget describes the monthly credit budget on the secondary account.
type Budget struct {
	// TotalCredits is the full monthly credit grant.
	TotalCredits float64

	// SafetyMargin is the fraction of the grant held back as headroom.
	// The trajectory targets (1 - SafetyMargin) of the grant, so spend
	// aims at, for example, 98% utilization rather than 100%.
	SafetyMargin float64
}

// DefaultBudget returns the production budget: 500k credits with a 2%
// safety margin.
func DefaultBudget() Budget {
	return Budget{TotalCredits: 500000, SafetyMargin: 0.02}
}

// TargetCredits is the usable budget ceiling after the safety margin.
func (b Budget) TargetCredits() float64 {
	return b.TotalCredits * (1 - b.SafetyMargin)
}

// SpendSnapshot is the spend picture for one cycle. Ephemeral; recomputed
// every invocation, never persisted.
type SpendSnapshot struct {
	// CurrentMonthSpend is month-to-date spend in credits.
	CurrentMonthSpend float64

	// DailySpendRate is the average credits per day over the lookback
	// window of completed calendar days.
	DailySpendRate float64

	// DaysElapsedInMonth counts completed days of the current month.
	// Zero on the first day.
	DaysElapsedInMonth int

	// DaysInMonth is the length of the current calendar month.
	DaysInMonth int

	// LookbackDays is the window the daily rate was averaged over.
	LookbackDays int
}

// Decision is one cycle's output.
type Decision struct {
	// CycleID uniquely identifies this cycle in logs and history.
	CycleID string

	// Timestamp is when the decision was made.
	Timestamp time.Time

	// FinalPercentage is the routing percentage to apply, always within
	// [0, 100].
	FinalPercentage float64

	// BasePercentage is the externally sourced baseline before the PID
	// adjustment.
	BasePercentage float64

	// RawPercentage is base plus PID output, before clamping.
	RawPercentage float64

	// Components are the individual PID term contributions.
	Components pid.Output

	// SpendError is ideal spend minus current spend, in credits. Positive
	// means under-spending relative to trajectory.
	SpendError float64

	// ErrorPercent is SpendError normalized to percent of the target
	// budget; this is the signal the PID controller is driven by.
	ErrorPercent float64

	// RateError is target daily rate minus observed daily rate.
	// Diagnostic only; it never feeds the controller.
	RateError float64

	// IdealSpend is where the spend trajectory says we should be now.
	IdealSpend float64

	// TargetDailyRate is the credits per day needed to land on the target
	// by month end.
	TargetDailyRate float64

	// Snapshot is the spend picture the decision was computed from.
	Snapshot SpendSnapshot

	// Overridden reports that the budget-exceeded hard stop forced the
	// final percentage to zero.
	Overridden bool
}

// SpendSource provides the spend figures for a cycle.
type SpendSource interface {
	// MonthToDateSpend returns credits spent since the start of the
	// current month.
	MonthToDateSpend(ctx context.Context) (float64, error)

	// DailySpendRate returns average credits per day over the given
	// number of completed days.
	DailySpendRate(ctx context.Context, lookbackDays int) (float64, error)
}

// DecisionRecorder receives completed decisions for the audit trail.
// Recording failures must not block or fail the decision itself.
type DecisionRecorder interface {
	Record(ctx context.Context, d *Decision) error
}
