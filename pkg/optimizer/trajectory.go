package optimizer

import "time"

// Trajectory is the linear spend trajectory for the current month and the
// error signals derived from it.
type Trajectory struct {
	// IdealSpendFraction is the fraction of the month elapsed.
	IdealSpendFraction float64

	// IdealSpend is where month-to-date spend should be now to land on
	// the target budget at month end.
	IdealSpend float64

	// SpendError is IdealSpend minus actual spend, in credits.
	SpendError float64

	// ErrorPercent is SpendError as a percentage of the target budget.
	ErrorPercent float64

	// DaysRemaining is the number of days left in the month, never below
	// one so rate division stays defined on the last day.
	DaysRemaining int

	// TargetDailyRate is remaining budget divided by remaining days.
	TargetDailyRate float64

	// RateError is TargetDailyRate minus the observed daily rate.
	RateError float64
}

// ComputeTrajectory derives the error signals for one cycle.
//
// The formulas are defined for every valid snapshot, including the first
// day of the month (fraction zero) and zero spend; no branch is needed for
// those inputs. Only the days-remaining denominator is clamped.
func ComputeTrajectory(budget Budget, snap SpendSnapshot) Trajectory {
	target := budget.TargetCredits()

	var t Trajectory
	if snap.DaysInMonth > 0 {
		t.IdealSpendFraction = float64(snap.DaysElapsedInMonth) / float64(snap.DaysInMonth)
	}
	t.IdealSpend = t.IdealSpendFraction * target
	t.SpendError = t.IdealSpend - snap.CurrentMonthSpend
	if target != 0 {
		t.ErrorPercent = t.SpendError / target * 100
	}

	t.DaysRemaining = snap.DaysInMonth - snap.DaysElapsedInMonth
	if t.DaysRemaining < 1 {
		t.DaysRemaining = 1
	}
	t.TargetDailyRate = (target - snap.CurrentMonthSpend) / float64(t.DaysRemaining)
	t.RateError = t.TargetDailyRate - snap.DailySpendRate

	return t
}

// monthCalendar returns the completed-day count and total day count of t's
// calendar month. The real month length is used, never a 30-day
// approximation.
func monthCalendar(t time.Time) (daysElapsed, daysInMonth int) {
	// Day zero of the next month normalizes to the last day of this one.
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
	return t.Day() - 1, lastDay.Day()
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
