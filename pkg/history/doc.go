// Package history keeps an audit trail of routing decisions.
//
// Every completed cycle appends one record with the full decision context:
// the spend snapshot, trajectory figures, PID components and the final
// percentage. The trail answers the questions that come up when a month's
// spend curve looks wrong after the fact: what did the controller see,
// and why did it choose that percentage.
//
// Records live in a SQLite database separate from the controller state, so
// operators can copy or prune the trail without touching the integral
// history. Recording is strictly best-effort: a failed insert is logged by
// the caller and never blocks the decision.
package history
