// Package optimizer makes the per-cycle routing decision.
//
// One cycle is a single atomic transition: load the persisted controller
// state, fetch the spend snapshot and baseline percentage, compute the
// trajectory error, step the PID controller, apply the safety rules and
// output clamp, persist the successor state, and emit the decision. The
// process is expected to exit afterwards and be re-invoked by a scheduler;
// there is no internal "running" state between cycles.
//
// # Safety Rules
//
// Two rules bound every decision:
//
//  1. Budget-exceeded override: once month-to-date spend reaches the target
//     budget (total credits less the safety margin), the final percentage is
//     forced to zero regardless of what the controller computed. This is
//     the hard stop and dominates every other rule.
//  2. Output clamp: otherwise the final percentage is clamped to [0, 100].
//     The clamp is also the sole anti-windup defense; see package pid.
//
// A decision is emitted fully computed and clamped, or not at all.
package optimizer
