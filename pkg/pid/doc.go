// Package pid implements the discrete PID control step that drives the
// credit routing decision.
//
// The controller is deliberately split from its state: Step is a pure
// function of (error, elapsed time, previous state) and returns the control
// output together with the successor state. The caller owns loading and
// persisting State between invocations, which keeps the control law itself
// trivially testable and free of hidden process-wide state.
//
// # Anti-Windup
//
// The integral accumulator is not clamped here. Output clamping performed
// by the optimizer is the sole defense against windup, so the accumulator
// semantics stay aligned with the published tuning defaults (Kp=2.0,
// Ki=0.15, Kd=0.5).
package pid
