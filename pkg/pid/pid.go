package pid

// DefaultCycleSeconds is the nominal interval between controller
// invocations. It substitutes for the measured elapsed time when the clock
// reports a zero or negative interval (clock skew, or two invocations
// within the same second).
const DefaultCycleSeconds = 3600.0

// Gains contains the three PID tuning coefficients.
type Gains struct {
	// Kp is the proportional gain, responding to the current error.
	Kp float64 `yaml:"kp"`

	// Ki is the integral gain, correcting accumulated error.
	Ki float64 `yaml:"ki"`

	// Kd is the derivative gain, damping oscillations.
	Kd float64 `yaml:"kd"`
}

// DefaultGains returns the tuning used in production. The values track the
// monthly spend trajectory closely without oscillating around it.
func DefaultGains() Gains {
	return Gains{Kp: 2.0, Ki: 0.15, Kd: 0.5}
}

// State is the controller state carried between invocations.
//
// It is persisted by a state.Backend at the end of every cycle and loaded
// at the start of the next, so the integral history survives process
// restarts.
type State struct {
	// IntegralAccumulator is the running sum of error multiplied by
	// elapsed seconds. Unbounded; see the package comment on anti-windup.
	IntegralAccumulator float64 `json:"integral_accumulator"`

	// PreviousError is the error from the last invocation, used for the
	// derivative term.
	PreviousError float64 `json:"previous_error"`

	// LastUpdate is the Unix timestamp (seconds, fractional) of the last
	// completed step.
	LastUpdate float64 `json:"last_update_timestamp"`
}

// Output is one control step's result, broken into components for
// observability.
type Output struct {
	// Value is P + I + D.
	Value float64

	// P, I and D are the individual term contributions.
	P float64
	I float64
	D float64
}

// Step advances the controller by one cycle.
//
// It computes the control output for the given error signal and returns the
// successor state; the input state is not modified. elapsedSeconds is the
// wall-clock time since the previous step. When elapsedSeconds is zero or
// negative the derivative falls back to DefaultCycleSeconds as divisor and
// integration is skipped for this call, so a misbehaving clock can never
// divide by zero or wind the accumulator backwards.
//
// now becomes the successor state's LastUpdate (Unix seconds).
//
// Step is total over its numeric domain. Rejecting NaN or infinite inputs
// is the caller's job; upstream data that resolves to those values is
// treated as a fetch failure before it reaches the controller.
func Step(gains Gains, err, elapsedSeconds float64, state State, now float64) (Output, State) {
	dt := elapsedSeconds
	integrate := true
	if dt <= 0 {
		dt = DefaultCycleSeconds
		integrate = false
	}

	next := State{
		IntegralAccumulator: state.IntegralAccumulator,
		PreviousError:       err,
		LastUpdate:          now,
	}
	if integrate {
		next.IntegralAccumulator += err * dt
	}

	out := Output{
		P: gains.Kp * err,
		I: gains.Ki * next.IntegralAccumulator,
		D: gains.Kd * (err - state.PreviousError) / dt,
	}
	out.Value = out.P + out.I + out.D
	return out, next
}
