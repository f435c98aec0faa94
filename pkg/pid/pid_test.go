package pid

import (
	"math"
	"testing"
)

func TestStep_Components(t *testing.T) {
	gains := Gains{Kp: 2.0, Ki: 0.15, Kd: 0.5}
	state := State{IntegralAccumulator: 10, PreviousError: 4}

	out, next := Step(gains, 6, 2, state, 1000)

	// acc' = 10 + 6*2 = 22
	if next.IntegralAccumulator != 22 {
		t.Errorf("expected accumulator 22, got %v", next.IntegralAccumulator)
	}
	if next.PreviousError != 6 {
		t.Errorf("expected previous error 6, got %v", next.PreviousError)
	}
	if next.LastUpdate != 1000 {
		t.Errorf("expected last update 1000, got %v", next.LastUpdate)
	}

	wantP := 2.0 * 6
	wantI := 0.15 * 22
	wantD := 0.5 * (6 - 4) / 2
	if out.P != wantP {
		t.Errorf("P: expected %v, got %v", wantP, out.P)
	}
	if out.I != wantI {
		t.Errorf("I: expected %v, got %v", wantI, out.I)
	}
	if out.D != wantD {
		t.Errorf("D: expected %v, got %v", wantD, out.D)
	}
	if out.Value != wantP+wantI+wantD {
		t.Errorf("Value: expected %v, got %v", wantP+wantI+wantD, out.Value)
	}
}

func TestStep_ZeroGainsProduceZeroOutput(t *testing.T) {
	out, _ := Step(Gains{}, 1234.5, 3600, State{IntegralAccumulator: 99, PreviousError: -5}, 0)
	if out.Value != 0 || out.P != 0 || out.I != 0 || out.D != 0 {
		t.Errorf("expected zero output with zero gains, got %+v", out)
	}
}

func TestStep_NonPositiveElapsedSkipsIntegration(t *testing.T) {
	gains := DefaultGains()
	state := State{IntegralAccumulator: 50, PreviousError: 2}

	for _, elapsed := range []float64{0, -10} {
		out, next := Step(gains, 8, elapsed, state, 42)
		if next.IntegralAccumulator != 50 {
			t.Errorf("elapsed=%v: accumulator changed to %v", elapsed, next.IntegralAccumulator)
		}
		// Derivative must use the cycle-equivalent divisor, never divide
		// by the bogus elapsed value.
		wantD := gains.Kd * (8 - 2) / DefaultCycleSeconds
		if out.D != wantD {
			t.Errorf("elapsed=%v: D expected %v, got %v", elapsed, wantD, out.D)
		}
		if math.IsNaN(out.Value) || math.IsInf(out.Value, 0) {
			t.Errorf("elapsed=%v: non-finite output %v", elapsed, out.Value)
		}
	}
}

func TestStep_IntegralAccumulatesMonotonically(t *testing.T) {
	gains := DefaultGains()
	state := State{}

	// Two invocations one hour apart with a constant positive error: the
	// integral term must strictly grow in magnitude.
	out1, state := Step(gains, 1000, 3600, state, 3600)
	out2, _ := Step(gains, 1000, 3600, state, 7200)

	if math.Abs(out2.I) <= math.Abs(out1.I) {
		t.Errorf("integral did not accumulate: first %v, second %v", out1.I, out2.I)
	}
}

func TestStep_DoesNotMutateInput(t *testing.T) {
	state := State{IntegralAccumulator: 7, PreviousError: 3, LastUpdate: 1}
	Step(DefaultGains(), 5, 10, state, 11)
	if state.IntegralAccumulator != 7 || state.PreviousError != 3 || state.LastUpdate != 1 {
		t.Errorf("input state mutated: %+v", state)
	}
}

func TestDefaultGains(t *testing.T) {
	g := DefaultGains()
	if g.Kp != 2.0 || g.Ki != 0.15 || g.Kd != 0.5 {
		t.Errorf("unexpected defaults: %+v", g)
	}
}
