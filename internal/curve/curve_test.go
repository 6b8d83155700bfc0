package curve

import (
	"errors"
	"math"
	"testing"
)

func TestSigmoidBoundaries(t *testing.T) {
	const total, max = 72.0, 10000.0

	start := SigmoidValue(0, total, max)
	if start < 0 || start > 0.05*max {
		t.Errorf("sigmoid at t=0 should be near zero, got %f", start)
	}
	mid := SigmoidValue(total/2, total, max)
	if math.Abs(mid-max/2) > 0.05*max {
		t.Errorf("sigmoid at t=T/2 should be ~%f, got %f", max/2, mid)
	}
	end := SigmoidValue(total, total, max)
	if end <= 0.95*max {
		t.Errorf("sigmoid at t=T should exceed 95%% of max, got %f", end)
	}
}

func TestSigmoidMonotonic(t *testing.T) {
	const total, max = 72.0, 10000.0
	prev := -1.0
	for h := 0.0; h <= total; h++ {
		v := SigmoidValue(h, total, max)
		if v < prev {
			t.Fatalf("sigmoid decreased at t=%f: %f < %f", h, v, prev)
		}
		prev = v
	}
}

func TestExponentialCapsAtMax(t *testing.T) {
	v, err := ExponentialValue(100, 72, 10, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10000 {
		t.Errorf("expected cap at 10000, got %f", v)
	}
	v, err = ExponentialValue(0, 72, 10, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(v-10) > 1e-9 {
		t.Errorf("expected initial value at t=0, got %f", v)
	}
}

func TestExponentialRejectsNonPositiveInitial(t *testing.T) {
	if _, err := ExponentialValue(1, 72, 0, 10000); !errors.Is(err, ErrNonPositiveInitial) {
		t.Errorf("expected ErrNonPositiveInitial, got %v", err)
	}
	if _, err := Target(Exponential, 1, 72, 0, 10000); !errors.Is(err, ErrNonPositiveInitial) {
		t.Errorf("Target should surface ErrNonPositiveInitial, got %v", err)
	}
}

func TestLogarithmicBoundaries(t *testing.T) {
	if v := LogarithmicValue(0, 72, 10000); v != 0 {
		t.Errorf("logarithmic at t=0 should be 0, got %f", v)
	}
	if v := LogarithmicValue(72, 72, 10000); math.Abs(v-10000) > 1e-6 {
		t.Errorf("logarithmic at t=T should be max, got %f", v)
	}
}

func TestLinearInterpolation(t *testing.T) {
	if v := LinearValue(36, 72, 0, 10000); math.Abs(v-5000) > 1e-9 {
		t.Errorf("linear midpoint should be 5000, got %f", v)
	}
	if v := LinearValue(0, 72, 100, 10000); v != 100 {
		t.Errorf("linear at t=0 should be initial, got %f", v)
	}
}

func TestTargetNeverExceedsMax(t *testing.T) {
	shapes := []Shape{Sigmoid, Exponential, Logarithmic, Linear}
	for _, s := range shapes {
		for h := 0.0; h <= 144; h += 6 {
			v, err := Target(s, h, 72, 100, 10000)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", s, err)
			}
			if v > 10000 {
				t.Errorf("%s: target %f exceeds max at t=%f", s, v, h)
			}
		}
	}
}

func TestTargetUnknownShape(t *testing.T) {
	if _, err := Target(Shape("bezier"), 1, 72, 0, 100); err == nil {
		t.Error("expected error for unknown shape")
	}
}

func TestShapeValid(t *testing.T) {
	for _, s := range []Shape{Sigmoid, Exponential, Logarithmic, Linear} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if Shape("parabolic").Valid() {
		t.Error("parabolic should not be valid")
	}
}
