package reverb

import (
	"math"
	"testing"
)

func TestParameterSmoother_LinearConvergesToTarget(t *testing.T) {
	s := NewParameterSmoother(SmoothLinear, 0.030, 48000, 0.001, 0)
	s.SetTarget(1.0)

	var last float64
	for i := 0; i < 48000; i++ {
		last = s.Next()
	}

	if diff := math.Abs(last - 1.0); diff > 1e-6 {
		t.Fatalf("expected convergence to target after 1s, got %v", last)
	}
}

func TestParameterSmoother_MonotoneBoundedByTargets(t *testing.T) {
	// P1: output stays within [min, max] of written targets.
	s := NewParameterSmoother(SmoothLinear, 0.030, 48000, 0.0, 0.2)
	s.SetTarget(0.8)

	minT, maxT := 0.2, 0.8

	for i := 0; i < 100; i++ {
		v := s.Next()
		if v < minT-1e-9 || v > maxT+1e-9 {
			t.Fatalf("sample %d: value %v outside [%v, %v]", i, v, minT, maxT)
		}
	}

	s.SetTarget(0.1)
	minT = 0.1

	for i := 0; i < 1000; i++ {
		v := s.Next()
		if v < minT-1e-9 || v > maxT+1e-9 {
			t.Fatalf("sample %d: value %v outside [%v, %v]", i, v, minT, maxT)
		}
	}
}

func TestParameterSmoother_BelowThresholdAppliesImmediately(t *testing.T) {
	s := NewParameterSmoother(SmoothLinear, 0.030, 48000, 0.05, 0.5)
	s.SetTarget(0.52)

	if s.Current() != 0.52 {
		t.Fatalf("expected immediate snap below threshold, got %v", s.Current())
	}
}

func TestParameterSmoother_SCurveReachesTarget(t *testing.T) {
	s := NewParameterSmoother(SmoothSCurve, 0.010, 48000, 0.0, 0)
	s.SetTarget(1.0)

	var last float64
	for i := 0; i < 48000; i++ {
		last = s.Next()
	}

	if diff := math.Abs(last - 1.0); diff > 1e-9 {
		t.Fatalf("expected exact convergence, got %v", last)
	}
}

func TestParameterSmoother_LogarithmicConvergesToTarget(t *testing.T) {
	s := NewParameterSmoother(SmoothLogarithmic, 0.040, 48000, 0.0, 1.0)
	s.SetTarget(0.1)

	var last float64
	for i := 0; i < 48000; i++ {
		last = s.Next()
	}

	if diff := math.Abs(last - 0.1); diff > 1e-6 {
		t.Fatalf("expected convergence to target, got %v", last)
	}
}

func TestParameterSmoother_ResetSnapsWithoutRamp(t *testing.T) {
	s := NewParameterSmoother(SmoothLinear, 0.030, 48000, 0.0, 0)
	s.SetTarget(1.0)
	s.Next()
	s.Next()

	s.Reset(0.3)

	if s.Current() != 0.3 || s.Target() != 0.3 {
		t.Fatalf("expected reset to snap current and target, got current=%v target=%v", s.Current(), s.Target())
	}

	if v := s.Next(); v != 0.3 {
		t.Fatalf("expected no ramp after reset, got %v", v)
	}
}
