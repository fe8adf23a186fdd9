package reverb

import (
	"math"
	"testing"
)

func TestNewModulatedDelay_RejectsInvalidSampleRate(t *testing.T) {
	if _, err := NewModulatedDelay(0, 0.01); err == nil {
		t.Fatal("expected error for non-positive sample rate")
	}
}

func TestNewModulatedDelay_RejectsNegativeBase(t *testing.T) {
	if _, err := NewModulatedDelay(48000, -0.01); err == nil {
		t.Fatal("expected error for negative base delay")
	}
}

func TestModulatedDelay_TickTracksBaseDelayAtZeroDepth(t *testing.T) {
	m, err := NewModulatedDelay(48000, 0.005)
	if err != nil {
		t.Fatalf("NewModulatedDelay failed: %v", err)
	}

	if err := m.SetDepth(0); err != nil {
		t.Fatalf("SetDepth failed: %v", err)
	}

	const baseDelaySamples = 0.005 * 48000

	var out float64
	for i := 0; i < int(baseDelaySamples); i++ {
		var x float64
		if i == 0 {
			x = 1
		}

		out = m.Tick(x)
	}

	if out <= 0.5 {
		t.Fatalf("expected delayed impulse near unity at the tuned base delay, got %v", out)
	}
}

func TestModulatedDelay_SetRateRejectsNonPositive(t *testing.T) {
	m, _ := NewModulatedDelay(48000, 0.005)

	if err := m.SetRate(0); err == nil {
		t.Fatal("expected error for zero rate")
	}
}

func TestModulatedDelay_SetDepthRejectsOutOfRange(t *testing.T) {
	m, _ := NewModulatedDelay(48000, 0.005)

	if err := m.SetDepth(-0.1); err == nil {
		t.Fatal("expected error for negative depth")
	}

	if err := m.SetDepth(1.0); err == nil {
		t.Fatal("expected error for depth exceeding max")
	}
}

func TestModulatedDelay_LfoSweepsWithinDepthBounds(t *testing.T) {
	m, err := NewModulatedDelay(48000, 0.010)
	if err != nil {
		t.Fatalf("NewModulatedDelay failed: %v", err)
	}

	if err := m.SetDepth(0.002); err != nil {
		t.Fatalf("SetDepth failed: %v", err)
	}

	if err := m.SetRate(4.0); err != nil {
		t.Fatalf("SetRate failed: %v", err)
	}

	for i := 0; i < 48000; i++ {
		v := m.Tick(math.Sin(float64(i) * 0.01))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("sample %d: unstable output %v", i, v)
		}
	}
}

func TestModulatedDelay_ResetClearsLineAndPhase(t *testing.T) {
	m, _ := NewModulatedDelay(48000, 0.005)

	m.Tick(1)
	for i := 0; i < 100; i++ {
		m.Tick(0)
	}

	m.Reset()

	out := m.Tick(0)
	if out != 0 {
		t.Fatalf("expected zero output after reset, got %v", out)
	}
}

func TestFDN_ExposesPerLineModulatedDelay(t *testing.T) {
	f, err := NewFDN(fdnDefaultSize, 48000, 0.5)
	if err != nil {
		t.Fatalf("NewFDN failed: %v", err)
	}

	for i := 0; i < f.Size(); i++ {
		md := f.ModulatedDelay(i)
		if md == nil {
			t.Fatalf("line %d: expected non-nil modulated delay", i)
		}

		v := md.Tick(0)
		if math.IsNaN(v) {
			t.Fatalf("line %d: modulated delay produced NaN", i)
		}
	}

	f.Reset()
}
