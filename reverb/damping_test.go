package reverb

import "testing"

func TestNewDampingFilter_RejectsBadSampleRate(t *testing.T) {
	if _, err := NewDampingFilter(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestDampingFilter_ZeroPercent_IsIdentity(t *testing.T) {
	d, err := NewDampingFilter(48000)
	if err != nil {
		t.Fatal(err)
	}

	// B3: damping percent = 0 produces {b0=1, b1=b2=a1=a2=0}.
	if d.hf.B0 != 1 || d.hf.B1 != 0 || d.hf.B2 != 0 || d.hf.A1 != 0 || d.hf.A2 != 0 {
		t.Fatalf("hf not identity: %+v", d.hf.Coefficients)
	}
	if d.lf.B0 != 1 || d.lf.B1 != 0 || d.lf.B2 != 0 || d.lf.A1 != 0 || d.lf.A2 != 0 {
		t.Fatalf("lf not identity: %+v", d.lf.Coefficients)
	}

	for i := 0; i < 32; i++ {
		x := float64(i) * 0.1
		if got := d.ProcessSample(x); got != x {
			t.Fatalf("identity filter altered sample %d: got %v, want %v", i, got, x)
		}
	}
}

func TestDampingFilter_SetDamping_RejectsOutOfRange(t *testing.T) {
	d, err := NewDampingFilter(48000)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.SetDamping(-0.1, 0); err == nil {
		t.Fatal("expected error for negative hf damping")
	}
	if err := d.SetDamping(0, 1.1); err == nil {
		t.Fatal("expected error for lf damping > 1")
	}
}

func TestDampingFilter_NonzeroDamping_AttenuatesHighs(t *testing.T) {
	d, err := NewDampingFilter(48000)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.SetDamping(1.0, 0); err != nil {
		t.Fatal(err)
	}

	// A near-Nyquist oscillation should be attenuated once HF damping
	// pulls the lowpass cutoff down to 1kHz.
	sum := 0.0
	for i := 0; i < 200; i++ {
		x := 1.0
		if i%2 == 1 {
			x = -1.0
		}
		sum += abs(d.ProcessSample(x))
	}

	if sum/200 > 0.5 {
		t.Fatalf("expected strong attenuation of near-Nyquist content, got avg %v", sum/200)
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
