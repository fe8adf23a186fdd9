package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/filter/biquad"
	"github.com/cwbudde/algo-reverb/dsp/filter/design"
)

const (
	dampingButterworthQ = 1 / math.Sqrt2

	dampingHFCutoffMax   = 12000.0
	dampingHFCutoffRange = 11000.0

	dampingLFCutoffBase  = 50.0
	dampingLFCutoffRange = 450.0

	dampingHFFeedForwardWeight = 0.8
	dampingLFFeedForwardWeight = 0.6
)

// DampingFilter is the in-loop per-line frequency shaper: an HF lowpass
// followed by an LF highpass, both Butterworth-Q biquads. The damping
// percent additionally scales each filter's feed-forward coefficients,
// giving an independent depth control, and forces identity coefficients at
// 0% so no numerical colouring is applied when damping is off.
type DampingFilter struct {
	sampleRate float64
	hfDamping  float64
	lfDamping  float64

	hf biquad.Section
	lf biquad.Section
}

// NewDampingFilter creates a damping filter at 0% HF/LF damping (identity).
func NewDampingFilter(sampleRate float64) (*DampingFilter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: damping filter sample rate must be > 0: %f", sampleRate)
	}

	d := &DampingFilter{sampleRate: sampleRate}
	d.rebuild()

	return d, nil
}

// SetDamping updates the HF and LF damping percentages, each in [0, 1],
// and rebuilds both biquads.
func (d *DampingFilter) SetDamping(hfDamping, lfDamping float64) error {
	if hfDamping < 0 || hfDamping > 1 {
		return fmt.Errorf("reverb: hf damping must be in [0, 1]: %f", hfDamping)
	}

	if lfDamping < 0 || lfDamping > 1 {
		return fmt.Errorf("reverb: lf damping must be in [0, 1]: %f", lfDamping)
	}

	d.hfDamping = hfDamping
	d.lfDamping = lfDamping
	d.rebuild()

	return nil
}

// HFDamping returns the current HF damping percentage in [0, 1].
func (d *DampingFilter) HFDamping() float64 { return d.hfDamping }

// LFDamping returns the current LF damping percentage in [0, 1].
func (d *DampingFilter) LFDamping() float64 { return d.lfDamping }

func (d *DampingFilter) rebuild() {
	hfCutoff := dampingHFCutoffMax - dampingHFCutoffRange*d.hfDamping
	lfCutoff := dampingLFCutoffBase + dampingLFCutoffRange*d.lfDamping

	d.hf.Coefficients = identityOrScaled(
		design.Lowpass(hfCutoff, dampingButterworthQ, d.sampleRate),
		d.hfDamping, dampingHFFeedForwardWeight,
	)
	d.lf.Coefficients = identityOrScaled(
		design.Highpass(lfCutoff, dampingButterworthQ, d.sampleRate),
		d.lfDamping, dampingLFFeedForwardWeight,
	)
}

func identityOrScaled(c biquad.Coefficients, percent, weight float64) biquad.Coefficients {
	if percent <= 0 {
		return biquad.Coefficients{B0: 1}
	}

	scale := 1 - weight*percent
	c.B0 *= scale
	c.B1 *= scale
	c.B2 *= scale

	return c
}

// ProcessSample filters x through the HF lowpass then the LF highpass.
func (d *DampingFilter) ProcessSample(x float64) float64 {
	x = d.hf.ProcessSample(x)
	x = d.lf.ProcessSample(x)

	return x
}

// Reset clears both biquads' internal state.
func (d *DampingFilter) Reset() {
	d.hf.Reset()
	d.lf.Reset()
}

// ResponseDB reports the HF lowpass and LF highpass stages' magnitude
// response in dB at freqHz, for diagnostics (print_configuration).
func (d *DampingFilter) ResponseDB(freqHz float64) (hfDB, lfDB float64) {
	return d.hf.Coefficients.MagnitudeDB(freqHz, d.sampleRate),
		d.lf.Coefficients.MagnitudeDB(freqHz, d.sampleRate)
}
