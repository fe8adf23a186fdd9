package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/filter/biquad"
	"github.com/cwbudde/algo-reverb/dsp/filter/design"
)

const (
	toneHighCutMin    = 1000.0
	toneHighCutMax    = 20000.0
	toneLowCutMin     = 20.0
	toneLowCutMax     = 1000.0
	toneButterworthQ  = 1 / math.Sqrt2
)

// ToneFilter applies two independent stereo biquad pairs to the wet bus,
// last in the chain, after spread: a high-cut lowpass and a low-cut
// highpass. Each pair has an enable flag; when disabled the corresponding
// filter is bypassed entirely rather than set to a wide-open cutoff, so a
// disabled filter costs nothing and introduces no phase shift.
type ToneFilter struct {
	sampleRate float64

	highCutFreq    float64
	highCutEnabled bool
	lowCutFreq     float64
	lowCutEnabled  bool

	highCutL *biquad.Section
	highCutR *biquad.Section
	lowCutL  *biquad.Section
	lowCutR  *biquad.Section
}

// NewToneFilter creates a tone filter at the given sample rate with both
// stages disabled and cutoffs at their default positions (high-cut at
// 20kHz, low-cut at 20Hz).
func NewToneFilter(sampleRate float64) (*ToneFilter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: tone filter sample rate must be > 0: %f", sampleRate)
	}

	t := &ToneFilter{
		sampleRate:  sampleRate,
		highCutFreq: toneHighCutMax,
		lowCutFreq:  toneLowCutMin,
		highCutL:    &biquad.Section{},
		highCutR:    &biquad.Section{},
		lowCutL:     &biquad.Section{},
		lowCutR:     &biquad.Section{},
	}

	t.rebuildHighCut()
	t.rebuildLowCut()

	return t, nil
}

// SetHighCutFreq sets the high-cut (lowpass) cutoff in [1kHz, 20kHz].
func (t *ToneFilter) SetHighCutFreq(freq float64) error {
	if freq < toneHighCutMin || freq > toneHighCutMax {
		return fmt.Errorf("reverb: tone high-cut freq must be in [%v, %v]: %f", toneHighCutMin, toneHighCutMax, freq)
	}

	t.highCutFreq = freq
	t.rebuildHighCut()

	return nil
}

// HighCutFreq returns the current high-cut cutoff in Hz.
func (t *ToneFilter) HighCutFreq() float64 { return t.highCutFreq }

// SetHighCutEnabled toggles the high-cut stage.
func (t *ToneFilter) SetHighCutEnabled(enabled bool) { t.highCutEnabled = enabled }

// HighCutEnabled reports whether the high-cut stage is active.
func (t *ToneFilter) HighCutEnabled() bool { return t.highCutEnabled }

// SetLowCutFreq sets the low-cut (highpass) cutoff in [20Hz, 1kHz].
func (t *ToneFilter) SetLowCutFreq(freq float64) error {
	if freq < toneLowCutMin || freq > toneLowCutMax {
		return fmt.Errorf("reverb: tone low-cut freq must be in [%v, %v]: %f", toneLowCutMin, toneLowCutMax, freq)
	}

	t.lowCutFreq = freq
	t.rebuildLowCut()

	return nil
}

// LowCutFreq returns the current low-cut cutoff in Hz.
func (t *ToneFilter) LowCutFreq() float64 { return t.lowCutFreq }

// SetLowCutEnabled toggles the low-cut stage.
func (t *ToneFilter) SetLowCutEnabled(enabled bool) { t.lowCutEnabled = enabled }

// LowCutEnabled reports whether the low-cut stage is active.
func (t *ToneFilter) LowCutEnabled() bool { return t.lowCutEnabled }

func (t *ToneFilter) rebuildHighCut() {
	c := design.Lowpass(t.highCutFreq, toneButterworthQ, t.sampleRate)
	t.highCutL.Coefficients = c
	t.highCutR.Coefficients = c
}

func (t *ToneFilter) rebuildLowCut() {
	c := design.Highpass(t.lowCutFreq, toneButterworthQ, t.sampleRate)
	t.lowCutL.Coefficients = c
	t.lowCutR.Coefficients = c
}

// ProcessSample applies whichever stages are enabled to one stereo sample
// pair, in high-cut-then-low-cut order.
func (t *ToneFilter) ProcessSample(inL, inR float64) (float64, float64) {
	outL, outR := inL, inR

	if t.highCutEnabled {
		outL = t.highCutL.ProcessSample(outL)
		outR = t.highCutR.ProcessSample(outR)
	}

	if t.lowCutEnabled {
		outL = t.lowCutL.ProcessSample(outL)
		outR = t.lowCutR.ProcessSample(outR)
	}

	return outL, outR
}

// Reset clears the internal state of every stage, including disabled ones.
func (t *ToneFilter) Reset() {
	t.highCutL.Reset()
	t.highCutR.Reset()
	t.lowCutL.Reset()
	t.lowCutR.Reset()
}

// ResponseDB reports the high-cut and low-cut stages' magnitude response
// in dB at freqHz, for diagnostics (print_configuration). Disabled stages
// still report their would-be response rather than 0dB, since the caller
// already knows enablement from HighCutEnabled/LowCutEnabled.
func (t *ToneFilter) ResponseDB(freqHz float64) (highCutDB, lowCutDB float64) {
	return t.highCutL.Coefficients.MagnitudeDB(freqHz, t.sampleRate),
		t.lowCutL.Coefficients.MagnitudeDB(freqHz, t.sampleRate)
}
