package reverb

import "fmt"

// diffusionPrimeLengths are the fixed small-prime all-pass lengths (in
// samples at 48 kHz) that make up the diffusion chain.
var diffusionPrimeLengths = [8]int{89, 109, 127, 149, 167, 191, 211, 233}

const (
	diffusionBaseGain     = 0.70
	diffusionGainStep     = 0.03
	diffusionMaxGain      = 0.95
	diffusionGainHeadroom = 0.001
	diffusionMaxWidth     = 0.30
)

// Diffusion is a fixed serial all-pass chain whose stage lengths are
// distinct small primes and whose gains descend linearly so that stability
// is preserved as stages compound. A density control in [0, 1] maps to a
// uniform gain offset in [0, +0.3] applied on top of the baseline gains.
type Diffusion struct {
	stages  []*AllPassFilter
	density float64
}

// NewDiffusion creates a diffusion chain with the given number of stages
// (1-8) at density 0 (baseline gains, no offset).
func NewDiffusion(stageCount int) (*Diffusion, error) {
	if stageCount < 1 || stageCount > len(diffusionPrimeLengths) {
		return nil, fmt.Errorf("reverb: diffusion stage count must be in [1, %d]: %d",
			len(diffusionPrimeLengths), stageCount)
	}

	d := &Diffusion{stages: make([]*AllPassFilter, stageCount)}

	for i := range d.stages {
		a, err := NewAllPassFilter(diffusionPrimeLengths[i], diffusionBaseGain-float64(i)*diffusionGainStep)
		if err != nil {
			return nil, err
		}

		d.stages[i] = a
	}

	return d, nil
}

// SetDensity updates the density control, re-deriving each stage's gain
// from its baseline plus a uniform offset in [0, 0.3], clamped so no stage
// gain ever reaches diffusionMaxGain (strictly less than, with a small
// headroom margin).
func (d *Diffusion) SetDensity(density float64) error {
	if density < 0 || density > 1 {
		return fmt.Errorf("reverb: diffusion density must be in [0, 1]: %f", density)
	}

	d.density = density
	offset := density * diffusionMaxWidth

	for i, stage := range d.stages {
		g := diffusionBaseGain - float64(i)*diffusionGainStep + offset
		if g >= diffusionMaxGain {
			g = diffusionMaxGain - diffusionGainHeadroom
		}

		if g <= -1 {
			g = -0.99
		}

		// SetGain cannot fail for values produced by this derivation.
		_ = stage.SetGain(g)
	}

	return nil
}

// Density returns the current density control value.
func (d *Diffusion) Density() float64 { return d.density }

// ProcessSample passes x serially through every diffusion stage.
func (d *Diffusion) ProcessSample(x float64) float64 {
	for _, stage := range d.stages {
		x = stage.ProcessSample(x)
	}

	return x
}

// Reset clears every stage's internal state.
func (d *Diffusion) Reset() {
	for _, stage := range d.stages {
		stage.Reset()
	}
}
