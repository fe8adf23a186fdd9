package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/buffer"
)

const (
	fdnDefaultSize = 8
	fdnMinSize     = 4
	fdnMaxSize     = 12

	fdnReferenceSampleRate = 48000.0
	fdnMaxDelaySamples     = 8192

	fdnMonoInjectionGain     = 0.3
	fdnStereoInjectionGain   = 0.2
	fdnMonoOutputGain        = 0.3
	fdnStereoOutputGain      = 0.25
	fdnEvenLineLeftWeight    = 0.7
	fdnEvenLineRightWeight   = 0.3
	fdnDefaultPreDelayMax    = 0.2 // seconds, matches the 200ms pre-delay ceiling
	fdnDenormalPreventOffset = 1e-25
)

// fdnBaseDelaySamples are the FDN's per-line base delay lengths in samples
// at the 48kHz reference rate. The first 8 values are the canonical
// 8-line table; values beyond that extend the same spacing pattern to
// support larger line counts up to fdnMaxSize.
var fdnBaseDelaySamples = [fdnMaxSize]float64{
	1537, 1753, 1999, 2251, 2473, 2689, 2851, 3067,
	3259, 3461, 3673, 3889,
}

// FDN is the feedback-delay-network core: pre-delay feeds an early
// reflections chain, then a diffusion chain, whose output is injected into
// M delay lines cross-coupled by an orthogonal feedback matrix with
// per-line frequency damping on the return path.
type FDN struct {
	size       int
	sampleRate float64
	roomSize   float64

	preDelay         *DelayLine
	earlyReflections *EarlyReflections
	diffusion        *Diffusion
	matrix           *FeedbackMatrix

	lines     []*DelayLine
	damping   []*DampingFilter
	modulated []*ModulatedDelay

	preDelaySeconds float64
	stereo          bool

	// scratch avoids per-call allocation in ProcessSample/ProcessStereoSample.
	// Sized once at construction via dsp/buffer.Buffer and never resized on
	// the audio path.
	readScratch   *buffer.Buffer
	mixScratch    *buffer.Buffer
	dampedScratch *buffer.Buffer
}

// NewFDN creates an FDN core with size delay lines (4-12, default 8) for
// the given sample rate and initial room size in [0, 1].
func NewFDN(size int, sampleRate, roomSize float64) (*FDN, error) {
	if size == 0 {
		size = fdnDefaultSize
	}

	if size < fdnMinSize || size > fdnMaxSize {
		return nil, fmt.Errorf("reverb: fdn size must be in [%d, %d]: %d", fdnMinSize, fdnMaxSize, size)
	}

	if sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: fdn sample rate must be > 0: %f", sampleRate)
	}

	f := &FDN{
		size:          size,
		sampleRate:    sampleRate,
		lines:         make([]*DelayLine, size),
		damping:       make([]*DampingFilter, size),
		modulated:     make([]*ModulatedDelay, size),
		readScratch:   buffer.New(size),
		mixScratch:    buffer.New(size),
		dampedScratch: buffer.New(size),
	}

	for i := 0; i < size; i++ {
		line, err := NewDelayLine(fdnMaxDelaySamples)
		if err != nil {
			return nil, err
		}

		f.lines[i] = line

		d, err := NewDampingFilter(sampleRate)
		if err != nil {
			return nil, err
		}

		f.damping[i] = d

		// Base delay mirrors this line's own tuning so a future chorus
		// extension modulates around the line's natural length rather than
		// an arbitrary fixed offset.
		md, err := NewModulatedDelay(sampleRate, fdnBaseDelaySamples[i]/fdnReferenceSampleRate)
		if err != nil {
			return nil, err
		}

		f.modulated[i] = md
	}

	matrix, err := NewFeedbackMatrix(size)
	if err != nil {
		return nil, err
	}

	f.matrix = matrix

	preDelayMax := int(fdnDefaultPreDelayMax*sampleRate) + 4

	preDelay, err := NewDelayLine(preDelayMax)
	if err != nil {
		return nil, err
	}

	f.preDelay = preDelay

	er, err := NewEarlyReflections(sampleRate, 0.5)
	if err != nil {
		return nil, err
	}

	f.earlyReflections = er

	diff, err := NewDiffusion(len(diffusionPrimeLengths))
	if err != nil {
		return nil, err
	}

	f.diffusion = diff

	if err := f.SetRoomSize(roomSize); err != nil {
		return nil, err
	}

	if err := f.SetPreDelay(0); err != nil {
		return nil, err
	}

	return f, nil
}

// SetStereo toggles whether the injection and output-normalisation gains
// use the mono or stereo coefficients from §4.7.
func (f *FDN) SetStereo(stereo bool) { f.stereo = stereo }

// SetRoomSize updates room size, which rescales every FDN line's delay
// length, the early-reflections chain, and (combined with the current
// decay target) the feedback matrix gain.
func (f *FDN) SetRoomSize(roomSize float64) error {
	if roomSize < 0 || roomSize > 1 {
		return fmt.Errorf("reverb: room size must be in [0, 1]: %f", roomSize)
	}

	f.roomSize = roomSize
	scale := (f.sampleRate / fdnReferenceSampleRate) * (earlyReflectionScaleFloor + earlyReflectionScaleWeight*roomSize)

	for i, line := range f.lines {
		line.SetDelay(fdnBaseDelaySamples[i] * scale)
	}

	if err := f.earlyReflections.SetRoomSize(roomSize); err != nil {
		return err
	}

	return nil
}

// RoomSize returns the current room-size control value.
func (f *FDN) RoomSize() float64 { return f.roomSize }

// SetDensity forwards to the diffusion chain's density control.
func (f *FDN) SetDensity(density float64) error {
	return f.diffusion.SetDensity(density)
}

// SetDamping updates every line's damping filter.
func (f *FDN) SetDamping(hfDamping, lfDamping float64) error {
	for _, d := range f.damping {
		if err := d.SetDamping(hfDamping, lfDamping); err != nil {
			return err
		}
	}

	return nil
}

// SetDecay derives the feedback matrix gain from a target RT60 (seconds),
// the current HF/LF damping, and room size, per §4.6.
func (f *FDN) SetDecay(rt60Seconds, hfDamping, lfDamping float64) error {
	mean := f.meanDelaySamples()

	return f.matrix.SetGain(rt60Seconds, mean, f.sampleRate, hfDamping, lfDamping, f.roomSize)
}

func (f *FDN) meanDelaySamples() float64 {
	sum := 0.0
	for _, line := range f.lines {
		sum += line.Delay()
	}

	return sum / float64(f.size)
}

// SetPreDelay sets the pre-delay time in seconds. Values outside [0, 0.2]
// are rejected with an error.
func (f *FDN) SetPreDelay(seconds float64) error {
	if seconds < 0 || seconds > fdnDefaultPreDelayMax {
		return fmt.Errorf("reverb: pre-delay must be in [0, %v] seconds: %f", fdnDefaultPreDelayMax, seconds)
	}

	f.preDelaySeconds = seconds
	f.preDelay.SetDelay(math.Max(1, seconds*f.sampleRate))

	return nil
}

// MatrixGainCapped reports whether the most recent SetDecay call clamped
// the matrix gain at the stability limit.
func (f *FDN) MatrixGainCapped() bool { return f.matrix.Capped() }

// ProcessSample runs one mono sample through the full FDN pipeline and
// returns the wet sample (§4.7, mono injection/output coefficients).
func (f *FDN) ProcessSample(x float64) float64 {
	y := f.preDelay.ReadWrite(x)
	y = f.earlyReflections.ProcessSample(y)
	y = f.diffusion.ProcessSample(y)

	injection, output := fdnMonoInjectionGain, fdnMonoOutputGain
	if f.stereo {
		injection, output = fdnStereoInjectionGain, fdnStereoOutputGain
	}

	read, mix, damped := f.readScratch.Samples(), f.mixScratch.Samples(), f.dampedScratch.Samples()

	for i, line := range f.lines {
		read[i] = line.ReadWrite(0)
	}

	f.matrix.Multiply(mix, read)

	wet := 0.0

	for i, line := range f.lines {
		d := f.damping[i].ProcessSample(mix[i])
		damped[i] = d
		line.ReadWrite(y*injection + d + fdnDenormalPreventOffset)
		wet += d
	}

	return wet * output
}

// ProcessStereoSample runs one stereo sample pair through a single shared
// FDN network, driven by the mono sum of the pair, and returns two
// accumulators weighted per-line (even lines weight 0.7 left / 0.3 right,
// odd lines the mirror), yielding a decorrelated stereo tail from one FDN.
func (f *FDN) ProcessStereoSample(inL, inR float64) (float64, float64) {
	mono := (inL + inR) * 0.5

	y := f.preDelay.ReadWrite(mono)
	y = f.earlyReflections.ProcessSample(y)
	y = f.diffusion.ProcessSample(y)

	read, mix := f.readScratch.Samples(), f.mixScratch.Samples()

	for i, line := range f.lines {
		read[i] = line.ReadWrite(0)
	}

	f.matrix.Multiply(mix, read)

	wetL, wetR := 0.0, 0.0

	for i, line := range f.lines {
		d := f.damping[i].ProcessSample(mix[i])
		line.ReadWrite(y*fdnStereoInjectionGain + d + fdnDenormalPreventOffset)

		leftWeight, rightWeight := fdnEvenLineLeftWeight, fdnEvenLineRightWeight
		if i%2 == 1 {
			leftWeight, rightWeight = fdnEvenLineRightWeight, fdnEvenLineLeftWeight
		}

		wetL += d * leftWeight
		wetR += d * rightWeight
	}

	return wetL * fdnStereoOutputGain, wetR * fdnStereoOutputGain
}

// Reset flushes every delay line and filter in the network to zero.
func (f *FDN) Reset() {
	f.preDelay.Clear()
	f.earlyReflections.Reset()
	f.diffusion.Reset()

	for i := range f.lines {
		f.lines[i].Clear()
		f.damping[i].Reset()
		f.modulated[i].Reset()
	}

	f.readScratch.Zero()
	f.mixScratch.Zero()
	f.dampedScratch.Zero()
}

// ModulatedDelay exposes line i's chorus-extension-point modulated delay
// for diagnostics or a future tail-modulation mode; the hot path never
// reads from it.
func (f *FDN) ModulatedDelay(i int) *ModulatedDelay { return f.modulated[i] }

// Size returns M, the number of delay lines.
func (f *FDN) Size() int { return f.size }

// LineDelays returns each line's current fractional delay in samples, for
// diagnostics (print_configuration).
func (f *FDN) LineDelays() []float64 {
	delays := make([]float64, f.size)
	for i, line := range f.lines {
		delays[i] = line.Delay()
	}

	return delays
}

// Matrix exposes the feedback matrix for diagnostics (print_configuration).
func (f *FDN) Matrix() *FeedbackMatrix { return f.matrix }

// Damping exposes line i's damping filter for diagnostics
// (print_configuration). Every line shares the same HF/LF targets, so any
// index reports the network's effective damping response.
func (f *FDN) Damping(i int) *DampingFilter { return f.damping[i] }
