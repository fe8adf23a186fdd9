package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/core"
)

// DelayLine is a circular buffer exposing the FDN's two-phase access
// pattern: a single ReadWrite call both reads the interpolated value at the
// current fractional delay and advances the cursor by writing its input.
// "Read without writing" is modelled as ReadWrite(0), a convention the FDN
// core relies on to read every line before any line's real value is written.
type DelayLine struct {
	buffer   []float64
	writePos int
	delay    float64
}

// NewDelayLine allocates a delay line with the given maximum length in
// samples. The initial delay is 1 sample.
func NewDelayLine(maxSamples int) (*DelayLine, error) {
	if maxSamples < 2 {
		return nil, fmt.Errorf("reverb: delay line length must be >= 2: %d", maxSamples)
	}

	return &DelayLine{
		buffer: make([]float64, maxSamples),
		delay:  1,
	}, nil
}

// Len returns the buffer capacity in samples.
func (d *DelayLine) Len() int { return len(d.buffer) }

// Delay returns the current fractional delay in samples.
func (d *DelayLine) Delay() float64 { return d.delay }

// SetDelay sets the fractional delay in samples, clamped to [1, N-1].
// Non-integer values are linearly interpolated between adjacent taps.
func (d *DelayLine) SetDelay(samples float64) {
	max := float64(len(d.buffer) - 1)

	if samples < 1 {
		samples = 1
	}

	if samples > max {
		samples = max
	}

	d.delay = samples
}

// ReadWrite advances the cursor by one sample: it reads the linearly
// interpolated value at the current fractional delay, writes input at the
// current cursor position, moves the cursor forward, and returns the value
// that was read.
func (d *DelayLine) ReadWrite(input float64) float64 {
	n := len(d.buffer)

	delayInt := int(math.Floor(d.delay))
	frac := d.delay - float64(delayInt)

	i0 := d.writePos - delayInt
	for i0 < 0 {
		i0 += n
	}

	i1 := i0 - 1
	if i1 < 0 {
		i1 += n
	}

	out := d.buffer[i0]*(1-frac) + d.buffer[i1]*frac

	d.buffer[d.writePos] = input

	d.writePos++
	if d.writePos >= n {
		d.writePos = 0
	}

	return out
}

// Clear zeros the buffer and rewinds the cursor, leaving the configured
// delay unchanged.
func (d *DelayLine) Clear() {
	core.Zero(d.buffer)

	d.writePos = 0
}
