package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-reverb/dsp/core"
)

// AllPassFilter implements the Schroeder all-pass diffuser:
//
//	y[n] = -g*x[n] + v[n-L]
//	v[n] =  x[n] + g*y[n]
//
// where v is the internal delay-line state of length L. The magnitude
// response is flat at all frequencies; only phase is shaped. The most
// recent output is also kept in lastOutput and cleared by Reset.
//
// The internal buffer is sized to a fixed maximum length at construction;
// SetLength changes the active delay length within that capacity without
// reallocating, so a control thread can retune the filter's length on the
// fly without violating the audio path's no-allocation rule.
type AllPassFilter struct {
	buffer     []float64
	length     int
	pos        int
	gain       float64
	lastOutput float64
}

// NewAllPassFilter creates an all-pass filter with the given maximum delay
// length and initial gain. |gain| must be < 1 for stability. The active
// length starts equal to the maximum.
func NewAllPassFilter(maxLengthSamples int, gain float64) (*AllPassFilter, error) {
	if maxLengthSamples < 1 {
		return nil, fmt.Errorf("reverb: allpass length must be >= 1: %d", maxLengthSamples)
	}

	a := &AllPassFilter{
		buffer: make([]float64, maxLengthSamples),
		length: maxLengthSamples,
	}

	if err := a.SetGain(gain); err != nil {
		return nil, err
	}

	return a, nil
}

// Gain returns the current all-pass gain.
func (a *AllPassFilter) Gain() float64 { return a.gain }

// SetGain updates the all-pass gain. |g| must be < 1.
func (a *AllPassFilter) SetGain(g float64) error {
	if g <= -1 || g >= 1 {
		return fmt.Errorf("reverb: allpass gain must satisfy |g| < 1: %f", g)
	}

	a.gain = g

	return nil
}

// Len returns the filter's active integer delay length in samples.
func (a *AllPassFilter) Len() int { return a.length }

// MaxLen returns the filter's maximum delay length (buffer capacity).
func (a *AllPassFilter) MaxLen() int { return len(a.buffer) }

// SetLength changes the active delay length within [1, MaxLen()] without
// reallocating the underlying buffer. Changing the length clears the
// filter's state, since shortening or lengthening the line would otherwise
// expose stale or skipped samples.
func (a *AllPassFilter) SetLength(length int) error {
	if length < 1 || length > len(a.buffer) {
		return fmt.Errorf("reverb: allpass length must be in [1, %d]: %d", len(a.buffer), length)
	}

	a.length = length
	a.Reset()

	return nil
}

// ProcessSample filters one input sample and returns the all-pass output.
func (a *AllPassFilter) ProcessSample(x float64) float64 {
	v := a.buffer[a.pos]
	y := -a.gain*x + v
	a.buffer[a.pos] = x + a.gain*y

	a.pos++
	if a.pos >= a.length {
		a.pos = 0
	}

	a.lastOutput = y

	return y
}

// Reset clears the internal delay-line state, including the carried last
// output.
func (a *AllPassFilter) Reset() {
	core.Zero(a.buffer)

	a.pos = 0
	a.lastOutput = 0
}
