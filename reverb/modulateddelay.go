package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/dsp/delay"
)

const (
	modDelayDefaultRateHz      = 0.5
	modDelayDefaultDepthSecond = 0.002
	modDelayMaxDepthSeconds    = 0.010
	modDelayMinBaseSeconds     = 0.0
)

// ModulatedDelay is an LFO-modulated fractional delay line, following the
// same sinusoidal modulation law as a chorus voice:
//
//	delay(t) = base + depth * 0.5 * (1 + sin(phase))
//
// Every FDN line carries one of these, but the hot feedback path does not
// read from it: it exists as the concrete extension point for a future
// chorus-on-the-tail mode, so the delay length and LFO phase stay live and
// ready even though nothing in ProcessSample consumes Tick's output yet.
type ModulatedDelay struct {
	sampleRate float64
	line       *delay.Line

	baseSeconds  float64
	depthSeconds float64
	rateHz       float64

	lfoPhase float64
}

// NewModulatedDelay creates a modulated delay line at the given sample rate
// with the given base delay in seconds and default rate/depth.
func NewModulatedDelay(sampleRate, baseSeconds float64) (*ModulatedDelay, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: modulated delay sample rate must be > 0: %f", sampleRate)
	}

	if baseSeconds < modDelayMinBaseSeconds {
		return nil, fmt.Errorf("reverb: modulated delay base must be >= %v: %f", modDelayMinBaseSeconds, baseSeconds)
	}

	m := &ModulatedDelay{
		sampleRate:   sampleRate,
		baseSeconds:  baseSeconds,
		depthSeconds: modDelayDefaultDepthSecond,
		rateHz:       modDelayDefaultRateHz,
	}

	size := int(math.Ceil((baseSeconds+modDelayMaxDepthSeconds)*sampleRate)) + 4
	if size < 8 {
		size = 8
	}

	line, err := delay.New(size)
	if err != nil {
		return nil, err
	}

	m.line = line

	return m, nil
}

// SetRate sets the LFO rate in Hz. Must be > 0.
func (m *ModulatedDelay) SetRate(hz float64) error {
	if hz <= 0 {
		return fmt.Errorf("reverb: modulated delay rate must be > 0: %f", hz)
	}

	m.rateHz = hz

	return nil
}

// Rate returns the current LFO rate in Hz.
func (m *ModulatedDelay) Rate() float64 { return m.rateHz }

// SetDepth sets the modulation depth in seconds, in [0, modDelayMaxDepthSeconds].
func (m *ModulatedDelay) SetDepth(seconds float64) error {
	if seconds < 0 || seconds > modDelayMaxDepthSeconds {
		return fmt.Errorf("reverb: modulated delay depth must be in [0, %v]: %f", modDelayMaxDepthSeconds, seconds)
	}

	m.depthSeconds = seconds

	return nil
}

// Depth returns the current modulation depth in seconds.
func (m *ModulatedDelay) Depth() float64 { return m.depthSeconds }

// Tick writes x into the line, advances the LFO phase, and returns the
// Hermite-interpolated read at the current modulated delay.
func (m *ModulatedDelay) Tick(x float64) float64 {
	m.line.Write(x)

	mod := 0.5 * (1 + math.Sin(m.lfoPhase))
	delaySamples := (m.baseSeconds + m.depthSeconds*mod) * m.sampleRate

	out := m.line.ReadFractional(delaySamples)

	m.lfoPhase += 2 * math.Pi * m.rateHz / m.sampleRate
	if m.lfoPhase >= 2*math.Pi {
		m.lfoPhase -= 2 * math.Pi
	}

	return out
}

// Reset clears the delay line and the LFO phase.
func (m *ModulatedDelay) Reset() {
	m.line.Reset()
	m.lfoPhase = 0
}
