package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-reverb/dsp/effects/spatial"
)

const (
	crossFeedMinDelaySeconds     = 0.0
	crossFeedMaxDelaySeconds     = 0.050
	crossFeedDefaultDelaySeconds = 0.010
)

// monoDelay is a plain sample-delay line: write advances the cursor, tick
// returns the sample written delaySamples ago. Unlike DelayLine it has no
// fractional interpolation or two-phase read/write contract, since the
// cross-feed path only ever needs an integer delay.
type monoDelay struct {
	buf   []float64
	write int
}

func (d *monoDelay) init(delaySamples int) {
	if delaySamples < 1 {
		delaySamples = 1
	}

	d.buf = make([]float64, delaySamples)
	d.write = 0
}

func (d *monoDelay) tick(x float64) float64 {
	if len(d.buf) == 0 {
		return 0
	}

	out := d.buf[d.write]
	d.buf[d.write] = x

	d.write++
	if d.write >= len(d.buf) {
		d.write = 0
	}

	return out
}

func (d *monoDelay) reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}

	d.write = 0
}

// CrossFeedProcessor applies pre-FDN L/R cross-feed followed by a trailing
// Mid/Side width stage. Cross-feed can be hard-bypassed while leaving the
// width stage active. The cross-feed delay/phase-invert arithmetic is
// direct per §4.8 (delay-in-seconds and amount parameters, optional R->L
// inversion) and stays hand-rolled; the trailing width stage, which is
// plain unscaled Mid/Side with no gain compensation, is delegated to
// spatial.StereoWidener instead of duplicating that encode/decode.
type CrossFeedProcessor struct {
	sampleRate float64

	amount         float64
	invertRightToL bool
	bypassed       bool

	widener *spatial.StereoWidener

	delaySeconds float64
	delayLeft    monoDelay
	delayRight   monoDelay
}

// NewCrossFeedProcessor creates a cross-feed processor at the given sample
// rate with the default 10ms delay, zero cross-feed amount, and unity width.
func NewCrossFeedProcessor(sampleRate float64) (*CrossFeedProcessor, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: cross-feed sample rate must be > 0: %f", sampleRate)
	}

	w, err := spatial.NewStereoWidener(sampleRate, spatial.WithWidth(1.0))
	if err != nil {
		return nil, fmt.Errorf("reverb: cross-feed processor: %w", err)
	}

	c := &CrossFeedProcessor{
		sampleRate: sampleRate,
		widener:    w,
	}

	if err := c.SetDelay(crossFeedDefaultDelaySeconds); err != nil {
		return nil, err
	}

	return c, nil
}

// SetAmount sets the cross-feed amount a in [0, 1].
func (c *CrossFeedProcessor) SetAmount(amount float64) error {
	if amount < 0 || amount > 1 {
		return fmt.Errorf("reverb: cross-feed amount must be in [0, 1]: %f", amount)
	}

	c.amount = amount

	return nil
}

// Amount returns the current cross-feed amount.
func (c *CrossFeedProcessor) Amount() float64 { return c.amount }

// SetDelay sets the cross-feed delay line length in seconds, in [0, 0.050].
func (c *CrossFeedProcessor) SetDelay(seconds float64) error {
	if seconds < crossFeedMinDelaySeconds || seconds > crossFeedMaxDelaySeconds {
		return fmt.Errorf("reverb: cross-feed delay must be in [%v, %v] seconds: %f",
			crossFeedMinDelaySeconds, crossFeedMaxDelaySeconds, seconds)
	}

	c.delaySeconds = seconds
	samples := int(seconds * c.sampleRate)
	c.delayLeft.init(samples)
	c.delayRight.init(samples)

	return nil
}

// Delay returns the current cross-feed delay in seconds.
func (c *CrossFeedProcessor) Delay() float64 { return c.delaySeconds }

// SetPhaseInvert toggles phase inversion on the R->L cross-feed path.
func (c *CrossFeedProcessor) SetPhaseInvert(invert bool) { c.invertRightToL = invert }

// PhaseInvert reports whether the R->L path is phase-inverted.
func (c *CrossFeedProcessor) PhaseInvert() bool { return c.invertRightToL }

// SetBypass hard-bypasses the cross-feed stage. The trailing width stage
// remains active regardless of bypass.
func (c *CrossFeedProcessor) SetBypass(bypass bool) { c.bypassed = bypass }

// Bypassed reports whether cross-feed is currently bypassed.
func (c *CrossFeedProcessor) Bypassed() bool { return c.bypassed }

// SetWidth sets the trailing Mid/Side width factor in [0, 2].
func (c *CrossFeedProcessor) SetWidth(width float64) error {
	if width < 0 || width > 2 {
		return fmt.Errorf("reverb: cross-feed width must be in [0, 2]: %f", width)
	}

	return c.widener.SetWidth(width)
}

// Width returns the current trailing width factor.
func (c *CrossFeedProcessor) Width() float64 { return c.widener.Width() }

// ProcessSample applies cross-feed (unless bypassed) then the trailing
// Mid/Side width stage to one stereo sample pair.
func (c *CrossFeedProcessor) ProcessSample(inL, inR float64) (float64, float64) {
	outL, outR := inL, inR

	if !c.bypassed {
		delayedL := c.delayLeft.tick(inL)
		delayedR := c.delayRight.tick(inR)

		crossR := delayedR
		if c.invertRightToL {
			crossR = -crossR
		}

		outL = inL + c.amount*crossR
		outR = inR + c.amount*delayedL
	}

	return c.widener.ProcessStereo(outL, outR)
}

// Reset clears the cross-feed delay lines and the trailing widener state.
func (c *CrossFeedProcessor) Reset() {
	c.delayLeft.reset()
	c.delayRight.reset()
	c.widener.Reset()
}
