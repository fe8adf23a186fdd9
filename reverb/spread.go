package reverb

import (
	"fmt"

	"github.com/cwbudde/algo-reverb/dsp/effects/spatial"
)

const (
	spreadMinWidth          = 0.0
	spreadMaxWidth          = 2.0
	spreadCompensationScale = 0.15
	spreadCompensationFloor = 0.7
)

// StereoSpreadProcessor widens or narrows the wet stereo bus. The Mid/Side
// encode, scale, and decode is delegated to spatial.StereoWidener; this
// type layers the spec's mid-gain compensation above unity width on top of
// the widener's raw output, recovering mid/side from the widener's L/R
// pair rather than duplicating the encode/decode arithmetic.
type StereoSpreadProcessor struct {
	widener *spatial.StereoWidener
	width   float64
}

// NewStereoSpreadProcessor creates a spread processor at unity width for
// the given sample rate.
func NewStereoSpreadProcessor(sampleRate float64) (*StereoSpreadProcessor, error) {
	w, err := spatial.NewStereoWidener(sampleRate, spatial.WithWidth(1.0))
	if err != nil {
		return nil, fmt.Errorf("reverb: stereo spread processor: %w", err)
	}

	return &StereoSpreadProcessor{widener: w, width: 1.0}, nil
}

// SetWidth sets the width factor w in [0, 2].
func (s *StereoSpreadProcessor) SetWidth(width float64) error {
	if width < spreadMinWidth || width > spreadMaxWidth {
		return fmt.Errorf("reverb: stereo spread width must be in [%v, %v]: %f", spreadMinWidth, spreadMaxWidth, width)
	}

	s.width = width

	return s.widener.SetWidth(width)
}

// Width returns the current width factor.
func (s *StereoSpreadProcessor) Width() float64 { return s.width }

// ProcessSample widens the input pair via the underlying StereoWidener,
// then compensates mid gain above unity width (floored at 0.7) by
// recovering mid/side from the widener's L/R output and rescaling mid.
func (s *StereoSpreadProcessor) ProcessSample(inL, inR float64) (float64, float64) {
	outL, outR := s.widener.ProcessStereo(inL, inR)

	if s.width <= 1 {
		return outL, outR
	}

	compensation := 1 - spreadCompensationScale*(s.width-1)
	if compensation < spreadCompensationFloor {
		compensation = spreadCompensationFloor
	}

	mid := (outL + outR) * 0.5 * compensation
	sideWidened := (outL - outR) * 0.5

	return mid + sideWidened, mid - sideWidened
}

// Reset clears the underlying widener's internal filter state (a no-op
// unless bass-mono crossover is enabled, which this processor does not use).
func (s *StereoSpreadProcessor) Reset() { s.widener.Reset() }
