package reverb

import "math"

// SmoothingMode selects how a ParameterSmoother interpolates toward its
// target.
type SmoothingMode int

const (
	// SmoothLinear applies the one-pole coefficient c += k*(t-c).
	SmoothLinear SmoothingMode = iota
	// SmoothSCurve applies a 3t^2-2t^3 smoothstep to a progress counter,
	// giving a softer start/end than the exponential approach of linear
	// smoothing.
	SmoothSCurve
	// SmoothLogarithmic interpolates in log-amplitude space, so a gain
	// fade sounds linear in perceived loudness.
	SmoothLogarithmic
)

const smoothLogFloor = 1e-6

// ParameterSmoother advances a single control-rate parameter from its
// current value toward a target, one sample (or one block) at a time,
// to avoid zipper noise from stepped parameter changes.
type ParameterSmoother struct {
	mode SmoothingMode

	current   float64
	target    float64
	coeff     float64
	threshold float64

	// S-curve progress state.
	sCurveFrom     float64
	sCurveProgress float64
	sCurveStep     float64
}

// NewParameterSmoother creates a smoother with time constant tauSeconds at
// the given sample rate, starting at initial value. changeThreshold is the
// minimum target delta that triggers smoothing; smaller changes are applied
// immediately to avoid spending CPU on inaudible motion.
func NewParameterSmoother(mode SmoothingMode, tauSeconds, sampleRate, changeThreshold, initial float64) *ParameterSmoother {
	s := &ParameterSmoother{
		mode:      mode,
		current:   initial,
		target:    initial,
		threshold: changeThreshold,
	}

	if tauSeconds > 0 && sampleRate > 0 {
		s.coeff = 1 - math.Exp(-1/(tauSeconds*sampleRate))
	} else {
		s.coeff = 1
	}

	if s.coeff > 0 {
		s.sCurveStep = s.coeff
	}

	return s
}

// SetTarget writes a new target. Changes smaller than the configured
// threshold are applied immediately without triggering smoothing.
func (s *ParameterSmoother) SetTarget(target float64) {
	if math.Abs(target-s.target) < s.threshold {
		s.target = target
		s.current = target
		s.sCurveProgress = 0

		return
	}

	s.target = target

	if s.mode == SmoothSCurve {
		s.sCurveFrom = s.current
		s.sCurveProgress = 0
	}
}

// Target returns the most recently written target.
func (s *ParameterSmoother) Target() float64 { return s.target }

// Current returns the current smoothed value without advancing it.
func (s *ParameterSmoother) Current() float64 { return s.current }

// Next advances the smoother by one sample and returns the new current
// value.
func (s *ParameterSmoother) Next() float64 {
	switch s.mode {
	case SmoothLogarithmic:
		cur := math.Max(s.current, smoothLogFloor)
		tgt := math.Max(s.target, smoothLogFloor)
		logCur := math.Log(cur)
		logTgt := math.Log(tgt)
		logCur += s.coeff * (logTgt - logCur)
		s.current = math.Exp(logCur)

	case SmoothSCurve:
		if s.sCurveProgress >= 1 {
			s.current = s.target
			break
		}

		s.sCurveProgress += s.sCurveStep
		if s.sCurveProgress > 1 {
			s.sCurveProgress = 1
		}

		t := s.sCurveProgress
		eased := t * t * (3 - 2*t)
		s.current = s.sCurveFrom + eased*(s.target-s.sCurveFrom)

	default: // SmoothLinear
		s.current += s.coeff * (s.target - s.current)
	}

	return s.current
}

// Reset snaps the smoother directly to value, with no ramp.
func (s *ParameterSmoother) Reset(value float64) {
	s.current = value
	s.target = value
	s.sCurveProgress = 0
}
