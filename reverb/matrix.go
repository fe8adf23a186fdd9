package reverb

import (
	"fmt"
	"math"
	"math/rand"
)

// houseHolderSeed is the fixed seed for the matrix's random reflection
// vector. Treated as part of the engine's ABI: changing it changes the
// feedback matrix and therefore the reverb's character across runs.
const houseHolderSeed = 0x5EED1EAF

const (
	matrixRT60SizeSmall    = 0.3
	matrixRT60SizeLarge    = 0.7
	matrixRT60MaxSizeSmall = 8.0
	matrixRT60MaxSizeMid   = 6.0
	matrixRT60MaxSizeLarge = 3.0

	matrixGainCapBase   = 0.98
	matrixGainCapRoom   = 0.03
	matrixGainCapLimit  = 0.97
	matrixHFFactorScale = 0.25
	matrixLFFactorScale = 0.15
)

// FeedbackMatrix is an orthogonal M x M Householder reflection
// H = I - 2*v*v^T scaled by a decay-controlling gain g derived from the
// target RT60. Because H is orthogonal, ||H*x||_2 == ||x||_2, so g alone
// determines the energy decay rate per matrix application.
type FeedbackMatrix struct {
	size int
	h    [][]float64
	gain float64
	// capped records whether the most recent gain derivation was clamped
	// by the stability limit, for diagnostic surfacing (see Engine).
	capped bool
}

// NewFeedbackMatrix builds an M x M Householder matrix from a fixed,
// reproducible pseudo-random reflection vector. M must be in [4, 12].
func NewFeedbackMatrix(size int) (*FeedbackMatrix, error) {
	if size < 4 || size > 12 {
		return nil, fmt.Errorf("reverb: feedback matrix size must be in [4, 12]: %d", size)
	}

	m := &FeedbackMatrix{size: size, gain: 1}
	m.buildHouseholder()

	return m, nil
}

func (m *FeedbackMatrix) buildHouseholder() {
	rng := rand.New(rand.NewSource(houseHolderSeed)) //nolint:gosec

	v := make([]float64, m.size)

	sumSq := 0.0
	for i := range v {
		v[i] = rng.Float64() - 0.5
		sumSq += v[i] * v[i]
	}

	norm := math.Sqrt(sumSq)
	for i := range v {
		v[i] /= norm
	}

	m.h = make([][]float64, m.size)
	for i := range m.h {
		m.h[i] = make([]float64, m.size)
		for j := range m.h[i] {
			if i == j {
				m.h[i][j] = 1 - 2*v[i]*v[j]
			} else {
				m.h[i][j] = -2 * v[i] * v[j]
			}
		}
	}
}

// SetGain derives and stores the matrix gain from an RT60 target, the mean
// FDN delay length in samples, the sample rate, and the HF/LF damping and
// room-size controls, per the §4.6 calibration formula.
func (m *FeedbackMatrix) SetGain(rt60Seconds, meanDelaySamples, sampleRate, hfDamping, lfDamping, roomSize float64) error {
	if rt60Seconds <= 0 {
		return fmt.Errorf("reverb: rt60 must be > 0: %f", rt60Seconds)
	}

	if sampleRate <= 0 {
		return fmt.Errorf("reverb: sample rate must be > 0: %f", sampleRate)
	}

	rt60Seconds = clampRT60ToSizeLimit(rt60Seconds, roomSize)

	tauSeconds := meanDelaySamples / sampleRate
	target := math.Pow(10, -3*tauSeconds/rt60Seconds)

	hfFactor := 1 - matrixHFFactorScale*hfDamping
	lfFactor := 1 - matrixLFFactorScale*lfDamping

	gainCap := matrixGainCapBase - matrixGainCapRoom*roomSize
	if gainCap > matrixGainCapLimit {
		gainCap = matrixGainCapLimit
	}

	g := target * hfFactor * lfFactor
	m.capped = g > gainCap

	if m.capped {
		g = gainCap
	}

	m.gain = g

	return nil
}

// clampRT60ToSizeLimit caps the requested RT60 by the room-size-dependent
// maximum decay: 8s for size <= 0.3, ramping linearly to 6s by 0.7, then to
// 3s by 1.0.
func clampRT60ToSizeLimit(rt60, roomSize float64) float64 {
	var limit float64

	switch {
	case roomSize <= matrixRT60SizeSmall:
		limit = matrixRT60MaxSizeSmall
	case roomSize <= matrixRT60SizeLarge:
		t := (roomSize - matrixRT60SizeSmall) / (matrixRT60SizeLarge - matrixRT60SizeSmall)
		limit = matrixRT60MaxSizeSmall + t*(matrixRT60MaxSizeMid-matrixRT60MaxSizeSmall)
	default:
		t := (1 - roomSize) / (1 - matrixRT60SizeLarge)
		limit = matrixRT60MaxSizeLarge + t*(matrixRT60MaxSizeMid-matrixRT60MaxSizeLarge)
	}

	if rt60 > limit {
		return limit
	}

	return rt60
}

// Gain returns the current scalar matrix gain g, where the effective
// feedback matrix is g*H.
func (m *FeedbackMatrix) Gain() float64 { return m.gain }

// Capped reports whether the most recent SetGain call clamped the gain at
// the stability limit rather than the RT60-derived target.
func (m *FeedbackMatrix) Capped() bool { return m.capped }

// Size returns M, the matrix dimension.
func (m *FeedbackMatrix) Size() int { return m.size }

// Multiply computes g*H*x into dst. dst and x must both have length M and
// must not alias.
func (m *FeedbackMatrix) Multiply(dst, x []float64) {
	for i := 0; i < m.size; i++ {
		sum := 0.0
		for j := 0; j < m.size; j++ {
			sum += m.h[i][j] * x[j]
		}

		dst[i] = m.gain * sum
	}
}

// Energy returns the Frobenius norm squared of H, sum_ij H_ij^2. Since H is
// orthogonal, this must equal M (§6 print_configuration, property P6): each
// row has unit L2 norm, so the sum over all M rows is M.
func (m *FeedbackMatrix) Energy() float64 {
	sum := 0.0

	for i := 0; i < m.size; i++ {
		for j := 0; j < m.size; j++ {
			sum += m.h[i][j] * m.h[i][j]
		}
	}

	return sum
}

// OrthogonalityError returns max |(H*H^T)_ij - delta_ij|, the diagnostic
// used to validate the Householder construction (§6 print_configuration,
// property P6).
func (m *FeedbackMatrix) OrthogonalityError() float64 {
	maxErr := 0.0

	for i := 0; i < m.size; i++ {
		for j := 0; j < m.size; j++ {
			sum := 0.0
			for k := 0; k < m.size; k++ {
				sum += m.h[i][k] * m.h[j][k]
			}

			want := 0.0
			if i == j {
				want = 1
			}

			if d := math.Abs(sum - want); d > maxErr {
				maxErr = d
			}
		}
	}

	return maxErr
}
