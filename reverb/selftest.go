package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-reverb/measure/ir"
)

const (
	selfTestDefaultDuration = 4.0 // seconds, used when RunSelfTest is given a non-positive duration
	selfTestBlockSize       = 512
)

// SelfTestReport is the outcome of one impulse-response self-test.
type SelfTestReport struct {
	Metrics    ir.Metrics
	SampleRate float64
	Duration   float64
}

// RT60WithinTolerance reports whether the measured RT60 is within
// toleranceFraction of targetSeconds (e.g. 0.15 for +/-15%).
func (r SelfTestReport) RT60WithinTolerance(targetSeconds, toleranceFraction float64) bool {
	if targetSeconds <= 0 {
		return false
	}

	return math.Abs(r.Metrics.RT60-targetSeconds) <= targetSeconds*toleranceFraction
}

// RunSelfTest measures the impulse response produced by a given parameter
// snapshot without touching any live engine's state: it builds its own
// throwaway Engine, force-settles every smoother to the snapshot's targets
// (no ramp, so the measured decay is not contaminated by a parameter
// transition), injects a unit impulse, and processes durationSeconds of
// silence after it. This routine is explicitly off the audio thread: it
// allocates freely and may take milliseconds to run.
func RunSelfTest(snapshot ParameterSnapshot, sampleRate, durationSeconds float64) (SelfTestReport, error) {
	if durationSeconds <= 0 {
		durationSeconds = selfTestDefaultDuration
	}

	e := NewEngine()
	if err := e.Initialize(sampleRate, selfTestBlockSize); err != nil {
		return SelfTestReport{}, fmt.Errorf("reverb: self-test initialize failed: %w", err)
	}

	snapshot.applyTo(e.Params())
	e.Params().SetBypass(false)
	e.Params().SetWetDryMix(100) // measure the wet tail in isolation

	e.forceSettleParameters()

	total := int(durationSeconds * sampleRate)
	trace := make([]float64, 0, total)

	inL := make([]float32, selfTestBlockSize)
	inR := make([]float32, selfTestBlockSize)
	outL := make([]float32, selfTestBlockSize)
	outR := make([]float32, selfTestBlockSize)

	inL[0] = 1
	inR[0] = 1

	for processed := 0; processed < total; processed += selfTestBlockSize {
		n := selfTestBlockSize
		if processed+n > total {
			n = total - processed
		}

		if err := e.ProcessBlock(
			[][]float32{inL[:n], inR[:n]},
			[][]float32{outL[:n], outR[:n]},
			2, n,
		); err != nil {
			return SelfTestReport{}, fmt.Errorf("reverb: self-test process failed: %w", err)
		}

		for i := 0; i < n; i++ {
			trace = append(trace, float64(outL[i]))
		}

		if processed == 0 {
			inL[0] = 0
			inR[0] = 0
		}
	}

	analyzer := ir.NewAnalyzer(sampleRate)

	metrics, err := analyzer.Analyze(trace)
	if err != nil {
		return SelfTestReport{}, fmt.Errorf("reverb: self-test analysis failed: %w", err)
	}

	return SelfTestReport{Metrics: metrics, SampleRate: sampleRate, Duration: durationSeconds}, nil
}
