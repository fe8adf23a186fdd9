package reverb

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	engineMinSampleRate = 44100.0
	engineMaxSampleRate = 96000.0

	engineRoomSizeFlushThreshold = 0.05

	engineWetDryTau    = 0.030
	engineGainTau      = 0.040
	engineDecayTau     = 0.200
	engineRoomSizeTau  = 0.300
	engineDampingTau   = 0.100

	engineWetDryThreshold   = 1.0 // percent
	engineGainThreshold     = 0.05
	engineRoomSizeThreshold = 0.1
	engineDampingThreshold  = 0.05 // percent scale handled by caller
)

// Engine orchestrates the full signal path: cross-feed on the input pair,
// the FDN core, stereo spread, and tone shaping on the wet bus, mixed
// against the dry signal by a smoothed wet/dry coefficient. Every
// parameter is exposed through an atomic ParameterBus so control threads
// never touch DSP state directly; the audio thread snapshots smoothed
// values once per block.
type Engine struct {
	sampleRate    float64
	maxBlockSize  int
	initialized   bool

	params *ParameterBus

	crossFeed *CrossFeedProcessor
	fdn       *FDN
	spread    *StereoSpreadProcessor
	tone      *ToneFilter

	wetDryMix   *ParameterSmoother
	decayTime   *ParameterSmoother
	preDelay    *ParameterSmoother
	crossAmount *ParameterSmoother
	roomSize    *ParameterSmoother
	density     *ParameterSmoother
	hfDamping   *ParameterSmoother
	lfDamping   *ParameterSmoother
	stereoWidth *ParameterSmoother
	highCut     *ParameterSmoother
	lowCut      *ParameterSmoother

	lastRoomSize float64
	wasBypassed  bool
	cpuPercent   float64
}

// NewEngine creates an uninitialized engine bound to a fresh parameter
// bus. Call Initialize before ProcessBlock.
func NewEngine() *Engine {
	return &Engine{params: NewParameterBus()}
}

// Params returns the engine's atomic parameter bus for control-thread
// access.
func (e *Engine) Params() *ParameterBus { return e.params }

// Initialize configures (or reconfigures) every component for the given
// sample rate and maximum block size. It is idempotent and may be called
// again to change configuration. On failure the engine remains
// uninitialized and ProcessBlock passes input through unchanged.
func (e *Engine) Initialize(sampleRate float64, maxBlockSize int) error {
	if sampleRate < engineMinSampleRate || sampleRate > engineMaxSampleRate {
		e.initialized = false
		return fmt.Errorf("reverb: engine sample rate must be in [%v, %v]: %f", engineMinSampleRate, engineMaxSampleRate, sampleRate)
	}

	if maxBlockSize <= 0 {
		e.initialized = false
		return fmt.Errorf("reverb: engine max block size must be > 0: %d", maxBlockSize)
	}

	cf, err := NewCrossFeedProcessor(sampleRate)
	if err != nil {
		return err
	}

	fdn, err := NewFDN(fdnDefaultSize, sampleRate, e.params.RoomSize())
	if err != nil {
		return err
	}

	spread, err := NewStereoSpreadProcessor(sampleRate)
	if err != nil {
		return err
	}

	e.sampleRate = sampleRate
	e.maxBlockSize = maxBlockSize
	e.crossFeed = cf
	e.fdn = fdn
	e.spread = spread

	tone, err := NewToneFilter(sampleRate)
	if err != nil {
		return err
	}

	e.tone = tone

	p := e.params

	e.wetDryMix = NewParameterSmoother(SmoothLinear, engineWetDryTau, sampleRate, engineWetDryThreshold, p.WetDryMix())
	e.decayTime = NewParameterSmoother(SmoothLinear, engineDecayTau, sampleRate, engineGainThreshold, p.DecayTime())
	e.preDelay = NewParameterSmoother(SmoothLinear, engineGainTau, sampleRate, engineGainThreshold, p.PreDelay())
	e.crossAmount = NewParameterSmoother(SmoothLinear, engineGainTau, sampleRate, engineGainThreshold, p.CrossFeed())
	e.roomSize = NewParameterSmoother(SmoothLinear, engineRoomSizeTau, sampleRate, engineRoomSizeThreshold, p.RoomSize())
	e.density = NewParameterSmoother(SmoothLinear, engineGainTau, sampleRate, engineGainThreshold, p.Density())
	e.hfDamping = NewParameterSmoother(SmoothLinear, engineDampingTau, sampleRate, engineDampingThreshold, p.HFDamping())
	e.lfDamping = NewParameterSmoother(SmoothLinear, engineDampingTau, sampleRate, engineDampingThreshold, p.LFDamping())
	e.stereoWidth = NewParameterSmoother(SmoothLinear, engineGainTau, sampleRate, engineGainThreshold, p.StereoWidth())
	e.highCut = NewParameterSmoother(SmoothLogarithmic, engineGainTau, sampleRate, engineGainThreshold, p.HighCutFreq())
	e.lowCut = NewParameterSmoother(SmoothLogarithmic, engineGainTau, sampleRate, engineGainThreshold, p.LowCutFreq())

	e.lastRoomSize = p.RoomSize()
	e.wasBypassed = p.Bypass()
	e.initialized = true

	return nil
}

// Reset flushes every delay-line and filter state to zero.
func (e *Engine) Reset() {
	if !e.initialized {
		return
	}

	e.crossFeed.Reset()
	e.fdn.Reset()
	e.spread.Reset()
	e.tone.Reset()
}

// ApplyPreset writes a named preset's targets into the parameter bus.
func (e *Engine) ApplyPreset(p Preset) { e.params.ApplyPreset(p) }

// CPUUsagePercent returns (wall time / block duration) x 100 for the most
// recently processed block.
func (e *Engine) CPUUsagePercent() float64 { return e.cpuPercent }

// ProcessBlock processes one block of planar float32 audio in place (or
// copies dry-through on bypass). channels must be 1 or 2; samples must not
// exceed the configured max block size. samples == 0 returns immediately
// with no state change.
func (e *Engine) ProcessBlock(inputs [][]float32, outputs [][]float32, channels, samples int) error {
	if samples == 0 {
		return nil
	}

	if !e.initialized {
		for c := 0; c < channels && c < len(inputs) && c < len(outputs); c++ {
			copy(outputs[c][:samples], inputs[c][:samples])
		}

		return nil
	}

	if channels != 1 && channels != 2 {
		return fmt.Errorf("reverb: channels must be 1 or 2: %d", channels)
	}

	if samples > e.maxBlockSize {
		return fmt.Errorf("reverb: samples %d exceeds max block size %d", samples, e.maxBlockSize)
	}

	start := time.Now()
	defer e.updateCPUEstimate(start, samples)

	bypass := e.params.Bypass()

	if bypass {
		for c := 0; c < channels; c++ {
			copy(outputs[c][:samples], inputs[c][:samples])
		}

		e.wasBypassed = true

		return nil
	}

	if e.wasBypassed {
		e.Reset()
		e.wasBypassed = false
	}

	e.snapshotTargets()
	e.checkRoomSizeFlush()

	// Heavy parameters (anything that triggers a filter or delay-length
	// rebuild) are pushed into DSP state once per block: the smoother's
	// recurrence still advances at sample granularity so the *value*
	// converges with the correct time constant, but the expensive side
	// effect of applying it only runs once. Wet/dry mix is exempt: it is
	// a pure mix coefficient with no rebuild cost, so it tracks the
	// smoother sample-by-sample to stay click-free within one block.
	var preDelaySec, crossAmount, roomSize, density, hfDamp, lfDamp, width, highCut, lowCut float64

	for i := 0; i < samples; i++ {
		e.decayTime.Next()
		preDelaySec = e.preDelay.Next() / 1000
		crossAmount = e.crossAmount.Next()
		roomSize = e.roomSize.Next()
		density = e.density.Next()
		hfDamp = e.hfDamping.Next() / 100
		lfDamp = e.lfDamping.Next() / 100
		width = e.stereoWidth.Next()
		highCut = e.highCut.Next()
		lowCut = e.lowCut.Next()
	}

	_ = e.crossFeed.SetAmount(crossAmount)
	_ = e.crossFeed.SetWidth(1.0)
	e.crossFeed.SetPhaseInvert(e.params.PhaseInvert())

	_ = e.fdn.SetPreDelay(clamp(preDelaySec, 0, fdnDefaultPreDelayMax))
	_ = e.fdn.SetRoomSize(roomSize)
	_ = e.fdn.SetDensity(density)
	_ = e.fdn.SetDamping(hfDamp, lfDamp)
	_ = e.fdn.SetDecay(e.decayTime.Current(), hfDamp, lfDamp)

	_ = e.spread.SetWidth(width)

	_ = e.tone.SetHighCutFreq(clamp(highCut, toneHighCutMin, toneHighCutMax))
	_ = e.tone.SetLowCutFreq(clamp(lowCut, toneLowCutMin, toneLowCutMax))
	e.tone.SetHighCutEnabled(highCut < toneHighCutMax)
	e.tone.SetLowCutEnabled(lowCut > toneLowCutMin)

	// §4.7's injection/output gains differ between the mono ProcessSample
	// path and the stereo ProcessStereoSample path; channels is fixed for
	// the whole block, so this is set once rather than per-sample.
	e.fdn.SetStereo(channels == 2)

	for i := 0; i < samples; i++ {
		wetDry := e.wetDryMix.Next() / 100

		var inL, inR float64

		if channels == 1 {
			inL = float64(inputs[0][i])
			inR = inL
		} else {
			inL = float64(inputs[0][i])
			inR = float64(inputs[1][i])
		}

		xfL, xfR := e.crossFeed.ProcessSample(inL, inR)

		var wetL, wetR float64

		if channels == 1 {
			wetL = e.fdn.ProcessSample(xfL)
			wetR = wetL
		} else {
			wetL, wetR = e.fdn.ProcessStereoSample(xfL, xfR)
		}

		wetL, wetR = e.spread.ProcessSample(wetL, wetR)
		wetL, wetR = e.tone.ProcessSample(wetL, wetR)

		outL := inL*(1-wetDry) + wetL*wetDry
		outR := inR*(1-wetDry) + wetR*wetDry

		outputs[0][i] = float32(outL)

		if channels == 2 {
			outputs[1][i] = float32(outR)
		}
	}

	return nil
}

// updateCPUEstimate records (wall time / block duration) x 100 for the
// block just processed.
func (e *Engine) updateCPUEstimate(start time.Time, samples int) {
	if e.sampleRate <= 0 || samples == 0 {
		return
	}

	elapsed := time.Since(start).Seconds()
	blockDuration := float64(samples) / e.sampleRate

	if blockDuration <= 0 {
		return
	}

	e.cpuPercent = (elapsed / blockDuration) * 100
}

// snapshotTargets reduces atomic traffic inside the inner loop by pushing
// the bus's current targets into every smoother once per block.
func (e *Engine) snapshotTargets() {
	p := e.params

	e.wetDryMix.SetTarget(p.WetDryMix())
	e.decayTime.SetTarget(p.DecayTime())
	e.preDelay.SetTarget(p.PreDelay())
	e.crossAmount.SetTarget(p.CrossFeed())
	e.roomSize.SetTarget(p.RoomSize())
	e.density.SetTarget(p.Density())
	e.hfDamping.SetTarget(p.HFDamping())
	e.lfDamping.SetTarget(p.LFDamping())
	e.stereoWidth.SetTarget(p.StereoWidth())
	e.highCut.SetTarget(p.HighCutFreq())
	e.lowCut.SetTarget(p.LowCutFreq())
}

// forceSettleParameters snaps every smoother straight to the bus's current
// targets with no ramp. ProcessBlock never calls this: live audio always
// smooths. It exists for the self-test, which needs a deterministic
// impulse response rather than one contaminated by a parameter ramp.
func (e *Engine) forceSettleParameters() {
	p := e.params

	e.wetDryMix.Reset(p.WetDryMix())
	e.decayTime.Reset(p.DecayTime())
	e.preDelay.Reset(p.PreDelay())
	e.crossAmount.Reset(p.CrossFeed())
	e.roomSize.Reset(p.RoomSize())
	e.density.Reset(p.Density())
	e.hfDamping.Reset(p.HFDamping())
	e.lfDamping.Reset(p.LFDamping())
	e.stereoWidth.Reset(p.StereoWidth())
	e.highCut.Reset(p.HighCutFreq())
	e.lowCut.Reset(p.LowCutFreq())

	_ = e.fdn.SetPreDelay(clamp(p.PreDelay()/1000, 0, fdnDefaultPreDelayMax))
	_ = e.fdn.SetRoomSize(p.RoomSize())
	_ = e.fdn.SetDensity(p.Density())
	_ = e.fdn.SetDamping(p.HFDamping()/100, p.LFDamping()/100)
	_ = e.fdn.SetDecay(p.DecayTime(), p.HFDamping()/100, p.LFDamping()/100)
	_ = e.spread.SetWidth(p.StereoWidth())
	_ = e.tone.SetHighCutFreq(clamp(p.HighCutFreq(), toneHighCutMin, toneHighCutMax))
	_ = e.tone.SetLowCutFreq(clamp(p.LowCutFreq(), toneLowCutMin, toneLowCutMax))
	e.tone.SetHighCutEnabled(p.HighCutFreq() < toneHighCutMax)
	e.tone.SetLowCutEnabled(p.LowCutFreq() > toneLowCutMin)
	_ = e.crossFeed.SetAmount(p.CrossFeed())
	e.crossFeed.SetPhaseInvert(p.PhaseInvert())

	e.lastRoomSize = p.RoomSize()
}

// checkRoomSizeFlush implements B2: a room-size jump larger than the
// threshold schedules a flush that zeros delay-line state immediately,
// at the next block boundary (here, the start of this block).
func (e *Engine) checkRoomSizeFlush() {
	current := e.params.RoomSize()
	if math.Abs(current-e.lastRoomSize) > engineRoomSizeFlushThreshold {
		e.fdn.Reset()
	}

	e.lastRoomSize = current
}

// PrintConfiguration returns a diagnostic summary of per-line delay
// lengths, matrix size, matrix energy, and the Householder orthogonality
// check, per §6.
func (e *Engine) PrintConfiguration() string {
	if !e.initialized {
		return "reverb engine: uninitialized"
	}

	m := e.fdn.Matrix()

	const diagnosticFreqHz = 8000.0
	hfDB, lfDB := e.fdn.Damping(0).ResponseDB(diagnosticFreqHz)
	highCutDB, lowCutDB := e.tone.ResponseDB(diagnosticFreqHz)

	delays := e.fdn.LineDelays()
	delayStrs := make([]string, len(delays))
	for i, d := range delays {
		delayStrs[i] = fmt.Sprintf("%.1f", d)
	}

	return fmt.Sprintf(
		"reverb engine: sampleRate=%.0f lines=%d delays=[%s] matrixGain=%.4f matrixEnergy=%.4f capped=%v "+
			"orthogonalityError=%.2e damping(hf=%.2fdB lf=%.2fdB @%.0fHz) tone(highCut=%.2fdB lowCut=%.2fdB @%.0fHz)",
		e.sampleRate, m.Size(), strings.Join(delayStrs, ","), m.Gain(), m.Energy(), m.Capped(),
		m.OrthogonalityError(), hfDB, lfDB, diagnosticFreqHz, highCutDB, lowCutDB, diagnosticFreqHz)
}

