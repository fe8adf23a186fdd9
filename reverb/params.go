package reverb

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-reverb/dsp/core"
)

// Preset identifies one of the five named parameter configurations.
type Preset int

const (
	PresetClean Preset = iota
	PresetVocalBooth
	PresetStudio
	PresetCathedral
	PresetCustom
)

// atomicFloat64 is a single relaxed-ordering atomic cell holding a float64,
// bit-cast through atomic.Uint64. The audio thread only needs to observe
// the latest write eventually; cross-parameter consistency is not required
// since each ParameterSmoother absorbs the transient independently.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) store(v float64) { a.bits.Store(math.Float64bits(v)) }
func (a *atomicFloat64) load() float64   { return math.Float64frombits(a.bits.Load()) }

// ParameterBus holds every externally mutable parameter target as a
// lock-free atomic cell. Control threads write through the setters; the
// audio thread reads targets at the top of each block via the getters and
// feeds them to its ParameterSmoothers. No parameter setter blocks or
// allocates.
type ParameterBus struct {
	wetDryMix    atomicFloat64 // 0..100 %
	decayTime    atomicFloat64 // 0.1..8.0 s
	preDelay     atomicFloat64 // 0..200 ms
	crossFeed    atomicFloat64 // 0.0..1.0
	roomSize     atomicFloat64 // 0.0..1.0
	density      atomicFloat64 // 0..100 %
	hfDamping    atomicFloat64 // 0..100 %
	lfDamping    atomicFloat64 // 0..100 %
	stereoWidth  atomicFloat64 // 0.0..2.0
	highCutFreq  atomicFloat64 // 1000..20000 Hz
	lowCutFreq   atomicFloat64 // 20..1000 Hz

	phaseInvert atomic.Bool
	bypass      atomic.Bool
	preset      atomic.Int32
}

// NewParameterBus creates a parameter bus seeded with the default values
// from the engine's external interface table.
func NewParameterBus() *ParameterBus {
	b := &ParameterBus{}

	b.wetDryMix.store(35)
	b.decayTime.store(2.0)
	b.preDelay.store(75)
	b.crossFeed.store(0.5)
	b.roomSize.store(0.82)
	b.density.store(70)
	b.hfDamping.store(50)
	b.lfDamping.store(20)
	b.stereoWidth.store(1.0)
	b.highCutFreq.store(20000)
	b.lowCutFreq.store(20)
	b.preset.Store(int32(PresetCustom))

	return b
}

// clamp limits v to [lo, hi], delegating to dsp/core's numeric helper.
func clamp(v, lo, hi float64) float64 { return core.Clamp(v, lo, hi) }

// SetWetDryMix clamps and writes the wet/dry mix target (0..100%).
func (b *ParameterBus) SetWetDryMix(pct float64) { b.wetDryMix.store(clamp(pct, 0, 100)) }

// WetDryMix returns the wet/dry mix target.
func (b *ParameterBus) WetDryMix() float64 { return b.wetDryMix.load() }

// SetDecayTime clamps and writes the RT60 decay-time target (0.1..8.0 s).
func (b *ParameterBus) SetDecayTime(seconds float64) { b.decayTime.store(clamp(seconds, 0.1, 8.0)) }

// DecayTime returns the decay-time target in seconds.
func (b *ParameterBus) DecayTime() float64 { return b.decayTime.load() }

// SetPreDelay clamps and writes the pre-delay target (0..200 ms).
func (b *ParameterBus) SetPreDelay(ms float64) { b.preDelay.store(clamp(ms, 0, 200)) }

// PreDelay returns the pre-delay target in milliseconds.
func (b *ParameterBus) PreDelay() float64 { return b.preDelay.load() }

// SetCrossFeed clamps and writes the cross-feed amount target (0..1).
func (b *ParameterBus) SetCrossFeed(amount float64) { b.crossFeed.store(clamp(amount, 0, 1)) }

// CrossFeed returns the cross-feed amount target.
func (b *ParameterBus) CrossFeed() float64 { return b.crossFeed.load() }

// SetRoomSize clamps and writes the room-size target (0..1).
func (b *ParameterBus) SetRoomSize(size float64) { b.roomSize.store(clamp(size, 0, 1)) }

// RoomSize returns the room-size target.
func (b *ParameterBus) RoomSize() float64 { return b.roomSize.load() }

// SetDensity clamps and writes the diffusion density target (0..100%).
func (b *ParameterBus) SetDensity(pct float64) { b.density.store(clamp(pct, 0, 100)) }

// Density returns the density target.
func (b *ParameterBus) Density() float64 { return b.density.load() }

// SetHFDamping clamps and writes the high-frequency damping target (0..100%).
func (b *ParameterBus) SetHFDamping(pct float64) { b.hfDamping.store(clamp(pct, 0, 100)) }

// HFDamping returns the HF damping target.
func (b *ParameterBus) HFDamping() float64 { return b.hfDamping.load() }

// SetLFDamping clamps and writes the low-frequency damping target (0..100%).
func (b *ParameterBus) SetLFDamping(pct float64) { b.lfDamping.store(clamp(pct, 0, 100)) }

// LFDamping returns the LF damping target.
func (b *ParameterBus) LFDamping() float64 { return b.lfDamping.load() }

// SetStereoWidth clamps and writes the stereo-width target (0..2).
func (b *ParameterBus) SetStereoWidth(width float64) { b.stereoWidth.store(clamp(width, 0, 2)) }

// StereoWidth returns the stereo-width target.
func (b *ParameterBus) StereoWidth() float64 { return b.stereoWidth.load() }

// SetHighCutFreq clamps and writes the tone high-cut target (1000..20000 Hz).
func (b *ParameterBus) SetHighCutFreq(hz float64) { b.highCutFreq.store(clamp(hz, 1000, 20000)) }

// HighCutFreq returns the tone high-cut target in Hz.
func (b *ParameterBus) HighCutFreq() float64 { return b.highCutFreq.load() }

// SetLowCutFreq clamps and writes the tone low-cut target (20..1000 Hz).
func (b *ParameterBus) SetLowCutFreq(hz float64) { b.lowCutFreq.store(clamp(hz, 20, 1000)) }

// LowCutFreq returns the tone low-cut target in Hz.
func (b *ParameterBus) LowCutFreq() float64 { return b.lowCutFreq.load() }

// SetPhaseInvert writes the cross-feed phase-invert flag.
func (b *ParameterBus) SetPhaseInvert(invert bool) { b.phaseInvert.Store(invert) }

// PhaseInvert returns the cross-feed phase-invert flag.
func (b *ParameterBus) PhaseInvert() bool { return b.phaseInvert.Load() }

// SetBypass writes the bypass flag.
func (b *ParameterBus) SetBypass(bypass bool) { b.bypass.Store(bypass) }

// Bypass returns the bypass flag.
func (b *ParameterBus) Bypass() bool { return b.bypass.Load() }

// ParameterSnapshot is a plain-value copy of every bus target, useful for
// handing a consistent set of parameters to code that must not share the
// live bus's atomic cells (for example, a self-test running a throwaway
// engine instance on a non-audio thread).
type ParameterSnapshot struct {
	WetDryMix   float64
	DecayTime   float64
	PreDelay    float64
	CrossFeed   float64
	RoomSize    float64
	Density     float64
	HFDamping   float64
	LFDamping   float64
	StereoWidth float64
	HighCutFreq float64
	LowCutFreq  float64
	PhaseInvert bool
	Bypass      bool
}

// Snapshot captures every current target into a plain value.
func (b *ParameterBus) Snapshot() ParameterSnapshot {
	return ParameterSnapshot{
		WetDryMix:   b.WetDryMix(),
		DecayTime:   b.DecayTime(),
		PreDelay:    b.PreDelay(),
		CrossFeed:   b.CrossFeed(),
		RoomSize:    b.RoomSize(),
		Density:     b.Density(),
		HFDamping:   b.HFDamping(),
		LFDamping:   b.LFDamping(),
		StereoWidth: b.StereoWidth(),
		HighCutFreq: b.HighCutFreq(),
		LowCutFreq:  b.LowCutFreq(),
		PhaseInvert: b.PhaseInvert(),
		Bypass:      b.Bypass(),
	}
}

// applyTo writes a snapshot's values into bus as new targets.
func (s ParameterSnapshot) applyTo(b *ParameterBus) {
	b.SetWetDryMix(s.WetDryMix)
	b.SetDecayTime(s.DecayTime)
	b.SetPreDelay(s.PreDelay)
	b.SetCrossFeed(s.CrossFeed)
	b.SetRoomSize(s.RoomSize)
	b.SetDensity(s.Density)
	b.SetHFDamping(s.HFDamping)
	b.SetLFDamping(s.LFDamping)
	b.SetStereoWidth(s.StereoWidth)
	b.SetHighCutFreq(s.HighCutFreq)
	b.SetLowCutFreq(s.LowCutFreq)
	b.SetPhaseInvert(s.PhaseInvert)
	b.SetBypass(s.Bypass)
}

// SetPresetIndex writes the most recently applied preset index, for
// observability; it does not itself apply the preset.
func (b *ParameterBus) SetPresetIndex(p Preset) { b.preset.Store(int32(p)) }

// PresetIndex returns the most recently applied preset index.
func (b *ParameterBus) PresetIndex() Preset { return Preset(b.preset.Load()) }

// presetTable maps each named preset to its seed parameter values. Custom
// has no entry: applying it leaves every target unchanged.
var presetTable = map[Preset]struct {
	wetDryMix float64
	decay     float64
	preDelay  float64
	crossFeed float64
	roomSize  float64
	density   float64
	hfDamping float64
	bypass    bool
}{
	PresetClean:      {0, 0.1, 0, 0, 0, 0, 0, true},
	PresetVocalBooth: {18, 0.9, 8, 0.3, 0.35, 70, 30, false},
	PresetStudio:     {40, 1.7, 15, 0.5, 0.60, 85, 45, false},
	PresetCathedral:  {65, 2.8, 25, 0.7, 0.85, 60, 60, false},
}

// ApplyPreset writes a named preset's parameter values into the bus's
// targets. This is non-destructive: it writes targets only and never
// touches DSP state directly, so smoothers interpolate toward the new
// values rather than jumping. Applying PresetCustom leaves every target
// unchanged. Applying the same preset twice leaves targets equal after the
// second application.
func (b *ParameterBus) ApplyPreset(p Preset) {
	b.SetPresetIndex(p)

	if p == PresetCustom {
		return
	}

	cfg, ok := presetTable[p]
	if !ok {
		return
	}

	b.SetWetDryMix(cfg.wetDryMix)
	b.SetDecayTime(cfg.decay)
	b.SetPreDelay(cfg.preDelay)
	b.SetCrossFeed(cfg.crossFeed)
	b.SetRoomSize(cfg.roomSize)
	b.SetDensity(cfg.density)
	b.SetHFDamping(cfg.hfDamping)
	b.SetBypass(cfg.bypass)
}
