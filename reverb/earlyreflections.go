package reverb

import "fmt"

// earlyReflectionPrimeLengths are the room-scaled prime all-pass lengths
// (in samples at 48 kHz) feeding the early-reflections chain.
var earlyReflectionPrimeLengths = [8]int{241, 317, 431, 563, 701, 857, 997, 1151}

// earlyReflectionGains are the fixed descending gains for the default
// 4-stage chain.
var earlyReflectionGains = [4]float64{0.75, 0.70, 0.65, 0.60}

const (
	earlyReflectionMinSamples  = 10
	earlyReflectionMaxSamples  = 2400
	earlyReflectionRefRate     = 48000.0
	earlyReflectionScaleFloor  = 0.3
	earlyReflectionScaleWeight = 0.7
)

// EarlyReflections is a serial all-pass chain with room-scaled prime delays
// that emits the "initial dense cloud" fed into the FDN. Delay lengths
// scale with sample rate and room size: length_i = prime_i *
// (sampleRate/48000) * (0.3 + 0.7*roomSize), clamped to [10, 2400] samples.
type EarlyReflections struct {
	stages     []*AllPassFilter
	sampleRate float64
	roomSize   float64
}

// NewEarlyReflections creates an early-reflections chain of 4 stages (the
// size of the fixed gain table) for the given sample rate and initial room
// size in [0, 1].
func NewEarlyReflections(sampleRate, roomSize float64) (*EarlyReflections, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("reverb: early reflections sample rate must be > 0: %f", sampleRate)
	}

	e := &EarlyReflections{
		stages:     make([]*AllPassFilter, len(earlyReflectionGains)),
		sampleRate: sampleRate,
	}

	for i := range e.stages {
		a, err := NewAllPassFilter(earlyReflectionMaxSamples, earlyReflectionGains[i])
		if err != nil {
			return nil, err
		}

		e.stages[i] = a
	}

	if err := e.SetRoomSize(roomSize); err != nil {
		return nil, err
	}

	return e, nil
}

// SetRoomSize updates the room-size control and retunes each stage's
// active delay length within its preallocated capacity. It is called once
// per block from the engine's smoothed room-size target, so during a
// room-size ramp a stage's integer length only changes (and its state only
// clears) on the blocks where the rounded length actually moves; the
// length == stage.Len() check below skips the no-op blocks in between.
func (e *EarlyReflections) SetRoomSize(roomSize float64) error {
	if roomSize < 0 || roomSize > 1 {
		return fmt.Errorf("reverb: room size must be in [0, 1]: %f", roomSize)
	}

	e.roomSize = roomSize
	scale := (e.sampleRate / earlyReflectionRefRate) * (earlyReflectionScaleFloor + earlyReflectionScaleWeight*roomSize)

	for i, stage := range e.stages {
		length := int(float64(earlyReflectionPrimeLengths[i]) * scale)
		if length < earlyReflectionMinSamples {
			length = earlyReflectionMinSamples
		}

		if length > earlyReflectionMaxSamples {
			length = earlyReflectionMaxSamples
		}

		if length == stage.Len() {
			continue
		}

		if err := stage.SetLength(length); err != nil {
			return err
		}
	}

	return nil
}

// RoomSize returns the current room-size control value.
func (e *EarlyReflections) RoomSize() float64 { return e.roomSize }

// ProcessSample passes x serially through every early-reflection stage.
func (e *EarlyReflections) ProcessSample(x float64) float64 {
	for _, stage := range e.stages {
		x = stage.ProcessSample(x)
	}

	return x
}

// Reset clears every stage's internal state.
func (e *EarlyReflections) Reset() {
	for _, stage := range e.stages {
		stage.Reset()
	}
}
