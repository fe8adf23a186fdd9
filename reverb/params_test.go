package reverb

import "testing"

func TestNewParameterBus_SeedsDefaults(t *testing.T) {
	b := NewParameterBus()

	if b.WetDryMix() != 35 {
		t.Errorf("WetDryMix default = %v, want 35", b.WetDryMix())
	}
	if b.DecayTime() != 2.0 {
		t.Errorf("DecayTime default = %v, want 2.0", b.DecayTime())
	}
	if b.RoomSize() != 0.82 {
		t.Errorf("RoomSize default = %v, want 0.82", b.RoomSize())
	}
	if b.Bypass() {
		t.Error("Bypass default should be false")
	}
}

func TestParameterBus_SettersClampSilently(t *testing.T) {
	b := NewParameterBus()

	b.SetWetDryMix(150)
	if b.WetDryMix() != 100 {
		t.Errorf("WetDryMix clamp high = %v, want 100", b.WetDryMix())
	}

	b.SetWetDryMix(-10)
	if b.WetDryMix() != 0 {
		t.Errorf("WetDryMix clamp low = %v, want 0", b.WetDryMix())
	}

	b.SetDecayTime(100)
	if b.DecayTime() != 8.0 {
		t.Errorf("DecayTime clamp high = %v, want 8.0", b.DecayTime())
	}

	b.SetStereoWidth(-1)
	if b.StereoWidth() != 0 {
		t.Errorf("StereoWidth clamp low = %v, want 0", b.StereoWidth())
	}

	b.SetHighCutFreq(100)
	if b.HighCutFreq() != 1000 {
		t.Errorf("HighCutFreq clamp low = %v, want 1000", b.HighCutFreq())
	}
}

func TestParameterBus_ApplyPresetWritesTargets(t *testing.T) {
	b := NewParameterBus()
	b.ApplyPreset(PresetStudio)

	if b.WetDryMix() != 40 {
		t.Errorf("Studio WetDryMix = %v, want 40", b.WetDryMix())
	}
	if b.DecayTime() != 1.7 {
		t.Errorf("Studio DecayTime = %v, want 1.7", b.DecayTime())
	}
	if b.PresetIndex() != PresetStudio {
		t.Errorf("PresetIndex = %v, want PresetStudio", b.PresetIndex())
	}
}

func TestParameterBus_ApplyCleanSetsBypass(t *testing.T) {
	b := NewParameterBus()
	b.SetBypass(false)
	b.ApplyPreset(PresetClean)

	if !b.Bypass() {
		t.Error("expected Clean preset to set bypass")
	}
}

func TestParameterBus_ApplyCustomLeavesTargetsUnchanged(t *testing.T) {
	b := NewParameterBus()
	b.SetWetDryMix(77)
	b.SetDecayTime(3.3)

	b.ApplyPreset(PresetCustom)

	if b.WetDryMix() != 77 {
		t.Errorf("Custom should not change WetDryMix, got %v", b.WetDryMix())
	}
	if b.DecayTime() != 3.3 {
		t.Errorf("Custom should not change DecayTime, got %v", b.DecayTime())
	}
}

func TestParameterBus_ApplyingSamePresetTwiceIsIdempotent(t *testing.T) {
	// R3: applying the same preset twice leaves targets equal after the
	// second application.
	b := NewParameterBus()
	b.ApplyPreset(PresetCathedral)

	first := b.WetDryMix()
	firstDecay := b.DecayTime()

	b.ApplyPreset(PresetCathedral)

	if b.WetDryMix() != first || b.DecayTime() != firstDecay {
		t.Fatalf("re-applying preset changed targets: wetdry %v->%v decay %v->%v",
			first, b.WetDryMix(), firstDecay, b.DecayTime())
	}
}
