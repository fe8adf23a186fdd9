package reverb

import "testing"

func TestRunSelfTest_RejectsInvalidSampleRate(t *testing.T) {
	b := NewParameterBus()

	if _, err := RunSelfTest(b.Snapshot(), 8000, 1.0); err == nil {
		t.Fatal("expected error for out-of-range sample rate")
	}
}

func TestRunSelfTest_StudioPresetRT60NearTarget(t *testing.T) {
	// Scenario 2: measured RT60 should land within +/-15% of the preset's
	// configured decay time.
	b := NewParameterBus()
	b.ApplyPreset(PresetStudio)

	report, err := RunSelfTest(b.Snapshot(), 48000, 4.0)
	if err != nil {
		t.Fatalf("RunSelfTest returned error: %v", err)
	}

	if report.Metrics.RT60 <= 0 {
		t.Fatalf("expected positive measured RT60, got %v", report.Metrics.RT60)
	}

	if !report.RT60WithinTolerance(b.DecayTime(), 0.15) {
		t.Fatalf("measured RT60 %v not within 15%% of target %v", report.Metrics.RT60, b.DecayTime())
	}
}

func TestRunSelfTest_DoesNotMutateLiveEngine(t *testing.T) {
	e := newTestEngine(t)
	e.ApplyPreset(PresetCathedral)

	before := e.Params().Snapshot()

	studio := NewParameterBus()
	studio.ApplyPreset(PresetStudio)

	if _, err := RunSelfTest(studio.Snapshot(), 48000, 0.5); err != nil {
		t.Fatalf("RunSelfTest returned error: %v", err)
	}

	after := e.Params().Snapshot()

	if before != after {
		t.Fatalf("live engine parameters changed by self-test: before=%+v after=%+v", before, after)
	}
}

func TestRunSelfTest_ReportsSampleRateAndDuration(t *testing.T) {
	b := NewParameterBus()
	b.ApplyPreset(PresetVocalBooth)

	report, err := RunSelfTest(b.Snapshot(), 48000, 0.25)
	if err != nil {
		t.Fatalf("RunSelfTest returned error: %v", err)
	}

	if report.SampleRate != 48000 {
		t.Fatalf("expected SampleRate 48000, got %v", report.SampleRate)
	}

	if report.Duration != 0.25 {
		t.Fatalf("expected Duration 0.25, got %v", report.Duration)
	}
}
