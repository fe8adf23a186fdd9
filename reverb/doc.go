// Package reverb implements a studio-grade algorithmic reverberation engine
// built around a Feedback Delay Network (FDN): early reflections and serial
// diffusion feed an orthogonal-matrix feedback loop with per-line frequency
// damping, flanked by pre-FDN cross-feed and post-FDN stereo spread and tone
// shaping. Parameter changes are delivered lock-free from control threads to
// the audio thread and smoothed before touching DSP state.
package reverb
