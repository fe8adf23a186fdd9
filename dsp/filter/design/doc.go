// Package design provides digital IIR filter coefficient designers.
//
// The functions in this package produce single second-order biquad
// coefficients consumable by dsp/filter/biquad for runtime processing,
// using the standard RBJ Audio EQ Cookbook formulas (Lowpass, Highpass,
// Bandpass, Notch, Allpass, Peak, LowShelf, HighShelf).
package design
