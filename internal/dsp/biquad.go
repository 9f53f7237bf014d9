// Package dsp implements the equalizer's signal processing: second-order
// IIR peaking filters and the 10-band cascade built from them.
package dsp

import "math"

// Biquad is a single second-order IIR peaking filter for one channel.
// Coefficients follow Robert Bristow-Johnson's Audio EQ Cookbook,
// normalized by a0. The delay registers persist across buffer boundaries
// and must be reset whenever the input stream becomes discontinuous
// (seek, track change).
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

// NewBiquad returns a filter with neutral (pass-through) coefficients.
func NewBiquad() Biquad {
	return Biquad{b0: 1}
}

// Configure recomputes the peaking-EQ coefficients. It is safe to call
// while audio is flowing: the delay registers are left untouched, so the
// next processed sample simply uses the new transfer function.
func (f *Biquad) Configure(centerHz, gainDB, sampleRate, q float64) {
	a := math.Pow(10, gainDB/40)
	omega := 2 * math.Pi * centerHz / sampleRate
	sinOmega := math.Sin(omega)
	cosOmega := math.Cos(omega)
	alpha := sinOmega / (2 * q)

	b0 := 1 + alpha*a
	b1 := -2 * cosOmega
	b2 := 1 - alpha*a
	a0 := 1 + alpha/a
	a1 := -2 * cosOmega
	a2 := 1 - alpha/a

	f.b0 = b0 / a0
	f.b1 = b1 / a0
	f.b2 = b2 / a0
	f.a1 = a1 / a0
	f.a2 = a2 / a0
}

// ProcessSample runs one sample through the direct-form-I recurrence.
func (f *Biquad) ProcessSample(x float32) float32 {
	in := float64(x)
	out := f.b0*in + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2 = f.x1
	f.x1 = in
	f.y2 = f.y1
	f.y1 = out
	return float32(out)
}

// Reset zeroes the delay registers. Idempotent.
func (f *Biquad) Reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
}
