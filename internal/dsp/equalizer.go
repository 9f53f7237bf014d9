package dsp

// NumBands is the number of equalizer bands.
const NumBands = 10

// Gain bounds in dB for a single band.
const (
	MinGainDB = -12.0
	MaxGainDB = 12.0
)

// bandQ is the fixed Q factor used for every peaking band.
const bandQ = 1.0

// BandFrequencies are the standard 10-band center frequencies in Hz,
// in increasing order.
var BandFrequencies = [NumBands]float64{
	31.25, 62.5, 125, 250, 500, 1000, 2000, 4000, 8000, 16000,
}

// Equalizer cascades NumBands peaking filters over an interleaved
// sample stream. It owns one Biquad per (band, channel) pair in a flat
// array indexed by band*channels+channel; the filters are never shared
// or aliased. Not safe for concurrent use; the player engine goroutine
// is the only caller.
type Equalizer struct {
	filters    []Biquad
	gains      [NumBands]float64
	sampleRate float64
	channels   int
	enabled    bool
}

// NewEqualizer creates a flat-response equalizer for the given stream
// format. The equalizer starts disabled.
func NewEqualizer(sampleRate float64, channels int) *Equalizer {
	eq := &Equalizer{
		sampleRate: sampleRate,
		channels:   channels,
	}
	eq.rebuild()
	return eq
}

func (eq *Equalizer) rebuild() {
	eq.filters = make([]Biquad, NumBands*eq.channels)
	for i := range eq.filters {
		eq.filters[i] = NewBiquad()
	}
	for band := 0; band < NumBands; band++ {
		eq.configureBand(band)
	}
}

func (eq *Equalizer) configureBand(band int) {
	for ch := 0; ch < eq.channels; ch++ {
		eq.filters[band*eq.channels+ch].Configure(
			BandFrequencies[band], eq.gains[band], eq.sampleRate, bandQ)
	}
}

// Configure adapts the equalizer to a new stream format, keeping gains
// and the enabled flag. Filter state is discarded; called on track load.
func (eq *Equalizer) Configure(sampleRate float64, channels int) {
	eq.sampleRate = sampleRate
	eq.channels = channels
	eq.rebuild()
}

// SetSampleRate reconfigures all bands when the rate actually changes.
func (eq *Equalizer) SetSampleRate(sampleRate float64) {
	if diff := eq.sampleRate - sampleRate; diff > -0.1 && diff < 0.1 {
		return
	}
	eq.sampleRate = sampleRate
	for band := 0; band < NumBands; band++ {
		eq.configureBand(band)
	}
}

// SetEnabled toggles the equalizer. Disabling resets all filter state so
// a later re-enable starts clean.
func (eq *Equalizer) SetEnabled(enabled bool) {
	eq.enabled = enabled
	if !enabled {
		eq.ResetAll()
	}
}

// Enabled reports whether processing is active.
func (eq *Equalizer) Enabled() bool {
	return eq.enabled
}

// SetBandGain clamps gain to [MinGainDB, MaxGainDB] and reconfigures the
// per-channel filters for that band only. Returns false for an
// out-of-range band index, which is otherwise ignored.
func (eq *Equalizer) SetBandGain(band int, gainDB float64) bool {
	if band < 0 || band >= NumBands {
		return false
	}
	eq.gains[band] = clampGain(gainDB)
	eq.configureBand(band)
	return true
}

// BandGain returns the gain of one band, or 0 for an invalid index.
func (eq *Equalizer) BandGain(band int) float64 {
	if band < 0 || band >= NumBands {
		return 0
	}
	return eq.gains[band]
}

// Gains returns a copy of all band gains.
func (eq *Equalizer) Gains() [NumBands]float64 {
	return eq.gains
}

// SetAllGains sets every band at once, clamping each value.
func (eq *Equalizer) SetAllGains(gains [NumBands]float64) {
	for band, g := range gains {
		eq.gains[band] = clampGain(g)
		eq.configureBand(band)
	}
}

// ResetGains restores a flat response (all bands at 0 dB).
func (eq *Equalizer) ResetGains() {
	eq.SetAllGains([NumBands]float64{})
}

// Process runs interleaved samples through all bands in increasing
// frequency order. When disabled the buffer is left byte-for-byte
// untouched. Streams with more than two channels pass through
// unprocessed.
func (eq *Equalizer) Process(buf []float32) {
	if !eq.enabled || eq.channels > 2 || eq.channels < 1 {
		return
	}
	for i, s := range buf {
		ch := i % eq.channels
		for band := 0; band < NumBands; band++ {
			s = eq.filters[band*eq.channels+ch].ProcessSample(s)
		}
		buf[i] = s
	}
}

// ResetAll zeroes the delay registers of every filter. Must be called on
// seek and on stream restart.
func (eq *Equalizer) ResetAll() {
	for i := range eq.filters {
		eq.filters[i].Reset()
	}
}

func clampGain(g float64) float64 {
	if g < MinGainDB {
		return MinGainDB
	}
	if g > MaxGainDB {
		return MaxGainDB
	}
	return g
}
