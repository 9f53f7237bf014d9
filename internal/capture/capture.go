// Package capture holds a bounded window of recently played samples for
// the visualization consumer. Readers take snapshot copies; they never
// observe partial writes and never block the audio path beyond the copy.
package capture

import "sync"

// DefaultSize fits one FFT window of mono-mixed samples.
const DefaultSize = 2048

// Buffer is a fixed-size ring of the most recent mono-mixed samples,
// written by the audio goroutine and snapshot-read from anywhere.
type Buffer struct {
	mu   sync.Mutex
	buf  []float32
	pos  int
	size int
}

// New creates a ring holding size samples. A non-positive size falls
// back to DefaultSize.
func New(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer{
		buf:  make([]float32, size),
		size: size,
	}
}

// Push mixes interleaved samples down to mono and appends them to the
// ring. channels must match the interleave of buf.
func (b *Buffer) Push(samples []float32, channels int) {
	if channels < 1 {
		return
	}
	b.mu.Lock()
	for i := 0; i+channels <= len(samples); i += channels {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += samples[i+ch]
		}
		b.buf[b.pos] = sum / float32(channels)
		b.pos = (b.pos + 1) % b.size
	}
	b.mu.Unlock()
}

// Snapshot returns a copy of the window in chronological order, oldest
// sample first. Safe to call from any goroutine at any rate.
func (b *Buffer) Snapshot() []float32 {
	out := make([]float32, b.size)
	b.mu.Lock()
	n := copy(out, b.buf[b.pos:])
	copy(out[n:], b.buf[:b.pos])
	b.mu.Unlock()
	return out
}

// Clear zeroes the window; called on seek and stop so stale audio never
// reaches the visualizer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	for i := range b.buf {
		b.buf[i] = 0
	}
	b.pos = 0
	b.mu.Unlock()
}

// Size returns the window length in samples.
func (b *Buffer) Size() int {
	return b.size
}
