// Package output buffers processed PCM between the player engine and
// the audio device. The engine pushes whole frames with backpressure;
// the device side pulls at its own clock and gets silence instead of a
// crash when the buffer runs dry.
package output

import (
	"sync"

	playerrors "github.com/oneamp/oneamp/pkg/errors"
)

// Sink accepts processed PCM from the player engine.
type Sink interface {
	// Write pushes interleaved samples, blocking while the buffer is
	// full. Returns ErrSinkClosed after Close.
	Write(samples []float32) error
	// Buffered returns the number of samples currently queued.
	Buffered() int
	// NeedsData reports whether the buffer is below its low-water mark;
	// the engine throttles its decode loop on this.
	NeedsData() bool
	// Pause makes the device side read silence without consuming.
	Pause()
	// Resume continues consumption after Pause.
	Resume()
	// Stop drops all buffered audio immediately.
	Stop()
	// Underruns returns how often the device starved since the last Stop.
	Underruns() uint64
	// SampleRate of the queued PCM in Hz.
	SampleRate() int
	// Channels of the queued PCM.
	Channels() int
	Close() error
}

// BufferedSink is a bounded FIFO of float32 samples guarded by a cond
// var. Capacity defaults to half a second of audio with a quarter-second
// low-water mark, which bounds both memory and seek-to-resume latency.
type BufferedSink struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf      []float32
	r, w     int
	count    int
	lowWater int

	sampleRate int
	channels   int

	paused    bool
	closed    bool
	started   bool // a Write happened since the last Stop
	underruns uint64
}

// NewBufferedSink creates a sink for the given stream format.
func NewBufferedSink(sampleRate, channels int) *BufferedSink {
	capacity := sampleRate * channels / 2
	s := &BufferedSink{
		buf:        make([]float32, capacity),
		lowWater:   capacity / 2,
		sampleRate: sampleRate,
		channels:   channels,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *BufferedSink) SampleRate() int { return s.sampleRate }
func (s *BufferedSink) Channels() int   { return s.channels }

// Capacity returns the fixed buffer size in samples.
func (s *BufferedSink) Capacity() int {
	return len(s.buf)
}

func (s *BufferedSink) Write(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(samples) > 0 {
		if s.closed {
			return playerrors.ErrSinkClosed
		}
		free := len(s.buf) - s.count
		if free == 0 {
			s.cond.Wait()
			continue
		}
		n := len(samples)
		if n > free {
			n = free
		}
		for i := 0; i < n; i++ {
			s.buf[s.w] = samples[i]
			s.w = (s.w + 1) % len(s.buf)
		}
		s.count += n
		s.started = true
		samples = samples[n:]
		s.cond.Broadcast()
	}
	return nil
}

// ReadInto is the device-side pull. It copies up to len(dst) queued
// samples and zero-fills the remainder. While paused it yields pure
// silence without consuming. Starvation mid-playback is recorded in the
// underrun counter, never panicked on. Returns the number of real
// samples copied.
func (s *BufferedSink) ReadInto(dst []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.closed {
		zero(dst)
		return 0
	}

	n := len(dst)
	if n > s.count {
		n = s.count
	}
	for i := 0; i < n; i++ {
		dst[i] = s.buf[s.r]
		s.r = (s.r + 1) % len(s.buf)
	}
	s.count -= n

	if n < len(dst) {
		zero(dst[n:])
		if s.started && n == 0 {
			s.underruns++
		}
	}
	if n > 0 {
		s.cond.Broadcast()
	}
	return n
}

func (s *BufferedSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func (s *BufferedSink) NeedsData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count < s.lowWater
}

func (s *BufferedSink) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *BufferedSink) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// Stop flushes all buffered audio; used on user Stop, seek, and
// file-load-while-playing.
func (s *BufferedSink) Stop() {
	s.mu.Lock()
	s.r, s.w, s.count = 0, 0, 0
	s.started = false
	s.underruns = 0
	s.cond.Broadcast()
	s.mu.Unlock()
}

func (s *BufferedSink) Underruns() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.underruns
}

func (s *BufferedSink) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
	return nil
}

func zero(dst []float32) {
	for i := range dst {
		dst[i] = 0
	}
}
