package decode

import (
	"io"
	"math"
	"testing"
)

// mockOggStream simulates oggvorbis.Reader over a ramp where every value
// of a frame equals the frame index scaled to [-1,1].
type mockOggStream struct {
	sampleRate int
	channels   int
	length     int64
	pos        int64
}

func (m *mockOggStream) SampleRate() int { return m.sampleRate }
func (m *mockOggStream) Channels() int   { return m.channels }
func (m *mockOggStream) Length() int64   { return m.length }
func (m *mockOggStream) Position() int64 { return m.pos }

func (m *mockOggStream) SetPosition(pos int64) error {
	m.pos = pos
	return nil
}

func (m *mockOggStream) Read(p []float32) (int, error) {
	if m.pos >= m.length {
		return 0, io.EOF
	}
	frames := int64(len(p) / m.channels)
	if frames > m.length-m.pos {
		frames = m.length - m.pos
	}
	for i := int64(0); i < frames; i++ {
		for ch := 0; ch < m.channels; ch++ {
			p[i*int64(m.channels)+int64(ch)] = float32(m.pos+i) / 32768.0
		}
	}
	m.pos += frames
	return int(frames) * m.channels, nil
}

func newMockVorbisSource(rate, channels int, frames int64) *vorbisSource {
	return &vorbisSource{
		dec:        &mockOggStream{sampleRate: rate, channels: channels, length: frames},
		sampleRate: rate,
		channels:   channels,
	}
}

func TestVorbis_ReadSamples(t *testing.T) {
	t.Parallel()

	src := newMockVorbisSource(8000, 2, 64)
	dst := make([]float32, 128)

	total := 0
	for total < len(dst) {
		n, err := src.ReadSamples(dst[total:])
		if err != nil {
			t.Fatalf("ReadSamples error = %v", err)
		}
		total += n
	}

	for frame := 0; frame < 64; frame++ {
		want := float32(frame) / 32768.0
		if dst[frame*2] != want {
			t.Fatalf("frame %d = %v, want %v", frame, dst[frame*2], want)
		}
	}

	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("read past end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestVorbis_ReadKeepsFramesWhole(t *testing.T) {
	t.Parallel()

	src := newMockVorbisSource(8000, 2, 64)
	dst := make([]float32, 5) // odd size; only 4 values fit whole frames
	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples error = %v", err)
	}
	if n%2 != 0 {
		t.Errorf("ReadSamples returned %d values, want a multiple of the channel count", n)
	}
}

func TestVorbis_Duration(t *testing.T) {
	t.Parallel()

	src := newMockVorbisSource(8000, 2, 4000)
	if d := src.Duration(); math.Abs(d-0.5) > 1e-9 {
		t.Errorf("Duration() = %v, want 0.5", d)
	}
}

func TestVorbis_SeekAccurate(t *testing.T) {
	t.Parallel()

	src := newMockVorbisSource(8000, 2, 8000)
	for _, target := range []float64{0, 0.3, 0.75} {
		actual, err := src.Seek(target, SeekAccurate)
		if err != nil {
			t.Fatalf("Seek(%v) error = %v", target, err)
		}
		if actual > target {
			t.Errorf("Seek(%v) = %v, want at or before target", target, actual)
		}
	}

	actual, err := src.Seek(99, SeekAccurate)
	if err != nil {
		t.Fatalf("Seek past end error = %v", err)
	}
	if math.Abs(actual-1.0) > 1e-9 {
		t.Errorf("Seek past end = %v, want clamp to 1.0", actual)
	}
}
