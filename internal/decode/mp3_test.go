package decode

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

// mockMP3Stream simulates gomp3.Decoder over a fixed PCM ramp where each
// frame's left and right sample equal the frame index.
type mockMP3Stream struct {
	sampleRate int
	frames     int64
	offset     int64 // byte offset into the decoded stream
}

func (m *mockMP3Stream) SampleRate() int { return m.sampleRate }
func (m *mockMP3Stream) Length() int64   { return m.frames * mp3BytesPerFrame }

func (m *mockMP3Stream) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		panic("mock supports SeekStart only")
	}
	m.offset = offset
	return offset, nil
}

func (m *mockMP3Stream) Read(buf []byte) (int, error) {
	total := m.frames * mp3BytesPerFrame
	if m.offset >= total {
		return 0, io.EOF
	}
	n := int64(len(buf))
	if n > total-m.offset {
		n = total - m.offset
	}
	n -= n % mp3BytesPerFrame

	for i := int64(0); i < n; i += 2 {
		frame := (m.offset + i) / mp3BytesPerFrame
		binary.LittleEndian.PutUint16(buf[i:i+2], uint16(int16(frame)))
	}
	m.offset += n
	return int(n), nil
}

func newMockMP3Source(rate int, frames int64) *mp3Source {
	return &mp3Source{
		dec:        &mockMP3Stream{sampleRate: rate, frames: frames},
		sampleRate: rate,
		buf:        make([]byte, 512),
	}
}

func TestMP3_ReadSamples(t *testing.T) {
	t.Parallel()

	src := newMockMP3Source(8000, 50)
	dst := make([]float32, 200)

	total := 0
	for total < len(dst) {
		n, err := src.ReadSamples(dst[total:])
		if err != nil {
			t.Fatalf("ReadSamples error = %v", err)
		}
		total += n
	}

	for frame := 0; frame < 50; frame++ {
		want := float32(frame) / 32768.0
		if dst[frame*2] != want || dst[frame*2+1] != want {
			t.Fatalf("frame %d = (%v,%v), want %v", frame, dst[frame*2], dst[frame*2+1], want)
		}
	}

	if n, err := src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("read past end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestMP3_Duration(t *testing.T) {
	t.Parallel()

	src := newMockMP3Source(8000, 16000)
	if d := src.Duration(); math.Abs(d-2.0) > 1e-9 {
		t.Errorf("Duration() = %v, want 2.0", d)
	}
}

func TestMP3_SeekAccurate(t *testing.T) {
	t.Parallel()

	src := newMockMP3Source(8000, 8000)

	for _, target := range []float64{0, 0.25, 0.5, 0.99} {
		actual, err := src.Seek(target, SeekAccurate)
		if err != nil {
			t.Fatalf("Seek(%v) error = %v", target, err)
		}
		if actual > target {
			t.Errorf("Seek(%v) = %v, want at or before target", target, actual)
		}

		dst := make([]float32, 2)
		if _, err := src.ReadSamples(dst); err != nil {
			t.Fatalf("read after seek: %v", err)
		}
		wantFrame := int(math.Round(actual * 8000))
		if got := int(math.Round(float64(dst[0]) * 32768)); got != wantFrame {
			t.Errorf("after Seek(%v): frame %d, want %d", target, got, wantFrame)
		}
	}
}

func TestMP3_SeekClampsPastEnd(t *testing.T) {
	t.Parallel()

	src := newMockMP3Source(8000, 800) // 0.1s
	actual, err := src.Seek(10, SeekAccurate)
	if err != nil {
		t.Fatalf("Seek error = %v", err)
	}
	if math.Abs(actual-0.1) > 1e-9 {
		t.Errorf("Seek past end = %v, want 0.1", actual)
	}
	if n, err := src.ReadSamples(make([]float32, 8)); n != 0 || err != io.EOF {
		t.Errorf("read after past-end seek = (%d, %v), want (0, io.EOF)", n, err)
	}
}
