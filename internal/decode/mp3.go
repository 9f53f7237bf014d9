package decode

import (
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
)

// mp3Stream is the subset of gomp3.Decoder used here, split out so tests
// can substitute a mock.
type mp3Stream interface {
	Read([]byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	SampleRate() int
	Length() int64
}

// go-mp3 always emits 16-bit little-endian stereo, 4 bytes per frame.
const mp3BytesPerFrame = 4

type mp3Source struct {
	dec        mp3Stream
	sampleRate int
	buf        []byte
}

func openMP3(r io.ReadSeeker) (Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	return &mp3Source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		buf:        make([]byte, 8192),
	}, nil
}

func (s *mp3Source) SampleRate() int { return s.sampleRate }
func (s *mp3Source) Channels() int   { return 2 }
func (s *mp3Source) Close() error    { return nil }

func (s *mp3Source) Duration() float64 {
	n := s.dec.Length()
	if n <= 0 {
		return 0
	}
	return float64(n/mp3BytesPerFrame) / float64(s.sampleRate)
}

func (s *mp3Source) ReadSamples(dst []float32) (int, error) {
	bytesNeeded := len(dst) * 2
	if cap(s.buf) < bytesNeeded {
		s.buf = make([]byte, bytesNeeded)
	}
	s.buf = s.buf[:bytesNeeded]

	n, err := s.dec.Read(s.buf)
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}

	// int16 little-endian to float32
	samples := n / 2
	for i := 0; i < samples; i++ {
		low := uint16(s.buf[2*i])
		high := uint16(s.buf[2*i+1])
		val := int16(low | (high << 8))
		dst[i] = float32(val) / 32768.0
	}

	if err == io.EOF {
		// Samples were produced; report EOF on the next call.
		err = nil
	}
	return samples, err
}

// Seek is sample-exact because go-mp3 addresses the decoded PCM stream
// by byte offset, so accurate and coarse mode behave identically.
func (s *mp3Source) Seek(seconds float64, _ SeekMode) (float64, error) {
	if seconds < 0 {
		seconds = 0
	}
	frame := int64(seconds * float64(s.sampleRate))
	if total := s.dec.Length() / mp3BytesPerFrame; total > 0 && frame > total {
		frame = total
	}
	off, err := s.dec.Seek(frame*mp3BytesPerFrame, io.SeekStart)
	if err != nil {
		return 0, fmt.Errorf("mp3 seek: %w", err)
	}
	return float64(off/mp3BytesPerFrame) / float64(s.sampleRate), nil
}
