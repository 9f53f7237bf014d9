package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/wav"

	playerrors "github.com/oneamp/oneamp/pkg/errors"
)

// wavSource reads PCM straight off the seeker once go-audio/wav has
// parsed the header, which keeps seeking sample-exact.
type wavSource struct {
	r          io.ReadSeeker
	sampleRate int
	channels   int
	dataStart  int64 // byte offset of the PCM chunk
	dataLen    int64 // PCM chunk size in bytes
	pos        int64 // bytes consumed within the PCM chunk
	buf        []byte
}

func openWAV(r io.ReadSeeker) (Source, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if d.Err() != nil {
		return nil, fmt.Errorf("%w: %v", playerrors.ErrCorruptStream, d.Err())
	}
	if d.NumChans == 0 || d.SampleRate == 0 {
		return nil, fmt.Errorf("%w: missing format chunk", playerrors.ErrCorruptStream)
	}
	if d.BitDepth != 16 || d.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: only 16-bit PCM wav is supported", playerrors.ErrUnsupportedFormat)
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %v", playerrors.ErrCorruptStream, err)
	}

	start, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	return &wavSource{
		r:          r,
		sampleRate: int(d.SampleRate),
		channels:   int(d.NumChans),
		dataStart:  start,
		dataLen:    d.PCMLen(),
	}, nil
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) Duration() float64 {
	frames := s.dataLen / int64(2*s.channels)
	return float64(frames) / float64(s.sampleRate)
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	remaining := s.dataLen - s.pos
	if remaining <= 0 {
		return 0, io.EOF
	}

	want := int64(len(dst) * 2)
	if want > remaining {
		want = remaining
	}
	// Whole frames only
	frameBytes := int64(2 * s.channels)
	want -= want % frameBytes
	if want == 0 {
		return 0, io.EOF
	}

	if int64(cap(s.buf)) < want {
		s.buf = make([]byte, want)
	}
	s.buf = s.buf[:want]

	n, err := io.ReadFull(s.r, s.buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("wav read: %w", err)
	}
	s.pos += int64(n)

	samples := n / 2
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i : 2*i+2]))
		dst[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// Seek is sample-exact: the target maps directly to a byte offset in the
// PCM chunk, so both modes return exactly the requested position
// (clamped to the stream bounds).
func (s *wavSource) Seek(seconds float64, _ SeekMode) (float64, error) {
	if seconds < 0 {
		seconds = 0
	}
	frameBytes := int64(2 * s.channels)
	totalFrames := s.dataLen / frameBytes

	frame := int64(seconds * float64(s.sampleRate))
	if frame > totalFrames {
		frame = totalFrames
	}

	off := frame * frameBytes
	if _, err := s.r.Seek(s.dataStart+off, io.SeekStart); err != nil {
		return 0, fmt.Errorf("wav seek: %w", err)
	}
	s.pos = off
	return float64(frame) / float64(s.sampleRate), nil
}
