package decode

import (
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// oggStream is the subset of oggvorbis.Reader used here, split out so
// tests can substitute a mock.
type oggStream interface {
	SampleRate() int
	Channels() int
	Length() int64
	Position() int64
	SetPosition(int64) error
	Read([]float32) (int, error)
}

type vorbisSource struct {
	dec        oggStream
	sampleRate int
	channels   int
}

func openVorbis(r io.ReadSeeker) (Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}
	return &vorbisSource{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}

func (s *vorbisSource) SampleRate() int { return s.sampleRate }
func (s *vorbisSource) Channels() int   { return s.channels }
func (s *vorbisSource) Close() error    { return nil }

func (s *vorbisSource) Duration() float64 {
	n := s.dec.Length()
	if n <= 0 {
		return 0
	}
	return float64(n) / float64(s.sampleRate)
}

func (s *vorbisSource) ReadSamples(dst []float32) (int, error) {
	// Keep whole frames so channel routing stays aligned downstream.
	usable := len(dst) - len(dst)%s.channels
	if usable == 0 {
		return 0, nil
	}
	n, err := s.dec.Read(dst[:usable])
	if n == 0 {
		if err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}

// Seek positions on an exact sample, so accurate mode's at-or-before
// guarantee holds trivially.
func (s *vorbisSource) Seek(seconds float64, _ SeekMode) (float64, error) {
	if seconds < 0 {
		seconds = 0
	}
	pos := int64(seconds * float64(s.sampleRate))
	if total := s.dec.Length(); total > 0 && pos > total {
		pos = total
	}
	if err := s.dec.SetPosition(pos); err != nil {
		return 0, fmt.Errorf("vorbis seek: %w", err)
	}
	return float64(s.dec.Position()) / float64(s.sampleRate), nil
}
