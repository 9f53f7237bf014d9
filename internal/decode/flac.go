package decode

import (
	"fmt"
	"io"
	"log"

	"github.com/mewkiz/flac"

	playerrors "github.com/oneamp/oneamp/pkg/errors"
)

type flacSource struct {
	stream      *flac.Stream
	sampleRate  int
	channels    int
	totalFrames uint64
	scale       float32

	// Interleaved samples decoded but not yet handed out.
	pending []float32
	badRun  int
	packet  int
}

func openFLAC(r io.ReadSeeker) (Source, error) {
	stream, err := flac.NewSeek(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", playerrors.ErrCorruptStream, err)
	}
	info := stream.Info
	return &flacSource{
		stream:      stream,
		sampleRate:  int(info.SampleRate),
		channels:    int(info.NChannels),
		totalFrames: info.NSamples,
		scale:       float32(int64(1) << (info.BitsPerSample - 1)),
	}, nil
}

func (s *flacSource) SampleRate() int { return s.sampleRate }
func (s *flacSource) Channels() int   { return s.channels }
func (s *flacSource) Close() error    { return nil }

func (s *flacSource) Duration() float64 {
	return float64(s.totalFrames) / float64(s.sampleRate)
}

func (s *flacSource) ReadSamples(dst []float32) (int, error) {
	if len(s.pending) == 0 {
		if err := s.decodeFrame(); err != nil {
			return 0, err
		}
	}
	n := copy(dst, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

// decodeFrame parses the next FLAC frame into s.pending, skipping
// individually corrupt frames until too many fail in a row.
func (s *flacSource) decodeFrame() error {
	for {
		f, err := s.stream.ParseNext()
		s.packet++
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			s.badRun++
			if s.badRun >= maxBadPackets {
				return fmt.Errorf("%w: %d consecutive bad frames", playerrors.ErrCorruptStream, s.badRun)
			}
			log.Printf("flac: skipping bad frame: %v", &playerrors.DecodeError{Packet: s.packet, Err: err})
			continue
		}
		s.badRun = 0

		blockSize := len(f.Subframes[0].Samples)
		if cap(s.pending) < blockSize*s.channels {
			s.pending = make([]float32, 0, blockSize*s.channels)
		}
		s.pending = s.pending[:0]
		for i := 0; i < blockSize; i++ {
			for ch := 0; ch < s.channels; ch++ {
				s.pending = append(s.pending, float32(f.Subframes[ch].Samples[i])/s.scale)
			}
		}
		return nil
	}
}

// Seek lands on the start of the frame containing the target sample,
// which is always at or before it, satisfying accurate mode. Coarse mode
// shares the same behavior.
func (s *flacSource) Seek(seconds float64, _ SeekMode) (float64, error) {
	if seconds < 0 {
		seconds = 0
	}
	target := uint64(seconds * float64(s.sampleRate))
	if target > s.totalFrames {
		target = s.totalFrames
	}
	actual, err := s.stream.Seek(target)
	if err != nil {
		return 0, fmt.Errorf("flac seek: %w", err)
	}
	s.pending = s.pending[:0]
	s.badRun = 0
	return float64(actual) / float64(s.sampleRate), nil
}
