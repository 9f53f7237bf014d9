package output

import (
	"encoding/binary"
	"fmt"
	"log"

	"github.com/hajimehoshi/oto"

	playerrors "github.com/oneamp/oneamp/pkg/errors"
)

// deviceChunk is how many samples the drain goroutine moves per pull.
const deviceChunk = 1024

// OtoSink drives the OS audio device through oto. A drain goroutine
// pulls from the embedded BufferedSink, converts to 16-bit PCM and
// pushes to the device; the heavy work (decode, filtering) stays on the
// engine goroutine ahead of time.
type OtoSink struct {
	*BufferedSink
	ctx    *oto.Context
	player *oto.Player
	done   chan struct{}
}

// NewOtoSink opens the default output device at the given format.
func NewOtoSink(sampleRate, channels int) (*OtoSink, error) {
	// One device-side buffer of ~100ms on top of our own queue.
	bufBytes := sampleRate * channels * 2 / 10
	ctx, err := oto.NewContext(sampleRate, channels, 2, bufBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", playerrors.ErrDeviceUnavailable, err)
	}

	s := &OtoSink{
		BufferedSink: NewBufferedSink(sampleRate, channels),
		ctx:          ctx,
		player:       ctx.NewPlayer(),
		done:         make(chan struct{}),
	}
	go s.drain()
	return s, nil
}

// drain runs until Close, feeding the device at its own pace. It does
// nothing but copy and convert pre-processed samples.
func (s *OtoSink) drain() {
	samples := make([]float32, deviceChunk)
	pcm := make([]byte, deviceChunk*2)

	for {
		select {
		case <-s.done:
			return
		default:
		}

		s.ReadInto(samples)
		for i, v := range samples {
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(v*32767)))
		}
		if _, err := s.player.Write(pcm); err != nil {
			log.Printf("output: device write: %v", err)
			return
		}
	}
}

func (s *OtoSink) Close() error {
	close(s.done)
	s.BufferedSink.Close()
	if err := s.player.Close(); err != nil {
		s.ctx.Close()
		return err
	}
	return s.ctx.Close()
}
