// Package player runs the decode → equalize → output pipeline on a
// dedicated goroutine, driven by commands and reporting through events.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"github.com/oneamp/oneamp/api"
	"github.com/oneamp/oneamp/internal/capture"
	"github.com/oneamp/oneamp/internal/decode"
	"github.com/oneamp/oneamp/internal/dsp"
	"github.com/oneamp/oneamp/internal/output"
	playerrors "github.com/oneamp/oneamp/pkg/errors"
)

const (
	// How many samples one decode step asks for.
	frameSize = 4096
	// PositionChanged events are throttled to at most one per interval.
	positionInterval = 100 * time.Millisecond
	// Idle nap while the output buffer is above its low-water mark.
	throttleNap = time.Millisecond
)

// OpenFunc opens a path into a decoding source plus its metadata.
type OpenFunc func(path string) (decode.Source, api.TrackMetadata, error)

// SinkFactory builds an output sink for a stream format.
type SinkFactory func(sampleRate, channels int) (output.Sink, error)

// Engine owns all mutable playback state: the decoder source, the
// equalizer, the capture buffer and the output sink. Its goroutine is
// the only writer; other goroutines interact through commands, events
// and copied State snapshots.
type Engine struct {
	mu       sync.RWMutex
	status   api.Status
	track    api.TrackMetadata
	position float64
	volume   float64

	open    OpenFunc
	newSink SinkFactory

	eq      *dsp.Equalizer
	capture *capture.Buffer
	sink    output.Sink
	source  decode.Source

	commands chan api.AudioCommand
	events   chan api.AudioEvent
	done     chan struct{}

	frameBuf    []float32
	trimFrames  int
	lastPosEmit time.Time
}

// NewEngine creates an engine backed by the default decoder registry
// and the real audio device.
func NewEngine() *Engine {
	return NewEngineWithBackend(decode.Open, func(rate, channels int) (output.Sink, error) {
		return output.NewOtoSink(rate, channels)
	})
}

// NewEngineWithBackend creates an engine with injected open and sink
// construction, used by tests and by callers with custom devices.
func NewEngineWithBackend(open OpenFunc, newSink SinkFactory) *Engine {
	return &Engine{
		status:   api.StatusIdle,
		volume:   1.0,
		open:     open,
		newSink:  newSink,
		eq:       dsp.NewEqualizer(44100, 2),
		capture:  capture.New(capture.DefaultSize),
		commands: make(chan api.AudioCommand, 32),
		events:   make(chan api.AudioEvent, 128),
		done:     make(chan struct{}),
		frameBuf: make([]float32, frameSize),
	}
}

// Start begins the engine goroutine.
func (e *Engine) Start(ctx context.Context) {
	go e.run(ctx)
}

// Events returns the channel engine events are delivered on, in
// emission order.
func (e *Engine) Events() <-chan api.AudioEvent {
	return e.events
}

// Done is closed once the engine goroutine has shut down.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// State returns a copied snapshot of the playback state.
func (e *Engine) State() api.PlaybackState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return api.PlaybackState{
		Status:   e.status,
		Track:    e.track,
		Position: e.position,
		Volume:   e.volume,
	}
}

// CaptureSnapshot returns the most recent visualization window. Safe to
// call from any goroutine at any rate.
func (e *Engine) CaptureSnapshot() []float32 {
	return e.capture.Snapshot()
}

// Command API. Each call is fire-and-forget; effects are observed
// through events only.

func (e *Engine) LoadFile(path string) {
	e.commands <- api.AudioCommand{Type: api.CmdLoadFile, Payload: path}
}

func (e *Engine) Play() {
	e.commands <- api.AudioCommand{Type: api.CmdPlay}
}

func (e *Engine) Pause() {
	e.commands <- api.AudioCommand{Type: api.CmdPause}
}

func (e *Engine) Stop() {
	e.commands <- api.AudioCommand{Type: api.CmdStop}
}

func (e *Engine) Seek(seconds float64) {
	e.commands <- api.AudioCommand{Type: api.CmdSeek, Payload: seconds}
}

func (e *Engine) Next() {
	e.commands <- api.AudioCommand{Type: api.CmdNext}
}

func (e *Engine) Previous() {
	e.commands <- api.AudioCommand{Type: api.CmdPrevious}
}

// SetVolume sets the linear volume level (0.0 to 1.0).
func (e *Engine) SetVolume(level float64) error {
	if level < 0 || level > 1 {
		return playerrors.ErrInvalidVolume
	}
	e.commands <- api.AudioCommand{Type: api.CmdSetVolume, Payload: level}
	return nil
}

func (e *Engine) SetEqualizerGain(band int, db float64) {
	e.commands <- api.AudioCommand{Type: api.CmdSetEqualizerGain, Payload: api.EqualizerGain{Band: band, DB: db}}
}

func (e *Engine) SetAllEqualizerGains(gains [dsp.NumBands]float64) {
	e.commands <- api.AudioCommand{Type: api.CmdSetEqualizerGains, Payload: gains}
}

func (e *Engine) SetEqualizerEnabled(enabled bool) {
	e.commands <- api.AudioCommand{Type: api.CmdSetEqualizerEnabled, Payload: enabled}
}

func (e *Engine) ResetEqualizer() {
	e.commands <- api.AudioCommand{Type: api.CmdResetEqualizer}
}

// run is the engine goroutine: drain commands, then advance playback by
// one frame at most before checking commands again, so control latency
// stays bounded by a single decode step.
func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	defer e.cleanup()

	for {
		if e.currentStatus() != api.StatusPlaying {
			select {
			case <-ctx.Done():
				return
			case cmd := <-e.commands:
				e.handleCommand(cmd)
			}
			continue
		}

		for drained := false; !drained; {
			select {
			case <-ctx.Done():
				return
			case cmd := <-e.commands:
				e.handleCommand(cmd)
			default:
				drained = true
			}
		}

		if e.currentStatus() == api.StatusPlaying {
			e.step()
		}
	}
}

func (e *Engine) currentStatus() api.Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func (e *Engine) setStatus(s api.Status) {
	e.mu.Lock()
	changed := e.status != s
	e.status = s
	e.mu.Unlock()
	if changed {
		e.emit(api.AudioEvent{Type: api.EventStateChanged, Payload: s})
	}
}

// emit delivers an event without ever blocking the audio goroutine; a
// consumer that stops draining loses events rather than stalling audio.
func (e *Engine) emit(ev api.AudioEvent) {
	select {
	case e.events <- ev:
	default:
	}
}

func (e *Engine) handleCommand(cmd api.AudioCommand) {
	switch cmd.Type {
	case api.CmdLoadFile:
		path, _ := cmd.Payload.(string)
		e.loadFile(path)

	case api.CmdPlay:
		e.play()

	case api.CmdPause:
		if e.currentStatus() == api.StatusPlaying {
			e.sink.Pause()
			e.setStatus(api.StatusPaused)
		}

	case api.CmdStop:
		switch e.currentStatus() {
		case api.StatusPlaying, api.StatusPaused, api.StatusFinished:
			e.stopPlayback()
			e.emit(api.AudioEvent{Type: api.EventPlaybackStopped})
		}

	case api.CmdSeek:
		seconds, _ := cmd.Payload.(float64)
		e.seek(seconds)

	case api.CmdNext:
		e.skipTrack(api.EventRequestNext)

	case api.CmdPrevious:
		e.skipTrack(api.EventRequestPrevious)

	case api.CmdSetVolume:
		level, _ := cmd.Payload.(float64)
		e.mu.Lock()
		e.volume = math.Min(math.Max(level, 0), 1)
		e.mu.Unlock()

	case api.CmdSetEqualizerGain:
		g, ok := cmd.Payload.(api.EqualizerGain)
		if ok {
			e.eq.SetBandGain(g.Band, g.DB)
			e.emitEqualizerState()
		}

	case api.CmdSetEqualizerGains:
		gains, ok := cmd.Payload.([dsp.NumBands]float64)
		if ok {
			e.eq.SetAllGains(gains)
			e.emitEqualizerState()
		}

	case api.CmdSetEqualizerEnabled:
		enabled, _ := cmd.Payload.(bool)
		e.eq.SetEnabled(enabled)
		e.emitEqualizerState()

	case api.CmdResetEqualizer:
		e.eq.ResetGains()
		e.emitEqualizerState()
	}
}

func (e *Engine) emitEqualizerState() {
	e.emit(api.AudioEvent{Type: api.EventEqualizerUpdated, Payload: api.EqualizerState{
		Enabled: e.eq.Enabled(),
		Gains:   e.eq.Gains(),
	}})
}

// loadFile opens a new track. Always legal; a failed load leaves the
// engine Idle and ready for the next attempt.
func (e *Engine) loadFile(path string) {
	e.setStatus(api.StatusLoading)
	e.closeTrack()

	src, meta, err := e.open(path)
	if err != nil {
		e.fail("load", err)
		return
	}

	sink, err := e.ensureSink(src.SampleRate(), src.Channels())
	if err != nil {
		src.Close()
		e.fail("open device", err)
		return
	}

	e.mu.Lock()
	e.source = src
	e.sink = sink
	e.track = meta
	e.position = 0
	e.mu.Unlock()

	e.eq.Configure(float64(src.SampleRate()), src.Channels())
	e.capture.Clear()
	e.trimFrames = 0

	e.setStatus(api.StatusReady)
	e.emit(api.AudioEvent{Type: api.EventTrackLoaded, Payload: meta})
}

// ensureSink reuses the current sink when the format matches, otherwise
// replaces it.
func (e *Engine) ensureSink(rate, channels int) (output.Sink, error) {
	if e.sink != nil {
		if e.sink.SampleRate() == rate && e.sink.Channels() == channels {
			e.sink.Stop()
			e.sink.Resume()
			return e.sink, nil
		}
		e.sink.Close()
		e.sink = nil
	}
	return e.newSink(rate, channels)
}

func (e *Engine) play() {
	switch e.currentStatus() {
	case api.StatusReady, api.StatusPaused:
		// Warm start or resume.
	case api.StatusStopped, api.StatusFinished:
		// Restart from the top; auto-advance is a plain restart.
		if e.source == nil {
			return
		}
		if _, err := e.source.Seek(0, decode.SeekAccurate); err != nil {
			e.fail("restart", err)
			return
		}
		e.afterSeek(0)
	default:
		return
	}
	e.sink.Resume()
	e.setStatus(api.StatusPlaying)
}

// stopPlayback flushes the sink and rewinds, keeping track metadata so a
// later Play restarts the same file.
func (e *Engine) stopPlayback() {
	if e.sink != nil {
		e.sink.Stop()
	}
	if e.source != nil {
		if _, err := e.source.Seek(0, decode.SeekAccurate); err != nil {
			log.Printf("player: rewind on stop: %v", err)
		}
	}
	e.afterSeek(0)
	e.setStatus(api.StatusStopped)
}

func (e *Engine) skipTrack(request api.EventType) {
	switch e.currentStatus() {
	case api.StatusIdle, api.StatusLoading:
		return
	}
	e.stopPlayback()
	e.emit(api.AudioEvent{Type: request})
}

// seek repositions the stream. By the time the resulting
// PositionChanged is observed, no pre-seek audio can reach the device
// anymore.
func (e *Engine) seek(seconds float64) {
	switch e.currentStatus() {
	case api.StatusPlaying, api.StatusPaused, api.StatusReady:
	default:
		return
	}
	if e.source == nil {
		return
	}

	if seconds < 0 {
		seconds = 0
	}
	duration := e.track.Duration
	if duration > 0 && seconds >= duration {
		// Seeking past the end is not an error: the track is done.
		// Flush so the finish is immediate.
		e.sink.Stop()
		e.finishTrack()
		return
	}

	actual, err := e.source.Seek(seconds, decode.SeekAccurate)
	if err != nil {
		// Informational only; playback continues at the old position.
		e.emit(api.AudioEvent{Type: api.EventError, Payload: fmt.Sprintf("seek: %v", err)})
		return
	}

	e.sink.Stop()
	if e.currentStatus() != api.StatusPaused {
		e.sink.Resume()
	}

	target := seconds
	e.trimFrames = int(math.Round((target - actual) * float64(e.track.SampleRate)))
	if e.trimFrames < 0 {
		e.trimFrames = 0
	}
	e.afterSeek(target)
	e.emit(api.AudioEvent{Type: api.EventPositionChanged, Payload: target})
}

// afterSeek resets everything that assumes a continuous input stream.
func (e *Engine) afterSeek(position float64) {
	e.eq.ResetAll()
	e.capture.Clear()
	e.mu.Lock()
	e.position = position
	e.mu.Unlock()
	e.lastPosEmit = time.Time{}
}

// step advances playback by at most one decoded frame.
func (e *Engine) step() {
	if !e.sink.NeedsData() {
		time.Sleep(throttleNap)
		e.maybeEmitPosition()
		return
	}

	n, err := e.source.ReadSamples(e.frameBuf)
	if n > 0 {
		e.deliver(e.frameBuf[:n])
	}
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		e.finishTrack()
		return
	default:
		e.fail("decode", err)
		return
	}

	e.maybeEmitPosition()
}

// deliver trims post-seek residue, applies the equalizer and volume and
// hands the frame to the sink and capture buffer.
func (e *Engine) deliver(buf []float32) {
	channels := e.track.Channels
	if channels < 1 {
		channels = 1
	}

	if e.trimFrames > 0 {
		drop := e.trimFrames * channels
		if drop >= len(buf) {
			e.trimFrames -= len(buf) / channels
			return
		}
		e.trimFrames = 0
		buf = buf[drop:]
	}

	e.eq.Process(buf)

	e.mu.RLock()
	vol := e.volume
	e.mu.RUnlock()
	if vol != 1.0 {
		gain := float32(vol)
		for i := range buf {
			buf[i] *= gain
		}
	}

	if err := e.sink.Write(buf); err != nil {
		e.fail("output", err)
		return
	}
	e.capture.Push(buf, channels)

	e.mu.Lock()
	e.position += float64(len(buf)/channels) / float64(e.track.SampleRate)
	e.mu.Unlock()
}

func (e *Engine) maybeEmitPosition() {
	if time.Since(e.lastPosEmit) < positionInterval {
		return
	}
	e.lastPosEmit = time.Now()
	e.mu.RLock()
	pos := e.position
	e.mu.RUnlock()
	e.emit(api.AudioEvent{Type: api.EventPositionChanged, Payload: pos})
}

// finishTrack handles natural end of stream, distinct from user Stop so
// the playlist collaborator can auto-advance. The finish is announced
// only after the sink has played out its queue; an auto-advance consumer
// reacts to PlaybackFinished with a LoadFile that flushes the sink, and
// an early announcement would cut the tail of the track unheard.
func (e *Engine) finishTrack() {
	e.mu.Lock()
	if e.track.Duration > 0 {
		e.position = e.track.Duration
	}
	e.mu.Unlock()
	if !e.waitSinkDrained() {
		return
	}
	e.setStatus(api.StatusFinished)
	e.emit(api.AudioEvent{Type: api.EventPlaybackFinished})
}

// waitSinkDrained blocks until buffered audio has reached the device,
// still servicing commands. Reports false when a command redirected
// playback so the pending finish no longer applies. The wait is bounded
// by the queue's play-out time so a stalled device cannot wedge the
// engine.
func (e *Engine) waitSinkDrained() bool {
	if e.sink == nil {
		return true
	}
	status := e.currentStatus()
	position := e.State().Position

	playout := float64(e.sink.Buffered()) / float64(e.sink.SampleRate()*e.sink.Channels())
	deadline := time.Now().Add(time.Duration(playout*float64(time.Second)) + 250*time.Millisecond)

	for e.sink.Buffered() > 0 && time.Now().Before(deadline) {
		select {
		case cmd := <-e.commands:
			e.handleCommand(cmd)
			if e.currentStatus() != status || e.State().Position != position {
				return false
			}
		case <-time.After(throttleNap):
		}
	}
	return true
}

// fail reports an unrecoverable error and resets to Idle, ready for a
// fresh LoadFile. The engine never wedges half-initialized.
func (e *Engine) fail(op string, err error) {
	log.Printf("player: %s: %v", op, err)
	e.emit(api.AudioEvent{Type: api.EventError, Payload: fmt.Sprintf("%s: %v", op, err)})
	e.closeTrack()
	if e.sink != nil {
		e.sink.Stop()
	}
	e.mu.Lock()
	e.track = api.TrackMetadata{}
	e.position = 0
	e.mu.Unlock()
	e.setStatus(api.StatusIdle)
}

func (e *Engine) closeTrack() {
	e.mu.Lock()
	src := e.source
	e.source = nil
	e.mu.Unlock()
	if src != nil {
		src.Close()
	}
}

func (e *Engine) cleanup() {
	e.closeTrack()
	if e.sink != nil {
		e.sink.Close()
		e.sink = nil
	}
	close(e.events)
}
