package api

// Status describes the player engine's lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusPlaying
	StatusPaused
	StatusStopped
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusStopped:
		return "stopped"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

// TrackMetadata holds the immutable description of an opened track.
// Created once when a file is loaded and cloned into events afterwards.
type TrackMetadata struct {
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	Duration   float64 `json:"duration"` // seconds, 0 if unknown
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Codec      string  `json:"codec"`
	Bitrate    int     `json:"bitrate"` // bits per second, 0 if unknown
}

// PlaybackState is a snapshot of the engine's state, safe to hand to
// other goroutines. The engine owns the truth; consumers only ever see
// copies delivered through State() or events.
type PlaybackState struct {
	Status   Status
	Track    TrackMetadata
	Position float64 // seconds
	Volume   float64 // linear, [0,1]
}

// CommandType identifies an AudioCommand variant.
type CommandType int

const (
	CmdLoadFile CommandType = iota
	CmdPlay
	CmdPause
	CmdStop
	CmdSeek
	CmdNext
	CmdPrevious
	CmdSetVolume
	CmdSetEqualizerGain
	CmdSetEqualizerGains
	CmdSetEqualizerEnabled
	CmdResetEqualizer
)

// AudioCommand is sent from the UI side to the engine goroutine.
type AudioCommand struct {
	Type    CommandType
	Payload any
}

// EqualizerGain is the payload for CmdSetEqualizerGain.
type EqualizerGain struct {
	Band int
	DB   float64
}

// EventType identifies an AudioEvent variant.
type EventType int

const (
	EventTrackLoaded EventType = iota
	EventPositionChanged
	EventPlaybackStopped
	EventPlaybackFinished
	EventStateChanged
	EventEqualizerUpdated
	EventRequestNext
	EventRequestPrevious
	EventError
)

// AudioEvent is emitted by the engine goroutine toward the UI side.
// Payload types by event:
//
//	EventTrackLoaded       TrackMetadata
//	EventPositionChanged   float64 (seconds)
//	EventStateChanged      Status
//	EventEqualizerUpdated  EqualizerState
//	EventError             string
//
// The remaining events carry no payload.
type AudioEvent struct {
	Type    EventType
	Payload any
}

// EqualizerState is the payload for EventEqualizerUpdated.
type EqualizerState struct {
	Enabled bool
	Gains   [10]float64
}
