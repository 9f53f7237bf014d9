package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrCorruptStream     = errors.New("corrupt audio stream")
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrSinkClosed        = errors.New("output sink is closed")
	ErrNoTrack           = errors.New("no track loaded")
	ErrInvalidVolume     = errors.New("volume must be between 0.0 and 1.0")
	ErrInvalidBand       = errors.New("equalizer band index out of range")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op   string // Operation that failed
	Path string // File path if applicable
	Err  error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s failed for %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, path string, err error) *PlayerError {
	return &PlayerError{Op: op, Path: path, Err: err}
}

// DecodeError represents a recoverable error on a single compressed packet.
// The decoder adapters skip these and keep going; they only surface when
// too many occur back to back.
type DecodeError struct {
	Packet int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at packet %d: %v", e.Packet, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
