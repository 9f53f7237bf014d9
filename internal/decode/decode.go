// Package decode turns compressed audio files into interleaved float32
// PCM. Each supported codec family has its own Source adapter; files are
// matched by extension first and by content sniffing as a fallback.
package decode

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oneamp/oneamp/api"
	playerrors "github.com/oneamp/oneamp/pkg/errors"
)

// SeekMode selects the seek contract.
type SeekMode int

const (
	// SeekAccurate guarantees the returned position is at or before the
	// requested time, so the caller can trim forward to hit it exactly.
	SeekAccurate SeekMode = iota
	// SeekCoarse lands on the nearest decodable boundary, which may be
	// before or after the requested time.
	SeekCoarse
)

// Source produces successive blocks of interleaved float32 samples in
// [-1, 1] from one audio stream.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (1=mono, 2=stereo).
	Channels() int
	// Duration of the stream in seconds, 0 if unknown.
	Duration() float64
	// ReadSamples fills dst with interleaved samples. Returns the number
	// of float32 values written; n == 0 with io.EOF means end of stream.
	// Single bad packets are skipped internally and never surface unless
	// the stream stays undecodable for an extended span.
	ReadSamples(dst []float32) (n int, err error)
	// Seek repositions the stream and returns the actually achieved
	// position in seconds. Targets past end of stream return the
	// duration with a nil error; the next read hits io.EOF.
	Seek(seconds float64, mode SeekMode) (float64, error)
	// Close releases any resources.
	Close() error
}

// Opener constructs a Source from a positioned reader.
type Opener func(r io.ReadSeeker) (Source, error)

// Registry maps lowercase file extensions (without dot) to openers.
type Registry struct {
	mu      sync.Mutex
	openers map[string]Opener
}

func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

func (r *Registry) Register(ext string, o Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[strings.ToLower(ext)] = o
}

func (r *Registry) Lookup(ext string) (Opener, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.openers[strings.ToLower(ext)]
	return o, ok
}

// DefaultRegistry holds the built-in codec adapters.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register("mp3", openMP3)
	DefaultRegistry.Register("wav", openWAV)
	DefaultRegistry.Register("flac", openFLAC)
	DefaultRegistry.Register("ogg", openVorbis)
	DefaultRegistry.Register("oga", openVorbis)
}

// consecutive packet failures tolerated before a stream is declared dead.
const maxBadPackets = 64

// Open opens path with the default registry and returns the decoding
// source together with the track's metadata.
func Open(path string) (Source, api.TrackMetadata, error) {
	return OpenWith(DefaultRegistry, path)
}

// OpenWith opens path using the given registry.
func OpenWith(reg *Registry, path string) (Source, api.TrackMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, api.TrackMetadata{}, playerrors.NewPlayerError("open", path, err)
	}

	meta := readTags(f, path)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, api.TrackMetadata{}, playerrors.NewPlayerError("open", path, err)
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	opener, ok := reg.Lookup(ext)
	codec := ext
	if !ok {
		codec, opener, ok = sniff(reg, f)
		if !ok {
			f.Close()
			return nil, api.TrackMetadata{}, playerrors.NewPlayerError("open", path, playerrors.ErrUnsupportedFormat)
		}
	}

	src, err := opener(f)
	if err != nil {
		f.Close()
		return nil, api.TrackMetadata{}, playerrors.NewPlayerError("decode", path, err)
	}

	meta.Codec = codec
	meta.SampleRate = src.SampleRate()
	meta.Channels = src.Channels()
	meta.Duration = src.Duration()
	if meta.Duration > 0 {
		if fi, err := f.Stat(); err == nil {
			meta.Bitrate = int(float64(fi.Size()*8) / meta.Duration)
		}
	}

	return &fileSource{Source: src, f: f}, meta, nil
}

// fileSource ties the underlying file's lifetime to the source.
type fileSource struct {
	Source
	f *os.File
}

func (s *fileSource) Close() error {
	if err := s.Source.Close(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// sniff inspects the file header when the extension gave no match.
func sniff(reg *Registry, r io.ReadSeeker) (string, Opener, bool) {
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return "", nil, false
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", nil, false
	}

	var ext string
	switch {
	case string(hdr[0:4]) == "RIFF" && string(hdr[8:12]) == "WAVE":
		ext = "wav"
	case string(hdr[0:4]) == "fLaC":
		ext = "flac"
	case string(hdr[0:4]) == "OggS":
		ext = "ogg"
	case string(hdr[0:3]) == "ID3",
		hdr[0] == 0xFF && hdr[1]&0xE0 == 0xE0:
		ext = "mp3"
	default:
		return "", nil, false
	}

	o, ok := reg.Lookup(ext)
	return ext, o, ok
}
