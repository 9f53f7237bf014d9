// Package playlist keeps the ordered queue of tracks the player walks
// through. It is plain bookkeeping; the engine drives actual playback
// and asks for neighbours via Next and Previous.
package playlist

import (
	"sync"
)

// Playlist is an ordered list of file paths with a cursor. Safe for
// concurrent use; the engine goroutine and the UI both touch it.
type Playlist struct {
	mu    sync.Mutex
	paths []string
	cur   int
}

// New creates an empty playlist.
func New() *Playlist {
	return &Playlist{cur: -1}
}

// Add appends tracks to the end of the queue. The first Add on an empty
// playlist positions the cursor at the first track.
func (p *Playlist) Add(paths ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, paths...)
	if p.cur < 0 && len(p.paths) > 0 {
		p.cur = 0
	}
}

// Current returns the track under the cursor.
func (p *Playlist) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur < 0 || p.cur >= len(p.paths) {
		return "", false
	}
	return p.paths[p.cur], true
}

// Next advances the cursor and returns the new current track. At the end
// of the queue it stays put and reports false.
func (p *Playlist) Next() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur+1 >= len(p.paths) {
		return "", false
	}
	p.cur++
	return p.paths[p.cur], true
}

// Previous moves the cursor back and returns the new current track. At
// the start of the queue it stays put and reports false.
func (p *Playlist) Previous() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur <= 0 || len(p.paths) == 0 {
		return "", false
	}
	p.cur--
	return p.paths[p.cur], true
}

// Jump moves the cursor to index i.
func (p *Playlist) Jump(i int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.paths) {
		return "", false
	}
	p.cur = i
	return p.paths[p.cur], true
}

// Len returns the number of queued tracks.
func (p *Playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paths)
}

// Tracks returns a copy of the queue.
func (p *Playlist) Tracks() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.paths))
	copy(out, p.paths)
	return out
}

// Clear empties the queue and resets the cursor.
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = nil
	p.cur = -1
}
