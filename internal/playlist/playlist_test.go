package playlist

import (
	"testing"
)

func TestPlaylist_Empty(t *testing.T) {
	t.Parallel()

	p := New()
	if _, ok := p.Current(); ok {
		t.Error("Current() on empty playlist reported a track")
	}
	if _, ok := p.Next(); ok {
		t.Error("Next() on empty playlist reported a track")
	}
	if _, ok := p.Previous(); ok {
		t.Error("Previous() on empty playlist reported a track")
	}
	if got := p.Len(); got != 0 {
		t.Errorf("Len() = %d, want 0", got)
	}
}

func TestPlaylist_AddPositionsCursor(t *testing.T) {
	t.Parallel()

	p := New()
	p.Add("a.mp3", "b.flac")

	cur, ok := p.Current()
	if !ok || cur != "a.mp3" {
		t.Errorf("Current() = %q, %v; want a.mp3", cur, ok)
	}
	if got := p.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestPlaylist_NextPrevious(t *testing.T) {
	t.Parallel()

	p := New()
	p.Add("a", "b", "c")

	next, ok := p.Next()
	if !ok || next != "b" {
		t.Errorf("Next() = %q, %v; want b", next, ok)
	}
	next, ok = p.Next()
	if !ok || next != "c" {
		t.Errorf("Next() = %q, %v; want c", next, ok)
	}

	// At the end: stay put.
	if _, ok := p.Next(); ok {
		t.Error("Next() past the end reported a track")
	}
	if cur, _ := p.Current(); cur != "c" {
		t.Errorf("cursor moved past the end, Current() = %q", cur)
	}

	prev, ok := p.Previous()
	if !ok || prev != "b" {
		t.Errorf("Previous() = %q, %v; want b", prev, ok)
	}
	prev, ok = p.Previous()
	if !ok || prev != "a" {
		t.Errorf("Previous() = %q, %v; want a", prev, ok)
	}

	// At the start: stay put.
	if _, ok := p.Previous(); ok {
		t.Error("Previous() before the start reported a track")
	}
	if cur, _ := p.Current(); cur != "a" {
		t.Errorf("cursor moved before the start, Current() = %q", cur)
	}
}

func TestPlaylist_Jump(t *testing.T) {
	t.Parallel()

	p := New()
	p.Add("a", "b", "c")

	got, ok := p.Jump(2)
	if !ok || got != "c" {
		t.Errorf("Jump(2) = %q, %v; want c", got, ok)
	}
	if _, ok := p.Jump(3); ok {
		t.Error("Jump(3) out of range reported a track")
	}
	if _, ok := p.Jump(-1); ok {
		t.Error("Jump(-1) reported a track")
	}
	if cur, _ := p.Current(); cur != "c" {
		t.Errorf("failed Jump moved the cursor, Current() = %q", cur)
	}
}

func TestPlaylist_Clear(t *testing.T) {
	t.Parallel()

	p := New()
	p.Add("a", "b")
	p.Clear()

	if got := p.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}
	if _, ok := p.Current(); ok {
		t.Error("Current() after Clear reported a track")
	}

	// Re-adding restarts from the first track.
	p.Add("c")
	if cur, _ := p.Current(); cur != "c" {
		t.Errorf("Current() after re-add = %q, want c", cur)
	}
}

func TestPlaylist_TracksIsCopy(t *testing.T) {
	t.Parallel()

	p := New()
	p.Add("a", "b")

	got := p.Tracks()
	got[0] = "mutated"
	if cur, _ := p.Current(); cur != "a" {
		t.Errorf("mutating Tracks() result changed the playlist, Current() = %q", cur)
	}
}
