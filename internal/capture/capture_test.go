package capture

import (
	"sync"
	"testing"
)

func TestBuffer_SnapshotChronological(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Push([]float32{1, 2, 3, 4, 5, 6}, 1)

	got := b.Snapshot()
	want := []float32{3, 4, 5, 6}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Snapshot() = %v, want %v", got, want)
		}
	}
}

func TestBuffer_MonoMix(t *testing.T) {
	t.Parallel()

	b := New(4)
	// Two stereo frames: (0.5, 0.5) and (1, 0)
	b.Push([]float32{0.5, 0.5, 1, 0}, 2)

	got := b.Snapshot()
	if got[2] != 0.5 || got[3] != 0.5 {
		t.Errorf("Snapshot() tail = %v, want mono mix [0.5 0.5]", got[2:])
	}
}

func TestBuffer_Clear(t *testing.T) {
	t.Parallel()

	b := New(8)
	b.Push([]float32{1, 1, 1, 1}, 1)
	b.Clear()

	for i, v := range b.Snapshot() {
		if v != 0 {
			t.Fatalf("Snapshot()[%d] = %v after Clear, want 0", i, v)
		}
	}
}

func TestBuffer_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	b := New(4)
	b.Push([]float32{1, 2, 3, 4}, 1)

	snap := b.Snapshot()
	snap[0] = 99
	if b.Snapshot()[0] == 99 {
		t.Error("mutating a snapshot leaked into the ring")
	}
}

func TestBuffer_ConcurrentReadersAndWriter(t *testing.T) {
	t.Parallel()

	b := New(DefaultSize)
	stop := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		chunk := make([]float32, 256)
		for i := range chunk {
			chunk[i] = float32(i) / 256
		}
		for {
			select {
			case <-stop:
				return
			default:
				b.Push(chunk, 2)
			}
		}
	}()

	var readers sync.WaitGroup
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for j := 0; j < 200; j++ {
				snap := b.Snapshot()
				if len(snap) != DefaultSize {
					t.Errorf("Snapshot() length = %d, want %d", len(snap), DefaultSize)
					return
				}
			}
		}()
	}

	readers.Wait()
	close(stop)
	<-writerDone
}
