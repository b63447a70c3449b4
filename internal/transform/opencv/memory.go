package opencv

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultMemoryLimit caps the bytes held by live Mats of one transformer.
const DefaultMemoryLimit int64 = 1 << 30

// MemoryStats reports native allocations made on behalf of transforms.
type MemoryStats struct {
	TotalAllocated int64
	TotalReleased  int64
	ActiveMats     int64
	PeakMats       int64
	MaxAllowed     int64
}

// memoryTracker accounts for every Mat a transform creates so leaks and
// oversize inputs show up before the process runs out of native memory.
type memoryTracker struct {
	mu    sync.Mutex
	stats MemoryStats
}

func newMemoryTracker(limit int64) *memoryTracker {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &memoryTracker{stats: MemoryStats{MaxAllowed: limit}}
}

// reserve fails when a Mat of the given shape would exceed the limit.
func (t *memoryTracker) reserve(rows, cols, channels int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	want := int64(rows) * int64(cols) * int64(channels)
	inUse := t.stats.TotalAllocated - t.stats.TotalReleased
	if inUse+want > t.stats.MaxAllowed {
		return fmt.Errorf("memory limit exceeded: %d bytes in use, %d requested", inUse, want)
	}
	return nil
}

// track registers m and returns the function that closes it. Mats that are
// still empty when tracked are sized again on release.
func (t *memoryTracker) track(m *gocv.Mat) func() {
	size := matBytes(m)

	t.mu.Lock()
	t.stats.TotalAllocated += size
	t.stats.ActiveMats++
	if t.stats.ActiveMats > t.stats.PeakMats {
		t.stats.PeakMats = t.stats.ActiveMats
	}
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			final := matBytes(m)
			m.Close()

			t.mu.Lock()
			if final > size {
				t.stats.TotalAllocated += final - size
				size = final
			}
			t.stats.TotalReleased += size
			t.stats.ActiveMats--
			t.mu.Unlock()
		})
	}
}

func matBytes(m *gocv.Mat) int64 {
	if m.Empty() {
		return 0
	}
	return int64(m.Rows()) * int64(m.Cols()) * int64(m.Channels())
}

func (t *memoryTracker) snapshot() MemoryStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}
