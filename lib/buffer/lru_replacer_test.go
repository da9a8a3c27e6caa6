package buffer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUReplacer(t *testing.T) {
	lruReplacer := NewLRUReplacer(7)

	t.Run("test lru replacer", func(t *testing.T) {
		lruReplacer.Unpin(1)
		lruReplacer.Unpin(2)
		lruReplacer.Unpin(3)
		lruReplacer.Unpin(4)
		lruReplacer.Unpin(5)
		lruReplacer.Unpin(6)
		lruReplacer.Unpin(1)
		assert.Equal(t, 6, lruReplacer.Size())

		evictedFrameID, ok := lruReplacer.Victim()
		assert.True(t, ok)
		assert.Equal(t, 1, evictedFrameID)
		evictedFrameID, _ = lruReplacer.Victim()
		assert.Equal(t, 2, evictedFrameID)
		evictedFrameID, _ = lruReplacer.Victim()
		assert.Equal(t, 3, evictedFrameID)

		lruReplacer.Pin(3) // sudah di evict -> no-op
		lruReplacer.Pin(4) // hapus 4 dari lru ( yang di evict selanjutnya adalah 5)
		assert.Equal(t, 2, lruReplacer.Size())

		lruReplacer.Unpin(4)
		evictedFrameID, _ = lruReplacer.Victim()
		assert.Equal(t, 5, evictedFrameID)
		evictedFrameID, _ = lruReplacer.Victim()
		assert.Equal(t, 6, evictedFrameID)
		evictedFrameID, _ = lruReplacer.Victim()
		assert.Equal(t, 4, evictedFrameID)

		_, ok = lruReplacer.Victim()
		assert.False(t, ok)
		assert.Equal(t, 0, lruReplacer.Size())
	})
}

func TestLRUReplacerUnpinDoesNotRefresh(t *testing.T) {
	lruReplacer := NewLRUReplacer(3)
	lruReplacer.Unpin(0)
	lruReplacer.Unpin(1)

	// unpin ulang tidak mindahin frame 0 ke front
	lruReplacer.Unpin(0)
	lruReplacer.Unpin(0)

	evictedFrameID, ok := lruReplacer.Victim()
	assert.True(t, ok)
	assert.Equal(t, 0, evictedFrameID)
}

func TestLRUReplacerFull(t *testing.T) {
	lruReplacer := NewLRUReplacer(2)
	lruReplacer.Unpin(0)
	lruReplacer.Unpin(1)
	lruReplacer.Unpin(2) // penuh -> diabaikan

	assert.Equal(t, 2, lruReplacer.Size())
	assert.Equal(t, 2, lruReplacer.Capacity())
	evictedFrameID, _ := lruReplacer.Victim()
	assert.Equal(t, 0, evictedFrameID)
	evictedFrameID, _ = lruReplacer.Victim()
	assert.Equal(t, 1, evictedFrameID)
}

func TestLRUReplacerConcurrent(t *testing.T) {
	const numFrames = 64
	lruReplacer := NewLRUReplacer(numFrames)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < numFrames; i += 4 {
				lruReplacer.Unpin(i)
				lruReplacer.Pin(i)
				lruReplacer.Unpin(i)
			}
		}(w)
	}
	wg.Wait()
	assert.Equal(t, numFrames, lruReplacer.Size())

	seen := make(map[int]bool)
	for {
		frameID, ok := lruReplacer.Victim()
		if !ok {
			break
		}
		seen[frameID] = true
	}
	assert.Len(t, seen, numFrames)
}

var _ Replacer = (*LRUReplacer)(nil)
