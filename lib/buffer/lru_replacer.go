package buffer

import (
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// LRUReplacer. evict frame yang paling lama jadi evictable (least recently unpinned).
// front list = frame yang paling baru di unpin, back list = victim berikutnya.
type LRUReplacer struct {
	mu       sync.Mutex
	capacity int
	lst      *simplelru.LRU[int, struct{}]
}

func NewLRUReplacer(capacity int) *LRUReplacer {
	lst, err := simplelru.NewLRU[int, struct{}](capacity, nil)
	if err != nil {
		panic(err)
	}
	return &LRUReplacer{
		capacity: capacity,
		lst:      lst,
	}
}

// Unpin. marks a frame as unpinned, making it eligible for eviction dari LRU.
// frame yang sudah ada di LRU tidak dipindah ke front.
func (lru *LRUReplacer) Unpin(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	if lru.lst.Contains(frameID) {
		// already in the list
		return
	}

	if lru.lst.Len() >= lru.capacity {
		// lru full -> jangan add, simplelru bakal buang frame paling lama diam-diam
		return
	}

	lru.lst.Add(frameID, struct{}{}) // most recently unpinned
}

// Pin marks a frame as pinned. buat frame jadi ineligible for eviction dari LRU
func (lru *LRUReplacer) Pin(frameID int) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	lru.lst.Remove(frameID)
}

// Victim. remove & return frame yang paling lama di LRU (back list).
func (lru *LRUReplacer) Victim() (int, bool) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	frameID, _, ok := lru.lst.RemoveOldest()
	return frameID, ok
}

// Size. return jumlah frame dalam LRU
func (lru *LRUReplacer) Size() int {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	return lru.lst.Len()
}

func (lru *LRUReplacer) Capacity() int {
	return lru.capacity
}
