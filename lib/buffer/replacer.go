package buffer

// Replacer. policy buat milih frame yang di evict dari buffer pool.
type Replacer interface {
	// Victim removes the frame chosen by the policy. ok is false if no frame is evictable.
	Victim() (frameID int, ok bool)

	// Pin makes the frame ineligible for eviction. no-op if it is not evictable.
	Pin(frameID int)

	// Unpin makes the frame eligible for eviction.
	Unpin(frameID int)

	// Size returns the number of evictable frames.
	Size() int

	// Capacity returns the max number of evictable frames the replacer can track.
	Capacity() int
}
