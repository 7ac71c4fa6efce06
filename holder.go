package poly

import "sync/atomic"

// liveHolders counts holders that have been allocated and not yet
// released. Tests use it to verify exactly-once release.
var liveHolders atomic.Int64

// LiveHolders returns the number of currently held storage blocks
// across the whole process.
func LiveHolders() int64 {
	return liveHolders.Load()
}

// holder binds an erased address to the storage lifetime of an owned
// value. Exclusive owners keep the count at one; shared owners retain
// and release claims with an atomic count, so copying and releasing
// shared handles is safe across goroutines. The held value itself gets
// no such protection.
type holder struct {
	val  any // *T
	refs atomic.Int32
}

// newHolder wraps an erased pointer in fresh ownership.
func newHolder(p any) *holder {
	h := &holder{val: p}
	h.refs.Store(1)
	liveHolders.Add(1)
	return h
}

// retain adds a shared claim.
func (h *holder) retain() {
	h.refs.Add(1)
}

// release drops one claim; the last claim releases the storage.
func (h *holder) release() {
	if h.refs.Add(-1) == 0 {
		h.val = nil
		liveHolders.Add(-1)
	}
}
