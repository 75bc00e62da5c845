package corpus

import (
	"sync/atomic"
)

// Holder publishes the current index. Readers always see a complete index;
// a rebuild swaps in a new one and never mutates the old.
type Holder struct {
	current    atomic.Pointer[Index]
	generation atomic.Uint64
}

// NewHolder creates an empty holder
func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the current index, or nil before the first build
func (h *Holder) Load() *Index {
	return h.current.Load()
}

// Swap publishes idx and returns the index it replaced
func (h *Holder) Swap(idx *Index) *Index {
	old := h.current.Swap(idx)
	h.generation.Add(1)
	return old
}

// Generation counts swaps since creation
func (h *Holder) Generation() uint64 {
	return h.generation.Load()
}
