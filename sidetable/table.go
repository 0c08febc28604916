package sidetable

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-typecanon/types"
)

// Table is a slice of T indexed by canonical type index. Slots that were
// never set hold the zero value of T.
type Table[T any] struct {
	name  string
	slots []T
	mu    sync.RWMutex
}

// New creates an empty table. The name only appears in logs.
func New[T any](name string) *Table[T] {
	return &Table[T]{name: name}
}

// Prepare makes id addressable. The table grows by at least half its current
// length; it never shrinks.
func (t *Table[T]) Prepare(id types.CanonicalTypeIndex) {
	if !id.Valid() {
		panic("sidetable: Prepare with invalid index")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n := len(t.slots)
	if int(id) < n {
		return
	}
	newLen := max(n*3/2, int(id)+1)
	grown := make([]T, newLen)
	copy(grown, t.slots)
	t.slots = grown

	Logger().Debug("side table grown",
		zap.String("table", t.name),
		zap.Int("from", n),
		zap.Int("to", newLen),
	)
}

// Get returns the value at id and whether id is within the table.
func (t *Table[T]) Get(id types.CanonicalTypeIndex) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) >= len(t.slots) {
		var zero T
		return zero, false
	}
	return t.slots[id], true
}

// Set stores v at id. id must have been prepared.
func (t *Table[T]) Set(id types.CanonicalTypeIndex, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(id) >= len(t.slots) {
		panic(fmt.Sprintf("sidetable: %s: Set(%d) beyond length %d", t.name, id, len(t.slots)))
	}
	t.slots[id] = v
}

// Len returns the number of addressable slots.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.slots)
}

// Each calls fn for every slot in index order until fn returns false.
// fn must not call back into the table.
func (t *Table[T]) Each(fn func(id types.CanonicalTypeIndex, v T) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, v := range t.slots {
		if !fn(types.CanonicalTypeIndex(i), v) {
			return
		}
	}
}

// Clear drops every slot.
func (t *Table[T]) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slots = nil
}
