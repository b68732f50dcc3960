package dashboard

import "encoding/json"

// Ring is a fixed-capacity, newest-first list. Push never mutates the
// receiver's backing array, so a Ring held in an old State stays intact.
type Ring[T any] struct {
	items []T
	limit int
}

func NewRing[T any](capacity int) Ring[T] {
	return Ring[T]{limit: capacity}
}

// Push returns a new Ring with v at the front. When full, the oldest entry
// falls off the end.
func (r Ring[T]) Push(v T) Ring[T] {
	if r.limit <= 0 {
		return r
	}
	n := len(r.items) + 1
	if n > r.limit {
		n = r.limit
	}
	items := make([]T, n)
	items[0] = v
	copy(items[1:], r.items)
	return Ring[T]{items: items, limit: r.limit}
}

// Items returns the entries newest first. The slice must not be modified.
func (r Ring[T]) Items() []T {
	return r.items
}

func (r Ring[T]) Len() int {
	return len(r.items)
}

func (r Ring[T]) Cap() int {
	return r.limit
}

// MarshalJSON encodes the entries as a plain array, newest first.
func (r Ring[T]) MarshalJSON() ([]byte, error) {
	if r.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.items)
}
