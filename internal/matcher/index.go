package matcher

// Index maps ordered, unique candidate keys to payloads.
//
// Keys keep the position of their first occurrence; a later duplicate replaces the
// payload. Iteration order, and therefore tie-breaking, follows insertion order.
type Index[T any] struct {
	keys     []string
	payloads map[string]T
}

// NewIndex builds an index from items using keyFn.
func NewIndex[T any](items []T, keyFn func(T) string) *Index[T] {
	idx := &Index[T]{payloads: make(map[string]T, len(items))}
	for _, item := range items {
		idx.Add(keyFn(item), item)
	}
	return idx
}

// Add inserts or replaces the payload for key.
func (idx *Index[T]) Add(key string, payload T) {
	if _, exists := idx.payloads[key]; !exists {
		idx.keys = append(idx.keys, key)
	}
	idx.payloads[key] = payload
}

// Len returns the number of unique keys.
func (idx *Index[T]) Len() int {
	return len(idx.keys)
}

// Lookup finds the best match for source and returns its payload.
func (idx *Index[T]) Lookup(source string, threshold float64) (T, Match, bool) {
	var zero T
	m, ok := Best(source, idx.keys, threshold)
	if !ok {
		return zero, Match{}, false
	}
	return idx.payloads[m.Key], m, true
}
