package slotlist

// Rows is a cursor over the occupied slots of a List, in ascending index
// order. The list can not be mutated while a Rows is open; it is closed by
// Close or when Next returns false.
type Rows[T any] struct {
	list   *List[T]
	index  int
	value  T
	closed bool
}

func (l *List[T]) Scan() *Rows[T] {
	l.iterating.Add(1)
	return &Rows[T]{
		list:  l,
		index: -1,
	}
}

// Next advances to the next occupied slot, skipping empty ones.
func (r *Rows[T]) Next() bool {
	if r.closed {
		return false
	}

	for {
		r.index++
		if r.index >= len(r.list.slots) {
			r.Close()
			return false
		}

		s := &r.list.slots[r.index]
		if s.occupied {
			r.value = s.value
			return true
		}
	}
}

// Read returns the index and value the cursor is standing on.
func (r *Rows[T]) Read() (int, T) {
	return r.index, r.value
}

func (r *Rows[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.list.iterating.Add(-1)

	var zero T
	r.value = zero
}
