package slotlist

// Links between empty slots are stored as index+1 so that the zero value
// means "end of free list". This keeps the zero List ready to use.
type link int

const end link = 0

func linkTo(index int) link {
	return link(index + 1)
}

func (l link) index() int {
	return int(l) - 1
}

// slot is either occupied (holds value) or empty (next points to the
// following empty slot).
type slot[T any] struct {
	value    T
	next     link
	occupied bool
}

func occupiedSlot[T any](value T) slot[T] {
	return slot[T]{
		value:    value,
		occupied: true,
	}
}

func emptySlot[T any](next link) slot[T] {
	return slot[T]{
		next: next,
	}
}
