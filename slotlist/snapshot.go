package slotlist

import "fmt"

// SlotState is the exported form of a slot. Next is the following free index,
// or -1, and is only meaningful when the slot is empty.
type SlotState[T any] struct {
	Occupied bool `json:"occupied"`
	Value    T    `json:"value,omitzero"`
	Next     int  `json:"next"`
}

// Snapshot is the exact layout of a List, free list order included. A List
// restored from it hands out the same indices as the original would.
type Snapshot[T any] struct {
	Slots    []SlotState[T] `json:"slots"`
	FreeHead int            `json:"free_head"`
}

func (l *List[T]) Snapshot() Snapshot[T] {
	states := make([]SlotState[T], len(l.slots))
	for i, s := range l.slots {
		states[i] = SlotState[T]{
			Occupied: s.occupied,
			Value:    s.value,
			Next:     s.next.index(),
		}
		if s.occupied {
			states[i].Next = -1
		}
	}
	return Snapshot[T]{
		Slots:    states,
		FreeHead: l.free.index(),
	}
}

// Restore builds a List from a Snapshot. Snapshots that break the free list
// invariants are rejected with ErrCorrupted.
func Restore[T any](s Snapshot[T]) (*List[T], error) {

	l := &List[T]{
		slots: make([]slot[T], len(s.Slots)),
	}

	if s.FreeHead < -1 || s.FreeHead >= len(s.Slots) {
		return nil, fmt.Errorf("%w: free head %d out of range", ErrCorrupted, s.FreeHead)
	}
	l.free = linkTo(s.FreeHead)

	for i, state := range s.Slots {
		if state.Occupied {
			l.slots[i] = occupiedSlot(state.Value)
			l.count++
			continue
		}
		if state.Next < -1 || state.Next >= len(s.Slots) {
			return nil, fmt.Errorf("%w: slot %d links to %d, out of range", ErrCorrupted, i, state.Next)
		}
		l.slots[i] = emptySlot[T](linkTo(state.Next))
	}

	if err := l.Validate(); err != nil {
		return nil, err
	}

	return l, nil
}
