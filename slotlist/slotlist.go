package slotlist

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"
)

var ErrMutationDuringIteration = errors.New("slotlist: list mutated during iteration")
var ErrCorrupted = errors.New("slotlist: corrupted")

// List is a vector of slots that reuses the index of removed values before
// growing. The zero List is empty and ready to use.
//
// It is not thread-safe.
type List[T any] struct {
	slots     []slot[T]
	free      link         // head of the free list
	count     int          // occupied slots
	iterating atomic.Int32 // traversals in progress, shared by readers
}

func New[T any]() *List[T] {
	return &List[T]{}
}

// WithCapacity preallocates room for capacity slots. No slot is created.
func WithCapacity[T any](capacity int) *List[T] {
	return &List[T]{
		slots: make([]slot[T], 0, capacity),
	}
}

// Insert stores value and returns its index. The most recently freed index is
// reused first; storage grows by one slot only when nothing is free.
func (l *List[T]) Insert(value T) int {
	l.mustBeMutable()

	l.count++

	if l.free != end {
		index := l.free.index()
		l.free = l.slots[index].next
		l.slots[index] = occupiedSlot(value)
		return index
	}

	l.slots = append(l.slots, occupiedSlot(value))
	return len(l.slots) - 1
}

// Next returns the index the next Insert will use: the head of the free
// list, or Slots() when it is empty.
func (l *List[T]) Next() int {
	if l.free != end {
		return l.free.index()
	}
	return len(l.slots)
}

// Get returns the value at index. ok is false when index is out of range or
// its slot is empty.
func (l *List[T]) Get(index int) (value T, ok bool) {
	if !l.Contains(index) {
		return value, false
	}
	return l.slots[index].value, true
}

// GetMut returns a pointer to the value at index. The pointer must not be
// retained across a call to Insert: growing the storage moves it.
func (l *List[T]) GetMut(index int) (*T, bool) {
	if !l.Contains(index) {
		return nil, false
	}
	return &l.slots[index].value, true
}

// Contains reports whether index holds a value.
func (l *List[T]) Contains(index int) bool {
	return index >= 0 && index < len(l.slots) && l.slots[index].occupied
}

// Remove takes the value out of index and frees the slot. Removing an empty or
// out of range index does nothing and returns ok == false.
func (l *List[T]) Remove(index int) (value T, ok bool) {
	l.mustBeMutable()

	if !l.Contains(index) {
		return value, false
	}

	value = l.slots[index].value
	l.slots[index] = emptySlot[T](l.free)
	l.free = linkTo(index)
	l.count--

	return value, true
}

// Replace sets the value at index and returns the previous one. When the slot
// was empty it is taken out of the free list and replaced is false. Replace
// panics if index is out of range.
func (l *List[T]) Replace(index int, value T) (previous T, replaced bool) {
	l.mustBeMutable()

	if index < 0 || index >= len(l.slots) {
		panic(fmt.Sprintf("slotlist: replace index %d out of range [0:%d]", index, len(l.slots)))
	}

	s := &l.slots[index]
	if s.occupied {
		previous = s.value
		s.value = value
		return previous, true
	}

	l.unlink(index)
	l.slots[index] = occupiedSlot(value)
	l.count++

	return previous, false
}

// unlink takes the empty slot at index out of the free list. Worst case it
// walks the whole list.
func (l *List[T]) unlink(index int) {
	target := linkTo(index)
	next := l.slots[index].next

	if l.free == target {
		l.free = next
		return
	}

	for cur := l.free; cur != end; {
		s := &l.slots[cur.index()]
		if s.next == target {
			s.next = next
			return
		}
		cur = s.next
	}
}

// Len returns the number of values stored.
func (l *List[T]) Len() int {
	return l.count
}

func (l *List[T]) IsEmpty() bool {
	return l.count == 0
}

// Slots returns the storage length, empty slots included. It never decreases.
func (l *List[T]) Slots() int {
	return len(l.slots)
}

// Cap returns the capacity of the backing storage.
func (l *List[T]) Cap() int {
	return cap(l.slots)
}

// All iterates over occupied slots in ascending index order. The list must
// not be mutated until the loop ends.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		l.iterating.Add(1)
		defer l.iterating.Add(-1)

		for i := range l.slots {
			if !l.slots[i].occupied {
				continue
			}
			if !yield(i, l.slots[i].value) {
				return
			}
		}
	}
}

// Values is like All without indices.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range l.All() {
			if !yield(value) {
				return
			}
		}
	}
}

// FreeList returns the free indices in the order Insert will reuse them.
func (l *List[T]) FreeList() []int {
	free := []int{}
	for cur := l.free; cur != end; cur = l.slots[cur.index()].next {
		free = append(free, cur.index())
	}
	return free
}

// Clone returns a shallow copy: values are copied, not deep-cloned.
func (l *List[T]) Clone() *List[T] {
	slots := make([]slot[T], len(l.slots), cap(l.slots))
	copy(slots, l.slots)
	return &List[T]{
		slots: slots,
		free:  l.free,
		count: l.count,
	}
}

// String renders the slots, `_` standing for an empty one: [0:a 1:_ 2:c]
func (l *List[T]) String() string {
	b := &strings.Builder{}
	b.WriteString("[")
	for i, s := range l.slots {
		if i > 0 {
			b.WriteString(" ")
		}
		if s.occupied {
			fmt.Fprintf(b, "%d:%v", i, s.value)
		} else {
			fmt.Fprintf(b, "%d:_", i)
		}
	}
	b.WriteString("]")
	return b.String()
}

// Validate checks the structural invariants: the occupied count matches, and
// the free list visits every empty slot exactly once without cycles.
func (l *List[T]) Validate() error {

	empty := 0
	for _, s := range l.slots {
		if !s.occupied {
			empty++
		}
	}

	if l.count+empty != len(l.slots) {
		return fmt.Errorf("%w: %d occupied + %d empty slots != %d slots", ErrCorrupted, l.count, empty, len(l.slots))
	}

	seen := make([]bool, len(l.slots))
	visited := 0
	for cur := l.free; cur != end; {
		i := cur.index()
		if i < 0 || i >= len(l.slots) {
			return fmt.Errorf("%w: free list points to %d, out of range", ErrCorrupted, i)
		}
		if l.slots[i].occupied {
			return fmt.Errorf("%w: free list reaches occupied slot %d", ErrCorrupted, i)
		}
		if seen[i] {
			return fmt.Errorf("%w: free list cycles at slot %d", ErrCorrupted, i)
		}
		seen[i] = true
		visited++
		cur = l.slots[i].next
	}

	if visited != empty {
		return fmt.Errorf("%w: free list visits %d of %d empty slots", ErrCorrupted, visited, empty)
	}

	return nil
}

func (l *List[T]) mustBeMutable() {
	if l.iterating.Load() > 0 {
		panic(ErrMutationDuringIteration)
	}
}
