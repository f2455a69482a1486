package slotlist

import "sync"

// Entry is an occupied slot copied out of a list.
type Entry[T any] struct {
	Index int `json:"index"`
	Value T   `json:"value"`
}

// Locked guards a List with a RWMutex so it can be shared between goroutines.
// Iteration is done over copies (Entries) or inside Read.
type Locked[T any] struct {
	list *List[T]
	mu   sync.RWMutex
}

func NewLocked[T any]() *Locked[T] {
	return &Locked[T]{
		list: New[T](),
	}
}

// Wrap takes ownership of list. The caller must not use list directly after.
func Wrap[T any](list *List[T]) *Locked[T] {
	return &Locked[T]{
		list: list,
	}
}

func (l *Locked[T]) Insert(value T) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Insert(value)
}

func (l *Locked[T]) Get(index int) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.list.Get(index)
}

func (l *Locked[T]) Remove(index int) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Remove(index)
}

// Replace behaves like List.Replace, out of range indices included.
func (l *Locked[T]) Replace(index int, value T) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Replace(index, value)
}

// Update calls f with a pointer to the value at index while holding the write
// lock. It returns false, without calling f, if index holds no value.
func (l *Locked[T]) Update(index int, f func(value *T)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	value, ok := l.list.GetMut(index)
	if !ok {
		return false
	}
	f(value)
	return true
}

func (l *Locked[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.list.Len()
}

func (l *Locked[T]) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.list.IsEmpty()
}

func (l *Locked[T]) Slots() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.list.Slots()
}

func (l *Locked[T]) FreeList() []int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.list.FreeList()
}

func (l *Locked[T]) Snapshot() Snapshot[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.list.Snapshot()
}

// Entries copies the occupied slots in ascending index order.
func (l *Locked[T]) Entries() []Entry[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]Entry[T], 0, l.list.Len())
	for i, value := range l.list.All() {
		entries = append(entries, Entry[T]{Index: i, Value: value})
	}
	return entries
}

// Read runs f under the read lock. f must not mutate the list.
func (l *Locked[T]) Read(f func(list *List[T])) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f(l.list)
}

// Write runs f under the write lock, so several operations are seen as one.
func (l *Locked[T]) Write(f func(list *List[T]) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return f(l.list)
}
