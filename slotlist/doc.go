// Package slotlist provides List, a container that hands out stable integer
// indices for inserted values and recycles the index of a removed value for
// the next insertion.
//
// Every position of the backing slice is a slot. An occupied slot holds a
// value, an empty slot holds the index of the next empty slot, so the empty
// slots form a singly linked free list inside the storage itself. Insert pops
// the head of that list and only appends when the list is exhausted, Remove
// pushes the slot back as the new head. Reuse order is therefore LIFO: the
// most recently removed index is handed out first.
//
// Typical usage:
//
//	handles := slotlist.New[*os.File]()
//	fd := handles.Insert(f)   // 0
//	f, _ = handles.Get(fd)
//	handles.Remove(fd)
//	handles.Insert(g)         // 0 again
//
// A List is not safe for concurrent use. Wrap it with Locked when it is shared
// between goroutines. Mutating a List while it is being iterated panics with
// ErrMutationDuringIteration.
package slotlist
