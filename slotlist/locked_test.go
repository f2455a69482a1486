package slotlist

import (
	"errors"
	"sync"
	"testing"

	"github.com/fulldump/biff"
)

func TestLocked(t *testing.T) {

	biff.Alternative("Locked", func(a *biff.A) {

		l := NewLocked[string]()
		biff.AssertEqual(l.Insert("a"), 0)
		biff.AssertEqual(l.Insert("b"), 1)

		a.Alternative("Update", func(a *biff.A) {
			ok := l.Update(1, func(value *string) {
				*value += "!"
			})
			biff.AssertTrue(ok)

			v, _ := l.Get(1)
			biff.AssertEqual(v, "b!")

			called := false
			biff.AssertFalse(l.Update(7, func(*string) { called = true }))
			biff.AssertFalse(called)
		})

		a.Alternative("Entries is a copy", func(a *biff.A) {
			entries := l.Entries()
			l.Remove(0)
			biff.AssertEqual(entries, []Entry[string]{
				{Index: 0, Value: "a"},
				{Index: 1, Value: "b"},
			})
			biff.AssertEqual(l.FreeList(), []int{0})
			biff.AssertEqual(l.Len(), 1)
			biff.AssertEqual(l.Slots(), 2)
		})

		a.Alternative("Write returns the callback error", func(a *biff.A) {
			failure := errors.New("failure")
			next := -1
			err := l.Write(func(list *List[string]) error {
				next = list.Next()
				return failure
			})
			biff.AssertEqual(err, failure)
			biff.AssertEqual(next, 2)
			biff.AssertEqual(l.Len(), 2)
			biff.AssertEqual(l.Slots(), 2)
			biff.AssertEqual(l.FreeList(), []int{})
		})
	})
}

func TestLocked_Concurrency(t *testing.T) {

	l := NewLocked[int]()

	workers := 8
	n := 1000

	wg := &sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < n; i++ {
				index := l.Insert(w)
				if v, ok := l.Get(index); !ok || v != w {
					t.Errorf("worker %d lost its value at %d", w, index)
					return
				}
				if i%2 == 0 {
					l.Remove(index)
				}
			}
		}(w)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			l.Entries()
			l.Read(func(list *List[int]) {
				for range list.All() {
				}
			})
		}
	}()

	wg.Wait()

	biff.AssertEqual(l.Len(), workers*n/2)
	// at most one short-lived value per worker on top of the kept ones
	biff.AssertTrue(l.Slots() <= workers*n/2+workers)

	var err error
	l.Read(func(list *List[int]) {
		err = list.Validate()
	})
	biff.AssertNil(err)
}
