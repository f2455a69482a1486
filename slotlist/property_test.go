package slotlist

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// model is the naive version of List: a map of values plus an explicit stack
// of free indexes.
type model struct {
	values map[int]int
	free   []int
	slots  int
}

func (m *model) insert(v int) int {
	if n := len(m.free); n > 0 {
		i := m.free[n-1]
		m.free = m.free[:n-1]
		m.values[i] = v
		return i
	}
	i := m.slots
	m.slots++
	m.values[i] = v
	return i
}

func (m *model) remove(i int) (int, bool) {
	v, ok := m.values[i]
	if !ok {
		return 0, false
	}
	delete(m.values, i)
	m.free = append(m.free, i)
	return v, true
}

func (m *model) entries() []Entry[int] {
	entries := []Entry[int]{}
	for i, v := range m.values {
		entries = append(entries, Entry[int]{Index: i, Value: v})
	}
	sort.Slice(entries, func(a, b int) bool {
		return entries[a].Index < entries[b].Index
	})
	return entries
}

func listEntries(l *List[int]) []Entry[int] {
	entries := []Entry[int]{}
	for i, v := range l.All() {
		entries = append(entries, Entry[int]{Index: i, Value: v})
	}
	return entries
}

func TestList_MatchesModel(t *testing.T) {

	for seed := uint64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewPCG(seed, seed*7919))

		l := New[int]()
		m := &model{values: map[int]int{}}

		for step := 0; step < 2000; step++ {
			slotsBefore := l.Slots()
			freeBefore := len(l.FreeList())

			if r.IntN(3) > 0 {
				v := r.Int()
				i := l.Insert(v)
				if want := m.insert(v); i != want {
					t.Fatalf("seed %d step %d: insert returned %d, want %d", seed, step, i, want)
				}
				if freeBefore > 0 && l.Slots() != slotsBefore {
					t.Fatalf("seed %d step %d: storage grew with %d free slots", seed, step, freeBefore)
				}
				if freeBefore == 0 && l.Slots() != slotsBefore+1 {
					t.Fatalf("seed %d step %d: storage grew from %d to %d", seed, step, slotsBefore, l.Slots())
				}
			} else {
				i := r.IntN(l.Slots()+2) - 1
				got, gotOk := l.Remove(i)
				want, wantOk := m.remove(i)
				if got != want || gotOk != wantOk {
					t.Fatalf("seed %d step %d: remove(%d) = %d,%v want %d,%v", seed, step, i, got, gotOk, want, wantOk)
				}
				if l.Slots() != slotsBefore {
					t.Fatalf("seed %d step %d: remove changed storage length", seed, step)
				}
			}

			if err := l.Validate(); err != nil {
				t.Fatalf("seed %d step %d: %v", seed, step, err)
			}
			if l.Len() != len(m.values) {
				t.Fatalf("seed %d step %d: len %d, want %d", seed, step, l.Len(), len(m.values))
			}
		}

		if diff := cmp.Diff(m.entries(), listEntries(l)); diff != "" {
			t.Fatalf("seed %d: entries mismatch (-model +list):\n%s", seed, diff)
		}

		wantFree := make([]int, len(m.free))
		for i, index := range m.free {
			wantFree[len(m.free)-1-i] = index
		}
		if diff := cmp.Diff(wantFree, l.FreeList()); diff != "" {
			t.Fatalf("seed %d: free list mismatch (-model +list):\n%s", seed, diff)
		}
	}
}

func TestList_IndexStability(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 42))

	l := New[string]()
	pinned := l.Insert("pinned")

	for step := 0; step < 5000; step++ {
		if r.IntN(2) == 0 {
			l.Insert("noise")
		} else {
			i := r.IntN(l.Slots())
			if i == pinned {
				continue
			}
			l.Remove(i)
		}

		v, ok := l.Get(pinned)
		if !ok || v != "pinned" {
			t.Fatalf("step %d: pinned value lost: %q %v", step, v, ok)
		}
	}
}
