package table

import (
	"fmt"

	"github.com/google/btree"
	"github.com/tidwall/gjson"
)

// IndexOptions describe a unique index over one field of the documents.
// Sparse indexes skip documents without the field, otherwise the field is
// mandatory.
type IndexOptions struct {
	Name   string `json:"name"`
	Field  string `json:"field"`
	Sparse bool   `json:"sparse"`
}

type indexEntry struct {
	Value  string
	Handle int
}

// Index maps the value of a field to the handle of the document holding it,
// ordered by value.
type Index struct {
	Options IndexOptions
	tree    *btree.BTreeG[indexEntry]
}

func newIndex(options IndexOptions) *Index {
	return &Index{
		Options: options,
		tree: btree.NewG(32, func(a, b indexEntry) bool {
			return a.Value < b.Value
		}),
	}
}

// key extracts the indexed value from payload. ok is false when the field is
// missing.
func (i *Index) key(payload []byte) (key string, ok bool, err error) {
	result := gjson.GetBytes(payload, i.Options.Field)
	if !result.Exists() {
		return "", false, nil
	}

	switch result.Type {
	case gjson.String, gjson.Number, gjson.True, gjson.False:
		return result.String(), true, nil
	default:
		return "", false, fmt.Errorf("field '%s': type not supported", i.Options.Field)
	}
}

func (i *Index) add(row *Row) error {
	key, ok, err := i.key(row.Payload)
	if err != nil {
		return err
	}
	if !ok {
		if i.Options.Sparse {
			return nil
		}
		return fmt.Errorf("field '%s' is indexed and mandatory", i.Options.Field)
	}

	if existing, found := i.tree.Get(indexEntry{Value: key}); found && existing.Handle != row.Handle {
		return fmt.Errorf("%w: field '%s' with value '%s'", ErrIndexConflict, i.Options.Field, key)
	}

	i.tree.ReplaceOrInsert(indexEntry{Value: key, Handle: row.Handle})
	return nil
}

func (i *Index) remove(row *Row) {
	key, ok, err := i.key(row.Payload)
	if err != nil || !ok {
		return
	}

	existing, found := i.tree.Get(indexEntry{Value: key})
	if found && existing.Handle == row.Handle {
		i.tree.Delete(existing)
	}
}

func (i *Index) lookup(value string) (int, bool) {
	entry, found := i.tree.Get(indexEntry{Value: value})
	return entry.Handle, found
}

func (i *Index) handles(reverse bool) []int {
	handles := make([]int, 0, i.tree.Len())
	iterator := func(entry indexEntry) bool {
		handles = append(handles, entry.Handle)
		return true
	}
	if reverse {
		i.tree.Descend(iterator)
	} else {
		i.tree.Ascend(iterator)
	}
	return handles
}
