package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/slotlist/journal"
	"github.com/fulldump/slotlist/slotlist"
	"github.com/fulldump/slotlist/utils"
)

var (
	ErrHandleNotFound = errors.New("handle not found")
	ErrInvalidPayload = errors.New("payload is not valid JSON")
	ErrIndexConflict  = errors.New("index conflict")
	ErrIndexNotFound  = errors.New("index not found")
	ErrIndexExists    = errors.New("index already exists")
	ErrDiverged       = errors.New("journal diverged")
	ErrClosed         = journal.ErrClosed
)

// Row is a document stored in a table. Handle is the slot it lives in and
// does not change until the row is removed.
type Row struct {
	Handle  int             `json:"handle"`
	Payload json.RawMessage `json:"payload"`
}

// Table is a handle table of JSON documents. Every change is written to a
// journal so the table, handles included, can be rebuilt on Open.
type Table struct {
	filename    string
	rows        *slotlist.Locked[*Row]
	indexes     map[string]*Index // guarded by the rows lock
	journal     *journal.Journal
	stopFlusher func()
}

func Open(filename string) (*Table, error) {

	t := &Table{
		filename: filename,
		rows:     slotlist.NewLocked[*Row](),
		indexes:  map[string]*Index{},
	}

	err := journal.Replay(filename, t.apply)
	if err != nil {
		return nil, err
	}

	t.journal, err = journal.Open(filename)
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Table) apply(command *journal.Command) error {

	switch command.Name {
	case journal.CommandInsert:
		row := &Row{Payload: json.RawMessage(command.Payload)}
		return t.rows.Write(func(list *slotlist.List[*Row]) error {
			row.Handle = list.Insert(row)
			if row.Handle != command.Handle {
				return fmt.Errorf("%w: insert got handle %d, journal says %d", ErrDiverged, row.Handle, command.Handle)
			}
			return t.indexInsert(row)
		})

	case journal.CommandRemove:
		return t.rows.Write(func(list *slotlist.List[*Row]) error {
			row, ok := list.Remove(command.Handle)
			if !ok {
				return fmt.Errorf("%w: remove of empty handle %d", ErrDiverged, command.Handle)
			}
			t.indexRemove(row)
			return nil
		})

	case journal.CommandReplace:
		row := &Row{Handle: command.Handle, Payload: json.RawMessage(command.Payload)}
		return t.rows.Write(func(list *slotlist.List[*Row]) error {
			if command.Handle < 0 || command.Handle >= list.Slots() {
				return fmt.Errorf("%w: replace of unknown handle %d", ErrDiverged, command.Handle)
			}
			previous, replaced := list.Replace(command.Handle, row)
			if replaced {
				t.indexRemove(previous)
			}
			return t.indexInsert(row)
		})

	case journal.CommandIndex:
		options := IndexOptions{}
		err := jsonv2.Unmarshal(command.Payload, &options)
		if err != nil {
			return err
		}
		return t.rows.Write(func(list *slotlist.List[*Row]) error {
			return t.buildIndex(list, options)
		})

	case journal.CommandDropIndex:
		options := IndexOptions{}
		err := jsonv2.Unmarshal(command.Payload, &options)
		if err != nil {
			return err
		}
		return t.rows.Write(func(list *slotlist.List[*Row]) error {
			delete(t.indexes, options.Name)
			return nil
		})

	case journal.CommandSnapshot:
		snapshot := slotlist.Snapshot[*Row]{}
		err := jsonv2.Unmarshal(command.Payload, &snapshot)
		if err != nil {
			return err
		}
		list, err := slotlist.Restore(snapshot)
		if err != nil {
			return err
		}
		t.rows = slotlist.Wrap(list)
		t.indexes = map[string]*Index{}
		return nil
	}

	fmt.Printf("WARNING: unknown command '%s' in journal '%s'\n", command.Name, t.filename)
	return nil
}

// StartFlusher syncs the journal to disk every interval until Close.
func (t *Table) StartFlusher(interval time.Duration) {
	if interval <= 0 || t.stopFlusher != nil {
		return
	}
	t.stopFlusher = journal.StartFlusher(t.journal, interval)
}

func (t *Table) Insert(payload json.RawMessage) (*Row, error) {

	if !jsontext.Value(payload).IsValid() {
		return nil, ErrInvalidPayload
	}

	row := &Row{Payload: payload}
	err := t.rows.Write(func(list *slotlist.List[*Row]) error {

		row.Handle = list.Next()

		err := t.indexInsert(row)
		if err != nil {
			return err
		}

		err = t.journal.Append(&journal.Command{
			Name:    journal.CommandInsert,
			Handle:  row.Handle,
			Payload: jsontext.Value(payload),
		})
		if err != nil {
			t.indexRemove(row)
			return err
		}

		list.Insert(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return row, nil
}

func (t *Table) Get(handle int) (*Row, error) {
	row, ok := t.rows.Get(handle)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrHandleNotFound, handle)
	}
	return row, nil
}

// Remove deletes the row at handle. The handle is reused by the next insert.
func (t *Table) Remove(handle int) (*Row, error) {

	var row *Row
	err := t.rows.Write(func(list *slotlist.List[*Row]) error {

		var ok bool
		row, ok = list.Get(handle)
		if !ok {
			return fmt.Errorf("%w: %d", ErrHandleNotFound, handle)
		}

		err := t.journal.Append(&journal.Command{
			Name:   journal.CommandRemove,
			Handle: handle,
		})
		if err != nil {
			return err
		}

		list.Remove(handle)
		t.indexRemove(row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return row, nil
}

// Replace stores payload at handle. A handle that was freed but never reused
// is taken back from the free list.
func (t *Table) Replace(handle int, payload json.RawMessage) (*Row, error) {

	if !jsontext.Value(payload).IsValid() {
		return nil, ErrInvalidPayload
	}

	row := &Row{Handle: handle, Payload: payload}
	err := t.rows.Write(func(list *slotlist.List[*Row]) error {

		if handle < 0 || handle >= list.Slots() {
			return fmt.Errorf("%w: %d", ErrHandleNotFound, handle)
		}

		previous, occupied := list.Get(handle)
		if occupied {
			t.indexRemove(previous)
		}

		err := t.indexInsert(row)
		if err != nil {
			if occupied {
				t.indexInsert(previous)
			}
			return err
		}

		err = t.journal.Append(&journal.Command{
			Name:    journal.CommandReplace,
			Handle:  handle,
			Payload: jsontext.Value(payload),
		})
		if err != nil {
			t.indexRemove(row)
			if occupied {
				t.indexInsert(previous)
			}
			return err
		}

		list.Replace(handle, row)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return row, nil
}

// Len is the number of rows.
func (t *Table) Len() int {
	return t.rows.Len()
}

// Slots is the number of handles ever allocated, free ones included.
func (t *Table) Slots() int {
	return t.rows.Slots()
}

// Free returns the free handles in the order they will be reused.
func (t *Table) Free() []int {
	return t.rows.FreeList()
}

// Traverse calls f for every row in handle order until f returns false. It
// works on a copy, so f may modify the table.
func (t *Table) Traverse(f func(row *Row) bool) {
	for _, entry := range t.rows.Entries() {
		if !f(entry.Value) {
			return
		}
	}
}

func (t *Table) CreateIndex(options IndexOptions) error {

	if options.Name == "" {
		options.Name = options.Field
	}
	if options.Field == "" {
		return fmt.Errorf("index field is required")
	}

	payload, err := jsonv2.Marshal(options)
	if err != nil {
		return err
	}

	return t.rows.Write(func(list *slotlist.List[*Row]) error {

		err := t.buildIndex(list, options)
		if err != nil {
			return err
		}

		err = t.journal.Append(&journal.Command{
			Name:    journal.CommandIndex,
			Payload: payload,
		})
		if err != nil {
			delete(t.indexes, options.Name)
			return err
		}

		return nil
	})
}

func (t *Table) buildIndex(list *slotlist.List[*Row], options IndexOptions) error {

	if _, exists := t.indexes[options.Name]; exists {
		return fmt.Errorf("%w: '%s'", ErrIndexExists, options.Name)
	}

	index := newIndex(options)
	for _, row := range list.All() {
		err := index.add(row)
		if err != nil {
			return fmt.Errorf("index row %d: %w", row.Handle, err)
		}
	}

	t.indexes[options.Name] = index
	return nil
}

func (t *Table) DropIndex(name string) error {

	payload, err := jsonv2.Marshal(IndexOptions{Name: name})
	if err != nil {
		return err
	}

	return t.rows.Write(func(list *slotlist.List[*Row]) error {

		if _, exists := t.indexes[name]; !exists {
			return fmt.Errorf("%w: '%s'", ErrIndexNotFound, name)
		}

		err := t.journal.Append(&journal.Command{
			Name:    journal.CommandDropIndex,
			Payload: payload,
		})
		if err != nil {
			return err
		}

		delete(t.indexes, name)
		return nil
	})
}

// ListIndexes returns the options of every index sorted by name.
func (t *Table) ListIndexes() []IndexOptions {
	result := []IndexOptions{}
	t.rows.Read(func(list *slotlist.List[*Row]) {
		for _, name := range utils.GetKeys(t.indexes) {
			result = append(result, t.indexes[name].Options)
		}
	})
	return result
}

// Lookup finds the row whose indexed field equals value.
func (t *Table) Lookup(indexName, value string) (*Row, error) {

	var row *Row
	var err error
	t.rows.Read(func(list *slotlist.List[*Row]) {
		index, exists := t.indexes[indexName]
		if !exists {
			err = fmt.Errorf("%w: '%s'", ErrIndexNotFound, indexName)
			return
		}
		handle, found := index.lookup(value)
		if !found {
			err = fmt.Errorf("%w: %s '%s'", ErrHandleNotFound, index.Options.Field, value)
			return
		}
		row, _ = list.Get(handle)
	})

	return row, err
}

// TraverseIndex calls f for every indexed row ordered by the indexed value.
func (t *Table) TraverseIndex(indexName string, reverse bool, f func(row *Row) bool) error {

	rows := []*Row{}
	var err error
	t.rows.Read(func(list *slotlist.List[*Row]) {
		index, exists := t.indexes[indexName]
		if !exists {
			err = fmt.Errorf("%w: '%s'", ErrIndexNotFound, indexName)
			return
		}
		for _, handle := range index.handles(reverse) {
			row, _ := list.Get(handle)
			rows = append(rows, row)
		}
	})
	if err != nil {
		return err
	}

	for _, row := range rows {
		if !f(row) {
			break
		}
	}

	return nil
}

// Compact rewrites the journal as a single snapshot followed by the index
// definitions. Handles and the reuse order are preserved.
func (t *Table) Compact() error {

	return t.rows.Write(func(list *slotlist.List[*Row]) error {

		snapshot, err := jsonv2.Marshal(list.Snapshot())
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}

		commands := []*journal.Command{
			{Name: journal.CommandSnapshot, Payload: snapshot},
		}

		for _, name := range utils.GetKeys(t.indexes) {
			payload, err := jsonv2.Marshal(t.indexes[name].Options)
			if err != nil {
				return err
			}
			commands = append(commands, &journal.Command{
				Name:    journal.CommandIndex,
				Payload: payload,
			})
		}

		return t.journal.Rewrite(commands)
	})
}

func (t *Table) Close() error {
	if t.stopFlusher != nil {
		t.stopFlusher()
		t.stopFlusher = nil
	}
	return t.journal.Close()
}

// Drop closes the table and deletes its journal.
func (t *Table) Drop() error {
	err := t.Close()
	if err != nil {
		return err
	}
	return os.Remove(t.filename)
}

func (t *Table) indexInsert(row *Row) error {
	added := []*Index{}
	for _, index := range t.indexes {
		err := index.add(row)
		if err != nil {
			for _, a := range added {
				a.remove(row)
			}
			return err
		}
		added = append(added, index)
	}
	return nil
}

func (t *Table) indexRemove(row *Row) {
	for _, index := range t.indexes {
		index.remove(row)
	}
}
