package table

import (
	"encoding/json"
	"errors"
	"os"
	"path"
	"testing"

	"github.com/fulldump/biff"
	"github.com/google/go-cmp/cmp"
)

func payloads(t *Table) map[int]string {
	result := map[int]string{}
	t.Traverse(func(row *Row) bool {
		result[row.Handle] = string(row.Payload)
		return true
	})
	return result
}

func TestTable(t *testing.T) {

	biff.Alternative("Table", func(a *biff.A) {

		filename := path.Join(t.TempDir(), "people.journal")

		table, err := Open(filename)
		biff.AssertNil(err)

		alice, err := table.Insert(json.RawMessage(`{"name":"Alice"}`))
		biff.AssertNil(err)
		bob, _ := table.Insert(json.RawMessage(`{"name":"Bob"}`))
		carol, _ := table.Insert(json.RawMessage(`{"name":"Carol"}`))

		biff.AssertEqual(alice.Handle, 0)
		biff.AssertEqual(bob.Handle, 1)
		biff.AssertEqual(carol.Handle, 2)

		a.Alternative("Get", func(a *biff.A) {
			row, err := table.Get(1)
			biff.AssertNil(err)
			biff.AssertEqual(string(row.Payload), `{"name":"Bob"}`)

			_, err = table.Get(7)
			biff.AssertTrue(errors.Is(err, ErrHandleNotFound))
		})

		a.Alternative("Invalid payload", func(a *biff.A) {
			_, err := table.Insert(json.RawMessage(`{"name":`))
			biff.AssertEqual(err, ErrInvalidPayload)
			biff.AssertEqual(table.Len(), 3)
		})

		a.Alternative("Remove reuses the handle", func(a *biff.A) {
			row, err := table.Remove(1)
			biff.AssertNil(err)
			biff.AssertEqual(string(row.Payload), `{"name":"Bob"}`)
			biff.AssertEqual(table.Free(), []int{1})

			_, err = table.Remove(1)
			biff.AssertTrue(errors.Is(err, ErrHandleNotFound))

			dave, _ := table.Insert(json.RawMessage(`{"name":"Dave"}`))
			biff.AssertEqual(dave.Handle, 1)
			biff.AssertEqual(table.Slots(), 3)
		})

		a.Alternative("Replace", func(a *biff.A) {
			table.Remove(0)
			table.Remove(2)

			row, err := table.Replace(0, json.RawMessage(`{"name":"Zoe"}`))
			biff.AssertNil(err)
			biff.AssertEqual(row.Handle, 0)
			biff.AssertEqual(table.Free(), []int{2})
			biff.AssertEqual(table.Len(), 2)

			_, err = table.Replace(3, json.RawMessage(`{}`))
			biff.AssertTrue(errors.Is(err, ErrHandleNotFound))
		})

		a.Alternative("Reopen keeps handles", func(a *biff.A) {
			table.Remove(0)
			table.Remove(2)
			table.Replace(1, json.RawMessage(`{"name":"Robert"}`))
			biff.AssertNil(table.Close())

			reopened, err := Open(filename)
			biff.AssertNil(err)
			defer reopened.Close()

			biff.AssertEqual(payloads(reopened), map[int]string{1: `{"name":"Robert"}`})
			biff.AssertEqual(reopened.Free(), []int{2, 0})

			row, _ := reopened.Insert(json.RawMessage(`{"name":"Eve"}`))
			biff.AssertEqual(row.Handle, 2)
		})

		a.Alternative("Compact", func(a *biff.A) {
			table.CreateIndex(IndexOptions{Name: "by-name", Field: "name"})
			table.Remove(0)
			biff.AssertNil(table.Compact())

			stat, _ := os.Stat(filename)
			before := stat.Size()

			table.Insert(json.RawMessage(`{"name":"Frank"}`))
			biff.AssertNil(table.Close())

			stat, _ = os.Stat(filename)
			biff.AssertTrue(stat.Size() > before)

			reopened, err := Open(filename)
			biff.AssertNil(err)
			defer reopened.Close()

			expected := map[int]string{
				0: `{"name":"Frank"}`,
				1: `{"name":"Bob"}`,
				2: `{"name":"Carol"}`,
			}
			if diff := cmp.Diff(expected, payloads(reopened)); diff != "" {
				t.Fatalf("rows mismatch (-want +got):\n%s", diff)
			}

			row, err := reopened.Lookup("by-name", "Frank")
			biff.AssertNil(err)
			biff.AssertEqual(row.Handle, 0)
		})

		a.Alternative("Drop", func(a *biff.A) {
			biff.AssertNil(table.Drop())
			_, err := os.Stat(filename)
			biff.AssertTrue(os.IsNotExist(err))
		})
	})
}

func TestTable_Index(t *testing.T) {

	biff.Alternative("Index", func(a *biff.A) {

		filename := path.Join(t.TempDir(), "users.journal")
		table, _ := Open(filename)

		table.Insert(json.RawMessage(`{"email":"b@example.com","age":30}`))
		table.Insert(json.RawMessage(`{"email":"a@example.com","age":20}`))

		err := table.CreateIndex(IndexOptions{Name: "by-email", Field: "email"})
		biff.AssertNil(err)

		a.Alternative("Lookup", func(a *biff.A) {
			row, err := table.Lookup("by-email", "a@example.com")
			biff.AssertNil(err)
			biff.AssertEqual(row.Handle, 1)

			_, err = table.Lookup("by-email", "z@example.com")
			biff.AssertTrue(errors.Is(err, ErrHandleNotFound))

			_, err = table.Lookup("nope", "a@example.com")
			biff.AssertTrue(errors.Is(err, ErrIndexNotFound))
		})

		a.Alternative("Conflict leaves no slot behind", func(a *biff.A) {
			_, err := table.Insert(json.RawMessage(`{"email":"a@example.com"}`))
			biff.AssertTrue(errors.Is(err, ErrIndexConflict))
			biff.AssertEqual(table.Len(), 2)
			biff.AssertEqual(table.Slots(), 2)
			biff.AssertEqual(table.Free(), []int{})

			row, err := table.Insert(json.RawMessage(`{"email":"c@example.com"}`))
			biff.AssertNil(err)
			biff.AssertEqual(row.Handle, 2)
			biff.AssertNil(table.Close())

			reopened, err := Open(filename)
			biff.AssertNil(err)
			defer reopened.Close()

			biff.AssertEqual(reopened.Len(), 3)
			biff.AssertEqual(reopened.Slots(), 3)
			biff.AssertEqual(reopened.Free(), []int{})
		})

		a.Alternative("Conflict on a reused handle keeps it free", func(a *biff.A) {
			table.Remove(0)

			_, err := table.Insert(json.RawMessage(`{"email":"a@example.com"}`))
			biff.AssertTrue(errors.Is(err, ErrIndexConflict))
			biff.AssertEqual(table.Free(), []int{0})
			biff.AssertEqual(table.Slots(), 2)

			row, _ := table.Insert(json.RawMessage(`{"email":"d@example.com"}`))
			biff.AssertEqual(row.Handle, 0)
		})

		a.Alternative("Mandatory field", func(a *biff.A) {
			_, err := table.Insert(json.RawMessage(`{"age":50}`))
			biff.AssertNotNil(err)
			biff.AssertEqual(table.Len(), 2)
		})

		a.Alternative("Sparse index", func(a *biff.A) {
			err := table.CreateIndex(IndexOptions{Name: "by-nick", Field: "nick", Sparse: true})
			biff.AssertNil(err)
			_, err = table.Insert(json.RawMessage(`{"email":"c@example.com"}`))
			biff.AssertNil(err)
		})

		a.Alternative("Duplicate index", func(a *biff.A) {
			err := table.CreateIndex(IndexOptions{Name: "by-email", Field: "email"})
			biff.AssertTrue(errors.Is(err, ErrIndexExists))
		})

		a.Alternative("Replace keeps the index in sync", func(a *biff.A) {
			_, err := table.Replace(1, json.RawMessage(`{"email":"b@example.com"}`))
			biff.AssertTrue(errors.Is(err, ErrIndexConflict))

			row, _ := table.Lookup("by-email", "a@example.com")
			biff.AssertEqual(row.Handle, 1)

			_, err = table.Replace(1, json.RawMessage(`{"email":"c@example.com"}`))
			biff.AssertNil(err)
			_, err = table.Lookup("by-email", "a@example.com")
			biff.AssertNotNil(err)
		})

		a.Alternative("Remove frees the value", func(a *biff.A) {
			table.Remove(1)
			_, err := table.Insert(json.RawMessage(`{"email":"a@example.com"}`))
			biff.AssertNil(err)
		})

		a.Alternative("Traverse index", func(a *biff.A) {
			handles := []int{}
			err := table.TraverseIndex("by-email", false, func(row *Row) bool {
				handles = append(handles, row.Handle)
				return true
			})
			biff.AssertNil(err)
			biff.AssertEqual(handles, []int{1, 0})

			handles = []int{}
			table.TraverseIndex("by-email", true, func(row *Row) bool {
				handles = append(handles, row.Handle)
				return true
			})
			biff.AssertEqual(handles, []int{0, 1})
		})

		a.Alternative("Drop index", func(a *biff.A) {
			biff.AssertNil(table.DropIndex("by-email"))
			biff.AssertEqual(table.ListIndexes(), []IndexOptions{})
			biff.AssertTrue(errors.Is(table.DropIndex("by-email"), ErrIndexNotFound))
		})

		a.Alternative("Indexes survive reopen", func(a *biff.A) {
			table.Close()

			reopened, err := Open(filename)
			biff.AssertNil(err)
			defer reopened.Close()

			biff.AssertEqual(reopened.ListIndexes(), []IndexOptions{{Name: "by-email", Field: "email"}})
			row, _ := reopened.Lookup("by-email", "b@example.com")
			biff.AssertEqual(row.Handle, 0)
		})

		table.Close()
	})
}

func TestTable_Find(t *testing.T) {

	table, _ := Open(path.Join(t.TempDir(), "find.journal"))
	defer table.Close()

	table.Insert(json.RawMessage(`{"name":"Alice","age":31}`))
	table.Insert(json.RawMessage(`{"name":"Bob","age":17}`))
	table.Insert(json.RawMessage(`{"name":"Carol","age":45}`))

	handles := []int{}
	err := table.Find(map[string]interface{}{"age": map[string]interface{}{"$gt": 18.0}}, 0, 0, func(row *Row) bool {
		handles = append(handles, row.Handle)
		return true
	})
	biff.AssertNil(err)
	biff.AssertEqual(handles, []int{0, 2})

	handles = []int{}
	table.Find(nil, 1, 1, func(row *Row) bool {
		handles = append(handles, row.Handle)
		return true
	})
	biff.AssertEqual(handles, []int{1})
}

func TestTable_Diverged(t *testing.T) {

	filename := path.Join(t.TempDir(), "diverged.journal")
	os.WriteFile(filename, []byte(`{"name":"insert","handle":3,"payload":{}}`+"\n"), 0666)

	_, err := Open(filename)
	biff.AssertTrue(errors.Is(err, ErrDiverged))
}
