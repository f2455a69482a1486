package database

import (
	"encoding/json"
	"errors"
	"os"
	"path"
	"testing"

	"github.com/fulldump/biff"
)

func TestDatabase(t *testing.T) {

	biff.Alternative("Database", func(a *biff.A) {

		dir := t.TempDir()
		db := NewDatabase(&Config{Dir: dir})
		biff.AssertNil(db.Load())
		biff.AssertEqual(db.GetStatus(), StatusOperating)

		people, err := db.CreateTable("people")
		biff.AssertNil(err)
		people.Insert(json.RawMessage(`{"name":"Alice"}`))
		people.Insert(json.RawMessage(`{"name":"Bob"}`))
		people.Remove(0)

		a.Alternative("Create twice", func(a *biff.A) {
			_, err := db.CreateTable("people")
			biff.AssertTrue(errors.Is(err, ErrTableAlreadyExists))
		})

		a.Alternative("Invalid name", func(a *biff.A) {
			_, err := db.CreateTable("../etc")
			biff.AssertTrue(errors.Is(err, ErrInvalidTableName))
		})

		a.Alternative("List and get", func(a *biff.A) {
			db.CreateTable("animals")
			biff.AssertEqual(db.ListTables(), []string{"animals", "people"})

			found, err := db.GetTable("people")
			biff.AssertNil(err)
			biff.AssertEqual(found, people)

			_, err = db.GetTable("plants")
			biff.AssertTrue(errors.Is(err, ErrTableNotFound))
		})

		a.Alternative("Drop", func(a *biff.A) {
			biff.AssertNil(db.DropTable("people"))
			biff.AssertEqual(db.ListTables(), []string{})

			_, err := os.Stat(path.Join(dir, "people.journal"))
			biff.AssertTrue(os.IsNotExist(err))

			biff.AssertTrue(errors.Is(db.DropTable("people"), ErrTableNotFound))
		})

		a.Alternative("Stop and load again", func(a *biff.A) {
			os.WriteFile(path.Join(dir, "notes.txt"), []byte("ignored"), 0666)

			biff.AssertNil(db.Stop())
			biff.AssertEqual(db.GetStatus(), StatusClosing)

			db2 := NewDatabase(&Config{Dir: dir})
			biff.AssertNil(db2.Load())
			defer db2.Stop()

			biff.AssertEqual(db2.ListTables(), []string{"people"})
			reloaded, _ := db2.GetTable("people")
			biff.AssertEqual(reloaded.Len(), 1)
			biff.AssertEqual(reloaded.Free(), []int{0})
		})
	})
}
