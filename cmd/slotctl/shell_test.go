package main

import (
	"bytes"
	"errors"
	"path"
	"testing"

	"github.com/fulldump/biff"

	"github.com/fulldump/slotlist/table"
)

func TestShell(t *testing.T) {

	biff.Alternative("Shell", func(a *biff.A) {

		tbl, err := table.Open(path.Join(t.TempDir(), "shell.journal"))
		biff.AssertNil(err)
		defer tbl.Close()

		out := &bytes.Buffer{}
		s := &Shell{table: tbl, out: out}

		biff.AssertNil(s.Exec(`insert {"name":"Alice"}`))
		biff.AssertNil(s.Exec(`insert {"name":"Bob"}`))
		biff.AssertEqual(out.String(), "0\n1\n")
		out.Reset()

		a.Alternative("Remove and reuse", func(a *biff.A) {
			biff.AssertNil(s.Exec("rm 0"))
			biff.AssertNil(s.Exec("free"))
			biff.AssertNil(s.Exec(`insert {"name":"Carol"}`))
			biff.AssertEqual(out.String(), "0\t{\"name\":\"Alice\"}\n[0]\n0\n")
		})

		a.Alternative("List", func(a *biff.A) {
			biff.AssertNil(s.Exec("ls 1"))
			biff.AssertEqual(out.String(), "0\t{\"name\":\"Alice\"}\n")
		})

		a.Alternative("Find", func(a *biff.A) {
			biff.AssertNil(s.Exec(`find {"name":"Bob"}`))
			biff.AssertEqual(out.String(), "1\t{\"name\":\"Bob\"}\n")
		})

		a.Alternative("Put", func(a *biff.A) {
			biff.AssertNil(s.Exec(`put 1 {"name":"Robert"}`))
			biff.AssertNil(s.Exec("get 1"))
			biff.AssertEqual(out.String(), "1\t{\"name\":\"Robert\"}\n1\t{\"name\":\"Robert\"}\n")
		})

		a.Alternative("Index and lookup", func(a *biff.A) {
			biff.AssertNil(s.Exec("index by-name name"))
			biff.AssertNil(s.Exec("lookup by-name Bob"))
			biff.AssertEqual(out.String(), "1\t{\"name\":\"Bob\"}\n")
		})

		a.Alternative("Errors", func(a *biff.A) {
			biff.AssertNotNil(s.Exec("get x"))
			biff.AssertTrue(errors.Is(s.Exec("get 9"), table.ErrHandleNotFound))
			biff.AssertNotNil(s.Exec("nope"))
			biff.AssertEqual(s.Exec("exit"), errExit)
		})
	})
}
