package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fulldump/slotlist/table"
)

var errExit = errors.New("exit")

type command struct {
	name  string
	usage string
	run   func(s *Shell, args string) error
}

var commands []command

func init() {
	commands = []command{
		{"insert", "insert <json>                 store a document, prints its handle", (*Shell).insert},
		{"get", "get <handle>                  print a document", (*Shell).get},
		{"put", "put <handle> <json>           replace the document at handle", (*Shell).put},
		{"rm", "rm <handle>                   remove a document, its handle is reused", (*Shell).remove},
		{"ls", "ls [limit]                    list documents in handle order", (*Shell).list},
		{"find", "find <json filter> [limit]    list documents matching filter", (*Shell).find},
		{"free", "free                          print free handles in reuse order", (*Shell).free},
		{"info", "info                          print counters and indexes", (*Shell).info},
		{"index", "index <name> <field> [sparse] create a unique index", (*Shell).index},
		{"dropindex", "dropindex <name>              drop an index", (*Shell).dropIndex},
		{"lookup", "lookup <index> <value>        find a document by indexed value", (*Shell).lookup},
		{"compact", "compact                       rewrite the journal as a snapshot", (*Shell).compact},
		{"help", "help                          show this help", (*Shell).help},
		{"exit", "exit                          leave", func(*Shell, string) error { return errExit }},
	}
}

// Shell runs text commands against a table.
type Shell struct {
	table *table.Table
	out   io.Writer
}

func (s *Shell) Exec(line string) error {

	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	if name == "quit" || name == "q" {
		return errExit
	}

	for _, c := range commands {
		if c.name == name {
			return c.run(s, args)
		}
	}

	return fmt.Errorf("unknown command '%s' (type 'help' for commands)", name)
}

func parseHandle(arg string) (int, error) {
	handle, err := strconv.Atoi(arg)
	if err != nil || handle < 0 {
		return 0, fmt.Errorf("invalid handle '%s'", arg)
	}
	return handle, nil
}

func (s *Shell) printRow(row *table.Row) {
	fmt.Fprintf(s.out, "%d\t%s\n", row.Handle, row.Payload)
}

func (s *Shell) insert(args string) error {
	row, err := s.table.Insert(json.RawMessage(args))
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, row.Handle)
	return nil
}

func (s *Shell) get(args string) error {
	handle, err := parseHandle(args)
	if err != nil {
		return err
	}
	row, err := s.table.Get(handle)
	if err != nil {
		return err
	}
	s.printRow(row)
	return nil
}

func (s *Shell) put(args string) error {
	h, payload, _ := strings.Cut(args, " ")
	handle, err := parseHandle(h)
	if err != nil {
		return err
	}
	row, err := s.table.Replace(handle, json.RawMessage(strings.TrimSpace(payload)))
	if err != nil {
		return err
	}
	s.printRow(row)
	return nil
}

func (s *Shell) remove(args string) error {
	handle, err := parseHandle(args)
	if err != nil {
		return err
	}
	row, err := s.table.Remove(handle)
	if err != nil {
		return err
	}
	s.printRow(row)
	return nil
}

func (s *Shell) list(args string) error {
	limit := 0
	if args != "" {
		var err error
		limit, err = strconv.Atoi(args)
		if err != nil {
			return fmt.Errorf("invalid limit '%s'", args)
		}
	}
	return s.table.Find(nil, 0, limit, func(row *table.Row) bool {
		s.printRow(row)
		return true
	})
}

func (s *Shell) find(args string) error {

	decoder := json.NewDecoder(strings.NewReader(args))
	filter := map[string]interface{}{}
	err := decoder.Decode(&filter)
	if err != nil {
		return fmt.Errorf("filter: %w", err)
	}

	limit := 0
	rest := strings.TrimSpace(args[decoder.InputOffset():])
	if rest != "" {
		limit, err = strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("invalid limit '%s'", rest)
		}
	}

	return s.table.Find(filter, 0, limit, func(row *table.Row) bool {
		s.printRow(row)
		return true
	})
}

func (s *Shell) free(string) error {
	fmt.Fprintln(s.out, s.table.Free())
	return nil
}

func (s *Shell) info(string) error {
	fmt.Fprintf(s.out, "rows: %d\nslots: %d\nfree: %d\n", s.table.Len(), s.table.Slots(), s.table.Slots()-s.table.Len())
	for _, options := range s.table.ListIndexes() {
		fmt.Fprintf(s.out, "index %s on %s sparse=%v\n", options.Name, options.Field, options.Sparse)
	}
	return nil
}

func (s *Shell) index(args string) error {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return errors.New("usage: index <name> <field> [sparse]")
	}
	return s.table.CreateIndex(table.IndexOptions{
		Name:   parts[0],
		Field:  parts[1],
		Sparse: len(parts) > 2 && parts[2] == "sparse",
	})
}

func (s *Shell) dropIndex(args string) error {
	return s.table.DropIndex(args)
}

func (s *Shell) lookup(args string) error {
	name, value, _ := strings.Cut(args, " ")
	row, err := s.table.Lookup(name, strings.TrimSpace(value))
	if err != nil {
		return err
	}
	s.printRow(row)
	return nil
}

func (s *Shell) compact(string) error {
	return s.table.Compact()
}

func (s *Shell) help(string) error {
	fmt.Fprintln(s.out, "Commands:")
	for _, c := range commands {
		fmt.Fprintln(s.out, "  "+c.usage)
	}
	return nil
}
