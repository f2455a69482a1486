// slotctl opens a table journal and runs an interactive shell over it.
//
// Usage:
//
//	slotctl [--dir data] [--history file] <table>
//
// The table must not be opened by a running server at the same time.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/fulldump/slotlist/table"
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".slotctl_history")
}

func run(args []string) error {

	fs := flag.NewFlagSet("slotctl", flag.ContinueOnError)
	dir := fs.StringP("dir", "d", "data", "data directory")
	history := fs.String("history", defaultHistoryFile(), "history file, empty disables it")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: slotctl [options] <table>\n\nOptions:\n")
		fs.PrintDefaults()
	}

	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("missing table name")
	}

	filename := filepath.Join(*dir, fs.Arg(0)+".journal")
	t, err := table.Open(filename)
	if err != nil {
		return fmt.Errorf("open table: %w", err)
	}
	defer t.Close()

	shell := &Shell{table: t, out: os.Stdout}
	return shell.Loop(*history)
}

// Loop reads commands until exit, EOF or Ctrl-C.
func (s *Shell) Loop(historyFile string) error {

	l := liner.NewLiner()
	defer l.Close()

	l.SetCtrlCAborts(true)
	l.SetCompleter(complete)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			l.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintf(s.out, "slotctl - %d rows, %d slots\n", s.table.Len(), s.table.Slots())
	fmt.Fprintln(s.out, "Type 'help' for available commands.")

	defer func() {
		if historyFile == "" {
			return
		}
		if f, err := os.Create(historyFile); err == nil {
			l.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		line, err := l.Prompt("slotctl> ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Fprintln(s.out, "\nBye!")
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		l.AppendHistory(line)

		err = s.Exec(line)
		if err == errExit {
			fmt.Fprintln(s.out, "Bye!")
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, "error:", err.Error())
		}
	}
}

func complete(line string) []string {
	result := []string{}
	for _, c := range commands {
		if strings.HasPrefix(c.name, strings.ToLower(line)) {
			result = append(result, c.name)
		}
	}
	return result
}
