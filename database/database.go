package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fulldump/slotlist/table"
	"github.com/fulldump/slotlist/utils"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

const journalExtension = ".journal"

var (
	ErrTableNotFound      = errors.New("table not found")
	ErrTableAlreadyExists = errors.New("table already exists")
	ErrInvalidTableName   = errors.New("invalid table name")
)

var validName = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)

type Config struct {
	Dir           string
	FlushInterval time.Duration
}

type Database struct {
	config *Config
	status string
	tables map[string]*table.Table
	mu     sync.RWMutex
	exit   chan struct{}
}

func NewDatabase(config *Config) *Database {
	return &Database{
		config: config,
		status: StatusOpening,
		tables: map[string]*table.Table{},
		exit:   make(chan struct{}),
	}
}

func (db *Database) GetStatus() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.status
}

func (db *Database) setStatus(status string) {
	db.mu.Lock()
	db.status = status
	db.mu.Unlock()
}

func (db *Database) filename(name string) string {
	return path.Join(db.config.Dir, name+journalExtension)
}

func (db *Database) CreateTable(name string) (*table.Table, error) {

	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidTableName, name)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tables[name]; exists {
		return nil, fmt.Errorf("%w: '%s'", ErrTableAlreadyExists, name)
	}

	err := os.MkdirAll(db.config.Dir, 0755)
	if err != nil {
		return nil, err
	}

	t, err := table.Open(db.filename(name))
	if err != nil {
		return nil, err
	}
	t.StartFlusher(db.config.FlushInterval)

	db.tables[name] = t

	return t, nil
}

func (db *Database) GetTable(name string) (*table.Table, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, exists := db.tables[name]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrTableNotFound, name)
	}
	return t, nil
}

// ListTables returns the tables sorted by name.
func (db *Database) ListTables() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return utils.GetKeys(db.tables)
}

// DropTable closes the table and removes its journal.
func (db *Database) DropTable(name string) error {

	db.mu.Lock()
	defer db.mu.Unlock()

	t, exists := db.tables[name]
	if !exists {
		return fmt.Errorf("%w: '%s'", ErrTableNotFound, name)
	}

	err := t.Drop()
	if err != nil {
		return fmt.Errorf("drop table '%s': %w", name, err)
	}

	delete(db.tables, name)

	return nil
}

// Load opens every journal found in the data directory.
func (db *Database) Load() error {

	fmt.Printf("Loading database %s...\n", db.config.Dir)
	dir := db.config.Dir
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}
	err = filepath.WalkDir(dir, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if filename != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(filename, journalExtension) {
			return nil
		}

		name := strings.TrimSuffix(d.Name(), journalExtension)

		t0 := time.Now()
		t, err := table.Open(filename)
		if err != nil {
			fmt.Printf("ERROR: open table '%s': %s\n", filename, err.Error())
			return err
		}
		t.StartFlusher(db.config.FlushInterval)
		fmt.Println(name, t.Len(), time.Since(t0))

		db.mu.Lock()
		db.tables[name] = t
		db.mu.Unlock()

		return nil
	})

	if err != nil {
		db.setStatus(StatusClosing)
		return err
	}

	db.setStatus(StatusOperating)

	return nil
}

// Start loads the database and blocks until Stop.
func (db *Database) Start() error {

	go db.Load()

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	defer close(db.exit)

	db.setStatus(StatusClosing)

	db.mu.Lock()
	defer db.mu.Unlock()

	var lastErr error
	for name, t := range db.tables {
		fmt.Printf("Closing '%s'...\n", name)
		err := t.Close()
		if err != nil {
			fmt.Printf("ERROR: close(%s): %s\n", name, err.Error())
			lastErr = err
		}
	}

	return lastErr
}
