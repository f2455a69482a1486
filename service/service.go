package service

import (
	"errors"

	"github.com/fulldump/slotlist/database"
	"github.com/fulldump/slotlist/table"
)

var (
	ErrorTableAlreadyExists = errors.New("table already exists")
	ErrorInvalidTableName   = errors.New("invalid table name")
)

// TableInfo summarizes a table. Slots counts every allocated handle, Free
// the ones waiting to be reused.
type TableInfo struct {
	Name    string `json:"name"`
	Total   int    `json:"total"`
	Slots   int    `json:"slots"`
	Free    int    `json:"free"`
	Indexes int    `json:"indexes"`
}

func NewTableInfo(name string, t *table.Table) *TableInfo {
	return &TableInfo{
		Name:    name,
		Total:   t.Len(),
		Slots:   t.Slots(),
		Free:    t.Slots() - t.Len(),
		Indexes: len(t.ListIndexes()),
	}
}

type Service struct {
	db *database.Database
}

func NewService(db *database.Database) *Service {
	return &Service{
		db: db,
	}
}

func (s *Service) CreateTable(name string) (*table.Table, error) {
	t, err := s.db.CreateTable(name)
	if errors.Is(err, database.ErrTableAlreadyExists) {
		return nil, ErrorTableAlreadyExists
	}
	if errors.Is(err, database.ErrInvalidTableName) {
		return nil, ErrorInvalidTableName
	}
	return t, err
}

func (s *Service) GetTable(name string) (*table.Table, error) {
	t, err := s.db.GetTable(name)
	if errors.Is(err, database.ErrTableNotFound) {
		return nil, ErrorTableNotFound
	}
	return t, err
}

func (s *Service) ListTables() []*TableInfo {
	result := []*TableInfo{}
	for _, name := range s.db.ListTables() {
		t, err := s.db.GetTable(name)
		if err != nil {
			continue // dropped meanwhile
		}
		result = append(result, NewTableInfo(name, t))
	}
	return result
}

func (s *Service) DropTable(name string) error {
	err := s.db.DropTable(name)
	if errors.Is(err, database.ErrTableNotFound) {
		return ErrorTableNotFound
	}
	return err
}
