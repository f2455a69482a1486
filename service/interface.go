package service

import (
	"errors"

	"github.com/fulldump/slotlist/table"
)

var ErrorTableNotFound = errors.New("table not found")

type Servicer interface {
	CreateTable(name string) (*table.Table, error)
	GetTable(name string) (*table.Table, error)
	ListTables() []*TableInfo
	DropTable(name string) error
}
