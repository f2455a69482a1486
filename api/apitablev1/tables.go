package apitablev1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/service"
)

type createTableRequest struct {
	Name string `json:"name"`
}

func listTables(ctx context.Context) ([]*service.TableInfo, error) {
	return GetServicer(ctx).ListTables(), nil
}

func createTable(ctx context.Context, w http.ResponseWriter, input *createTableRequest) (*service.TableInfo, error) {

	s := GetServicer(ctx)

	t, err := s.CreateTable(input.Name)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return service.NewTableInfo(input.Name, t), nil
}

func getTable(ctx context.Context) (*service.TableInfo, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	t, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	return service.NewTableInfo(tableName, t), nil
}

func dropTable(ctx context.Context, w http.ResponseWriter) error {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	err := s.DropTable(tableName)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func compact(ctx context.Context) (*service.TableInfo, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	t, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	err = t.Compact()
	if err != nil {
		return nil, err
	}

	return service.NewTableInfo(tableName, t), nil
}
