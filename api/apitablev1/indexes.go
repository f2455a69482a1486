package apitablev1

import (
	"context"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/table"
)

type dropIndexRequest struct {
	Name string `json:"name"`
}

func listIndexes(ctx context.Context) ([]table.IndexOptions, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	t, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	return t.ListIndexes(), nil
}

func createIndex(ctx context.Context, w http.ResponseWriter, input *table.IndexOptions) (*table.IndexOptions, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	t, err := s.GetTable(tableName)
	if err != nil {
		return nil, err
	}

	if input.Name == "" {
		input.Name = input.Field
	}

	err = t.CreateIndex(*input)
	if err != nil {
		return nil, err
	}

	w.WriteHeader(http.StatusCreated)
	return input, nil
}

func dropIndex(ctx context.Context, w http.ResponseWriter, input *dropIndexRequest) error {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	t, err := s.GetTable(tableName)
	if err != nil {
		return err
	}

	err = t.DropIndex(input.Name)
	if err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}
