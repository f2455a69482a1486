package apitablev1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/table"
)

var ErrInvalidHandle = errors.New("invalid handle")

func getRowTable(ctx context.Context) (*table.Table, int, error) {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")

	handle, err := strconv.Atoi(box.GetUrlParameter(ctx, "handle"))
	if err != nil || handle < 0 {
		return nil, 0, ErrInvalidHandle
	}

	t, err := s.GetTable(tableName)
	if err != nil {
		return nil, 0, err
	}

	return t, handle, nil
}

func getHandle(ctx context.Context) (*table.Row, error) {

	t, handle, err := getRowTable(ctx)
	if err != nil {
		return nil, err
	}

	return t.Get(handle)
}

func replaceHandle(ctx context.Context, r *http.Request) (*table.Row, error) {

	t, handle, err := getRowTable(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	return t.Replace(handle, json.RawMessage(payload))
}

func removeHandle(ctx context.Context) (*table.Row, error) {

	t, handle, err := getRowTable(ctx)
	if err != nil {
		return nil, err
	}

	return t.Remove(handle)
}
