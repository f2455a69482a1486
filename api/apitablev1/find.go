package apitablev1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/table"
)

type findRequest struct {
	Filter  map[string]interface{} `json:"filter"`
	Skip    int                    `json:"skip"`
	Limit   int                    `json:"limit"`
	Index   string                 `json:"index"`
	Value   *string                `json:"value"`
	Reverse bool                   `json:"reverse"`
}

// find writes matching rows as JSON lines. With index and value it looks up a
// single row, with only index it traverses the index in order, otherwise it
// scans the table applying filter.
func find(ctx context.Context, w http.ResponseWriter, input *findRequest) error {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	t, err := s.GetTable(tableName)
	if err != nil {
		return err
	}

	jsonWriter := json.NewEncoder(w)

	if input.Index != "" && input.Value != nil {
		row, err := t.Lookup(input.Index, *input.Value)
		if err != nil {
			return err
		}
		return jsonWriter.Encode(row)
	}

	skip := input.Skip
	limit := input.Limit
	write := func(row *table.Row) bool {
		if skip > 0 {
			skip--
			return true
		}
		err = jsonWriter.Encode(row)
		if err != nil {
			return false
		}
		if limit > 0 {
			limit--
			return limit > 0
		}
		return true
	}

	if input.Index != "" {
		traverseErr := t.TraverseIndex(input.Index, input.Reverse, write)
		if traverseErr != nil {
			return traverseErr
		}
		return err
	}

	findErr := t.Find(input.Filter, input.Skip, input.Limit, func(row *table.Row) bool {
		err = jsonWriter.Encode(row)
		return err == nil
	})
	if findErr != nil {
		return findErr
	}
	return err
}
