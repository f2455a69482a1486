package apitablev1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/service"
)

// insert reads a stream of JSON documents and answers with one row per line,
// in the same order.
func insert(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	s := GetServicer(ctx)
	tableName := box.GetUrlParameter(ctx, "tableName")
	t, err := s.GetTable(tableName)
	if errors.Is(err, service.ErrorTableNotFound) {
		t, err = s.CreateTable(tableName)
	}
	if err != nil {
		return err
	}

	jsonReader := json.NewDecoder(r.Body)
	jsonWriter := json.NewEncoder(w)

	for i := 0; true; i++ {
		payload := json.RawMessage{}
		err := jsonReader.Decode(&payload)
		if err == io.EOF {
			if i == 0 {
				w.WriteHeader(http.StatusNoContent)
			}
			return nil
		}
		if err != nil {
			fmt.Println("ERROR: insert stream:", err.Error())
			return err
		}

		row, err := t.Insert(payload)
		if err != nil {
			return err
		}

		if i == 0 {
			w.WriteHeader(http.StatusCreated)
		}
		err = jsonWriter.Encode(row)
		if err != nil {
			fmt.Println("ERROR: insert stream:", err.Error())
			return err
		}
	}

	return nil
}
