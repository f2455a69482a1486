package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/api/apitablev1"
	"github.com/fulldump/slotlist/database"
	"github.com/fulldump/slotlist/service"
	"github.com/fulldump/slotlist/table"
)

var ErrUnavailable = errors.New("temporary unavailable")

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

func InterceptorUnavailable(db *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status == database.StatusOpening || status == database.StatusClosing {
				box.SetError(ctx, fmt.Errorf("%w: %s", ErrUnavailable, status))
				return
			}
			next(ctx)
		}
	}
}

// errorStatus maps an error to its HTTP status and a human description.
func errorStatus(ctx context.Context, err error) (int, string) {

	var syntaxError *json.SyntaxError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "user is not authenticated"
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "the database is not operating, retry later"
	case errors.Is(err, box.ErrResourceNotFound):
		return http.StatusNotFound, fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String())
	case errors.Is(err, box.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method)
	case errors.Is(err, service.ErrorTableNotFound):
		return http.StatusNotFound, "table does not exist"
	case errors.Is(err, table.ErrHandleNotFound):
		return http.StatusNotFound, "handle is empty or out of range"
	case errors.Is(err, table.ErrIndexNotFound):
		return http.StatusNotFound, "index does not exist"
	case errors.Is(err, service.ErrorTableAlreadyExists),
		errors.Is(err, table.ErrIndexExists),
		errors.Is(err, table.ErrIndexConflict):
		return http.StatusConflict, "conflict with the current state"
	case errors.Is(err, service.ErrorInvalidTableName),
		errors.Is(err, apitablev1.ErrInvalidHandle),
		errors.Is(err, table.ErrInvalidPayload):
		return http.StatusBadRequest, "invalid input"
	case errors.As(err, &syntaxError),
		errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Malformed JSON"
	}

	return http.StatusInternalServerError, "Unexpected error"
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}
		w := box.GetResponse(ctx)

		status, description := errorStatus(ctx, err)
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(PrettyError{
			Message:     err.Error(),
			Description: description,
		})
	}
}
