// Package middleware decodes JSON request bodies against a record schema at
// HTTP boundaries. Framework adapters live in the gin and echo subdirectories.
package middleware

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/relaxavro"
)

// ctxKeyRecord is the context key for the decoded request record.
type ctxKeyRecord struct{}

// ContextWithRecord attaches a decoded record to the context.
func ContextWithRecord(ctx context.Context, r *relaxavro.Record) context.Context {
	return context.WithValue(ctx, ctxKeyRecord{}, r)
}

// RecordFromContext retrieves the record stored by ContextWithRecord.
func RecordFromContext(ctx context.Context) (*relaxavro.Record, bool) {
	r, ok := ctx.Value(ctxKeyRecord{}).(*relaxavro.Record)
	return r, ok && r != nil
}

// ErrorBody is the JSON shape of a rejected request.
type ErrorBody struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ErrorPayload shapes a decode error for JSON responses.
func ErrorPayload(err error) map[string]any {
	if de, ok := relaxavro.AsDecodeError(err); ok {
		path := de.Path
		if path == "" {
			path = "/"
		}
		return map[string]any{"error": ErrorBody{Code: de.Code, Path: path, Message: de.Error()}}
	}
	return map[string]any{"error": ErrorBody{Code: relaxavro.CodeParseError, Path: "/", Message: err.Error()}}
}

// DecodeJSON decodes the request body with d and stores the record in the
// request context. Bodies that fail to decode get 400 with ErrorPayload.
func DecodeJSON(d *relaxavro.Decoder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, err := d.DecodeReader(r.Context(), r.Body)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithRecord(r.Context(), rec)))
		})
	}
}

// WriteError writes ErrorPayload(err) with status 400.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorPayload(err))
}
