package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"github.com/reoring/relaxavro"
	"github.com/reoring/relaxavro/logical"
	"github.com/reoring/relaxavro/middleware"
	"github.com/reoring/relaxavro/schema"
)

var orderSchema = schema.MustParse(`{"type":"record","name":"Order","fields":[
	{"name":"qty","type":"int"},
	{"name":"day","type":{"type":"int","logicalType":"date"}}]}`)

func newHandler(t *testing.T) http.Handler {
	t.Helper()
	d, err := relaxavro.New(orderSchema)
	require.NoError(t, err)
	return middleware.DecodeJSON(d)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := middleware.RecordFromContext(r.Context())
		require.True(t, ok)
		io.WriteString(w, rec.Get("day").(logical.Date).String())
	}))
}

func TestDecodeJSON_StoresRecord(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"qty":"3","day":"2008-06-03"}`))
	newHandler(t).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "2008-06-03", rr.Body.String())
}

func TestDecodeJSON_RejectsWithPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"qty":2147483648,"day":1}`))
	newHandler(t).ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body struct {
		Error middleware.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, relaxavro.CodeNumericRange, body.Error.Code)
	require.Equal(t, "/qty", body.Error.Path)
	require.Contains(t, body.Error.Message, "out of range of int")
}

func TestRecordFromContext_Empty(t *testing.T) {
	_, ok := middleware.RecordFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.False(t, ok)
}
