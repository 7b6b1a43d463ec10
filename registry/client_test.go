package registry_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reoring/relaxavro/registry"
)

const tickSchema = `{"type":"record","name":"Tick","namespace":"demo","fields":[{"name":"at","type":{"type":"long","logicalType":"timestamp-millis"}}]}`

func newServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/schemas/ids/7", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		require.Equal(t, "application/vnd.schemaregistry.v1+json", r.Header.Get("Accept"))
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "alice", user)
		require.Equal(t, "secret", pass)
		w.Write([]byte(`{"schema":` + strconv.Quote(tickSchema) + `}`))
	})
	mux.HandleFunc("/subjects/ticks-value/versions/latest", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"subject":"ticks-value","id":7,"version":3,"schema":` + strconv.Quote(tickSchema) + `}`))
	})
	mux.HandleFunc("/subjects/proto-value/versions/1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"subject":"proto-value","id":9,"version":1,"schemaType":"PROTOBUF","schema":"syntax = \"proto3\";"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := registry.NewClient(registry.Config{})
	require.Error(t, err)
}

func TestSchemaByID_Caches(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c, err := registry.NewClient(registry.Config{URL: srv.URL + "/", Username: "alice", Password: "secret"})
	require.NoError(t, err)

	s, err := c.SchemaByID(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "demo.Tick", s.FullName())

	again, err := c.SchemaByID(context.Background(), 7)
	require.NoError(t, err)
	require.Same(t, s, again)
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestLatestSchema(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c, err := registry.NewClient(registry.Config{URL: srv.URL})
	require.NoError(t, err)

	md, err := c.LatestSchema(context.Background(), "ticks-value")
	require.NoError(t, err)
	require.Equal(t, 7, md.ID)
	require.Equal(t, 3, md.Version)
	require.Equal(t, "demo.Tick", md.Schema.FullName())

	// Served from the cache populated by the subject lookup.
	s, err := c.SchemaByID(context.Background(), 7)
	require.NoError(t, err)
	require.Same(t, md.Schema, s)
	require.Zero(t, atomic.LoadInt32(&hits))
}

func TestErrors(t *testing.T) {
	var hits int32
	srv := newServer(t, &hits)
	c, err := registry.NewClient(registry.Config{URL: srv.URL})
	require.NoError(t, err)

	_, err = c.SchemaVersion(context.Background(), "proto-value", "1")
	require.ErrorIs(t, err, registry.ErrUnsupportedSchemaType)

	_, err = c.SchemaByID(context.Background(), 404)
	var se *registry.StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusNotFound, se.StatusCode)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.LatestSchema(ctx, "ticks-value")
	require.ErrorIs(t, err, context.Canceled)
}
