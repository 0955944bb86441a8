package servers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ruteri/sequencer-seeder/api"
	"github.com/ruteri/sequencer-seeder/api/handlers"
	"github.com/ruteri/sequencer-seeder/api/jsonrpc"
	"github.com/ruteri/sequencer-seeder/healthcheck"
	"github.com/ruteri/sequencer-seeder/liveness"
	"github.com/ruteri/sequencer-seeder/registry"
	"github.com/ruteri/sequencer-seeder/signature"
	"github.com/ruteri/sequencer-seeder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, enablePprof bool) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	engine, err := storage.NewMemoryEngine()
	require.NoError(t, err)
	store := storage.NewRecordStore(engine, logger)
	t.Cleanup(func() { store.Close() })

	handler := handlers.NewHandler(
		registry.NewRegistry(logger),
		store,
		liveness.NewStubClientFactory(),
		healthcheck.NoopHealthChecker{},
		signature.NewVerifier(),
		logger,
	)

	srv, err := New(&api.HTTPServerConfig{
		ExternalListenAddr:       "127.0.0.1:0",
		InternalListenAddr:       "127.0.0.1:0",
		EnablePprof:              enablePprof,
		Log:                      logger,
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, handler)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func rpc(t *testing.T, h http.Handler, method string) *jsonrpc.Response {
	body, err := json.Marshal(jsonrpc.Request{JSONRPC: jsonrpc.Version, ID: json.RawMessage("1"), Method: method})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp jsonrpc.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return &resp
}

func TestProbes(t *testing.T) {
	srv := newTestServer(t, false)
	router := srv.ExternalRouter()

	assert.Equal(t, http.StatusOK, get(t, router, "/livez").Code)
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)

	rr := get(t, router, "/drain")
	assert.JSONEq(t, `{"status":"draining"}`, rr.Body.String())
	assert.Equal(t, http.StatusServiceUnavailable, get(t, router, "/readyz").Code)
	assert.JSONEq(t, `{"status":"already draining"}`, get(t, router, "/drain").Body.String())

	// Readiness is shared by both listeners
	assert.Equal(t, http.StatusServiceUnavailable, get(t, srv.InternalRouter(), "/readyz").Code)

	assert.JSONEq(t, `{"status":"ready"}`, get(t, router, "/undrain").Body.String())
	assert.Equal(t, http.StatusOK, get(t, router, "/readyz").Code)
	assert.JSONEq(t, `{"status":"already ready"}`, get(t, router, "/undrain").Body.String())
}

func TestSurfaceSeparation(t *testing.T) {
	srv := newTestServer(t, false)

	resp := rpc(t, srv.InternalRouter(), "get_sequencing_infos")
	require.Nil(t, resp.Error)
	assert.JSONEq(t, `{"sequencing_infos":{}}`, string(resp.Result))

	resp = rpc(t, srv.ExternalRouter(), "get_sequencing_infos")
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.CodeMethodNotFound, resp.Error.Code)

	resp = rpc(t, srv.InternalRouter(), "register_sequencer")
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc.CodeMethodNotFound, resp.Error.Code)
}

func TestPprof(t *testing.T) {
	srv := newTestServer(t, true)
	assert.Equal(t, http.StatusOK, get(t, srv.InternalRouter(), "/debug/pprof/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, srv.ExternalRouter(), "/debug/pprof/").Code)

	srv = newTestServer(t, false)
	assert.Equal(t, http.StatusNotFound, get(t, srv.InternalRouter(), "/debug/pprof/").Code)
}

func TestRunAndShutdown(t *testing.T) {
	srv := newTestServer(t, false)
	srv.RunInBackground()

	done := make(chan struct{})
	go func() {
		srv.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
}
