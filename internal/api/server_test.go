package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/fichas/internal/api"
	"github.com/taibuivan/fichas/internal/catalog"
	"github.com/taibuivan/fichas/internal/platform/config"
	"github.com/taibuivan/fichas/internal/session"
)

func newRouter(t *testing.T, checks []api.Check) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := catalog.NewMemoryStore([]*catalog.Record{
		{ID: "INS-001", Name: "Cimento", Facets: map[catalog.Field]string{catalog.FieldCategory: "Aglomerantes"}},
		{ID: "INS-002", Name: "Areia", Facets: map[catalog.Field]string{catalog.FieldCategory: "Agregados"}},
	}, nil)
	require.NoError(t, err)

	catalogService := catalog.NewService(catalog.DefaultSchema(), store, store, nil, false, logger)
	sessionService := session.NewService(session.NewMemoryRepository(time.Hour), catalogService, 20, logger)
	liveness, readiness := api.NewHealthHandlers(checks, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{Environment: "production", AllowedOrigins: []string{"https://fichas.example"}}
	return api.Router(ctx, cfg, logger, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Catalog:   catalog.NewHandler(catalogService),
		Session:   session.NewHandler(sessionService),
	})
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, nil)
	request.Header.Set("Origin", "https://fichas.example")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestRouter_Routes checks that every route group is mounted behind the middleware chain.
*/
func TestRouter_Routes(t *testing.T) {
	router := newRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"liveness", http.MethodGet, "/health", http.StatusOK, `"ok"`},
		{"readiness", http.MethodGet, "/ready", http.StatusOK, `"ready"`},
		{"facets", http.MethodGet, "/api/v1/catalog/facets", http.StatusOK, "Agregados"},
		{"records", http.MethodGet, "/api/v1/catalog/records?q=areia", http.StatusOK, "INS-002"},
		{"records_unknown_facet", http.MethodGet, "/api/v1/catalog/records?search=areia", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"images", http.MethodGet, "/api/v1/images/", http.StatusOK, "[]"},
		{"session", http.MethodPost, "/api/v1/sessions/", http.StatusCreated, "browsing"},
		{"unknown", http.MethodGet, "/api/v1/nothing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := serve(router, tt.method, tt.path)

			assert.Equal(t, tt.status, recorder.Code)
			assert.Contains(t, recorder.Body.String(), tt.body)
			assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
			assert.Equal(t, "https://fichas.example", recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

/*
TestReadiness_Degraded answers 503 and names the failing dependency.
*/
func TestReadiness_Degraded(t *testing.T) {
	router := newRouter(t, []api.Check{
		{Name: "sqlite", Ping: func(context.Context) error { return nil }},
		{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
	})

	recorder := serve(router, http.MethodGet, "/ready")

	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	body := recorder.Body.String()
	assert.True(t, strings.Contains(body, `"degraded"`))
	assert.Contains(t, body, "connection refused")
}

/*
TestRouter_SearchParameter filters records by the q parameter.
*/
func TestRouter_SearchParameter(t *testing.T) {
	router := newRouter(t, nil)

	recorder := serve(router, http.MethodGet, "/api/v1/catalog/records?q=areia")

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "INS-002")
	assert.NotContains(t, recorder.Body.String(), "INS-001")
}
