package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"folio/pkg/folio"
)

func newMiddlewareRouter(logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logRequests(logger))
	r.Use(recoverPanics(logger))
	return r
}

func TestLogRequests_RecordsRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := newMiddlewareRouter(logger)
	r.Get("/api/portfolios/{name}", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"name": chi.URLParam(req, "name")})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolios/main?x=1", nil)
	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	logged := buf.String()
	if !strings.Contains(logged, "route=/api/portfolios/{name}") {
		t.Errorf("expected route pattern in log, got %q", logged)
	}
	if !strings.Contains(logged, "status=200") {
		t.Errorf("expected status in log, got %q", logged)
	}
	if !strings.Contains(logged, `query="x=1"`) {
		t.Errorf("expected query in log, got %q", logged)
	}
}

func TestLogRequests_RecordsBusinessErrorCode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := newMiddlewareRouter(logger)
	r.Get("/fail", func(w http.ResponseWriter, req *http.Request) {
		writeErrorResponse(w, http.StatusBadRequest, folio.NewError(folio.ErrCodePortfolioNotFound, "portfolio ghost not found"))
	})

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/fail", nil))

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	logged := buf.String()
	if !strings.Contains(logged, "error_code=PORTFOLIO_NOT_FOUND") {
		t.Errorf("expected business error code in log, got %q", logged)
	}
	if !strings.Contains(logged, "level=WARN") {
		t.Errorf("expected 4xx logged at warn, got %q", logged)
	}
}

func TestRecoverPanics_Responds500(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := newMiddlewareRouter(logger)
	r.Get("/boom", func(w http.ResponseWriter, req *http.Request) {
		panic("kaput")
	})

	recorder := httptest.NewRecorder()
	r.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "internal server error") {
		t.Errorf("expected error body, got %q", recorder.Body.String())
	}
	logged := buf.String()
	if !strings.Contains(logged, "panic in handler") {
		t.Errorf("expected panic record, got %q", logged)
	}
	if !strings.Contains(logged, "kaput") {
		t.Errorf("expected panic value in log, got %q", logged)
	}
}
