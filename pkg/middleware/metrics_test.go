package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type fakeRecorder struct {
	endpoint string
	status   int
}

func (f *fakeRecorder) RecordHTTPRequest(endpoint string, statusCode int, _ time.Duration) {
	f.endpoint = endpoint
	f.status = statusCode
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	rec := &fakeRecorder{}
	r := chi.NewRouter()
	r.Use(Metrics(rec))
	r.Get("/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/runs/42", nil))

	if rec.endpoint != "/runs/{id}" {
		t.Errorf("expected route pattern, got %s", rec.endpoint)
	}
	if rec.status != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.status)
	}
}

func TestMetricsDefaultStatus(t *testing.T) {
	rec := &fakeRecorder{}
	handler := Metrics(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))

	if rec.endpoint != "/plain" || rec.status != http.StatusOK {
		t.Errorf("unexpected record: %+v", rec)
	}
}
