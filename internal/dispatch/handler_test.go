package dispatch

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/cartage-systems/cartage/internal/shared"
)

func newDispatchRouter(t *testing.T, store Store) http.Handler {
	t.Helper()
	svc, _ := newDispatchService(t, store)
	handler := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithSession(req.Context(), shared.SessionFromRequest(req))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/dispatch", handler.MountRoutes)
	return r
}

func TestFinalizeEmptyCartSucceeds(t *testing.T) {
	store := newMemoryDispatchStore()
	router := newDispatchRouter(t, store)

	req := httptest.NewRequest(http.MethodPost, "/dispatch/finalize",
		strings.NewReader(`{"report":{"manifest_number":"M100","dispatch_date":"2026-08-29"},"lines":[]}`))
	req.Header.Set(shared.SessionHeader, "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Contains(t, rec.Body.String(), "M100")
	require.Contains(t, store.reports, "M100")
	require.Empty(t, store.lines[store.reports["M100"].ID])
}

func TestFinalizeWithLines(t *testing.T) {
	store := newMemoryDispatchStore()
	router := newDispatchRouter(t, store)

	req := httptest.NewRequest(http.MethodPost, "/dispatch/finalize",
		strings.NewReader(`{"report":{"manifest_number":"M101","dispatch_date":"2026-08-29"},
			"lines":[{"invoice_number":"BINV01","value":200}]}`))
	req.Header.Set(shared.SessionHeader, "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.lines[store.reports["M101"].ID], 1)
}

func TestFinalizeMissingDispatchDate(t *testing.T) {
	store := newMemoryDispatchStore()
	router := newDispatchRouter(t, store)

	req := httptest.NewRequest(http.MethodPost, "/dispatch/finalize",
		strings.NewReader(`{"report":{"manifest_number":"M102"},"lines":[]}`))
	req.Header.Set(shared.SessionHeader, "alice")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
