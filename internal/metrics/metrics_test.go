package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/nikolayk812/storefront/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareLabelsByRoute(t *testing.T) {
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/cart/{email}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/cart/a@example.com", "/cart/b@example.com"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	got := testutil.ToFloat64(m.RequestTotal.WithLabelValues(http.MethodGet, "/cart/{email}", "418"))
	assert.Equal(t, float64(2), got)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.RequestInFlight))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := metrics.New(), metrics.New()

	a.Placements.WithLabelValues(metrics.OutcomePlaced).Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.Placements.WithLabelValues(metrics.OutcomePlaced)))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Placements.WithLabelValues(metrics.OutcomePlaced)))
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.CartMutations.WithLabelValues("add").Add(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `storefront_cart_mutations_total{op="add"} 3`))
}
