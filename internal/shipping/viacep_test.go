package shipping

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEstimator(t *testing.T, handler http.HandlerFunc) *viaCEPEstimator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &viaCEPEstimator{
		httpClient:            &http.Client{Timeout: 2 * time.Second},
		baseURL:               srv.URL,
		freeShippingThreshold: 150.0,
	}
}

func TestEstimate_FreeShippingThreshold(t *testing.T) {
	// Threshold must win before any CEP resolution happens.
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no lookup expected for free shipping")
	})

	quote, err := est.Estimate(context.Background(), "99999-999", 150.0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, quote.Fee)
	assert.Equal(t, 5, quote.EtaDays)
}

func TestEstimate_KnownRegion(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "01310100")
		w.Write([]byte(`{"cep":"01310-100","uf":"SP"}`))
	})

	quote, err := est.Estimate(context.Background(), "01310-100", 50.0)
	require.NoError(t, err)
	assert.Equal(t, 10.0, quote.Fee)
	assert.Equal(t, 7, quote.EtaDays)
}

func TestEstimate_SlowRegionEta(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uf":"BA"}`))
	})

	quote, err := est.Estimate(context.Background(), "40000000", 50.0)
	require.NoError(t, err)
	assert.Equal(t, 22.0, quote.Fee)
	assert.Equal(t, 10, quote.EtaDays)
}

func TestEstimate_UnlistedRegionDefaultFee(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"uf":"AC"}`))
	})

	quote, err := est.Estimate(context.Background(), "69900000", 50.0)
	require.NoError(t, err)
	assert.Equal(t, 20.0, quote.Fee)
}

func TestEstimate_UnknownCEPFallback(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"erro": true}`))
	})

	quote, err := est.Estimate(context.Background(), "00000000", 50.0)
	require.NoError(t, err, "unknown CEP is never an error")
	assert.Equal(t, 15.0, quote.Fee)
	assert.Equal(t, 10, quote.EtaDays)
}

func TestEstimate_MalformedCEPFallback(t *testing.T) {
	est := newTestEstimator(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no lookup expected for malformed CEP")
	})

	quote, err := est.Estimate(context.Background(), "123", 50.0)
	require.NoError(t, err)
	assert.Equal(t, 15.0, quote.Fee)
}

func TestEstimate_TransportErrorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from now on

	est := &viaCEPEstimator{
		httpClient:            &http.Client{Timeout: time.Second},
		baseURL:               srv.URL,
		freeShippingThreshold: 150.0,
	}

	quote, err := est.Estimate(context.Background(), "01310100", 50.0)
	require.NoError(t, err, "transport failure degrades to fallback quote")
	assert.Equal(t, 15.0, quote.Fee)
	assert.Equal(t, 10, quote.EtaDays)
}

func TestFetch_RetriesOnTransportError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Kill the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`{"uf":"RJ"}`))
	}))
	t.Cleanup(srv.Close)

	est := &viaCEPEstimator{
		httpClient:            &http.Client{Timeout: 2 * time.Second},
		baseURL:               srv.URL,
		freeShippingThreshold: 150.0,
	}

	quote, err := est.Estimate(context.Background(), "20000000", 50.0)
	require.NoError(t, err)
	assert.Equal(t, 12.0, quote.Fee)
	assert.Equal(t, 2, calls)
}
