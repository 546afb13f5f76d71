package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Latest(t *testing.T) {
	mock := NewMockServer("EUR", map[string]string{
		"usd": "1.0876",
		"GBP": "0.8652",
		"JPY": "163.25",
	})
	defer mock.Close()

	client := New(mock.URL(), Options{})
	rates, err := client.Latest(context.Background(), "EUR")
	require.NoError(t, err)
	require.Len(t, rates, 3)

	// Codes are normalized to upper case and values keep their exact text.
	assert.Equal(t, "1.0876", rates["USD"].String())
	assert.Equal(t, "0.8652", rates["GBP"].String())
	assert.Equal(t, "163.25", rates["JPY"].String())
	assert.EqualValues(t, 1, mock.Requests())
}

func TestClient_Latest_UpstreamError(t *testing.T) {
	mock := NewMockServer("EUR", nil)
	defer mock.Close()
	mock.FailStatus = http.StatusBadGateway

	client := New(mock.URL(), Options{})
	_, err := client.Latest(context.Background(), "EUR")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadGateway, provErr.Status)
	assert.Equal(t, "latest", provErr.Operation)
}

func TestClient_Latest_MalformedBody(t *testing.T) {
	mock := NewMockServer("EUR", map[string]string{"USD": "1.09"})
	defer mock.Close()
	mock.MalformedBody = true

	client := New(mock.URL(), Options{})
	_, err := client.Latest(context.Background(), "EUR")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestClient_Latest_MissingRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base": "EUR"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, Options{})
	_, err := client.Latest(context.Background(), "EUR")
	assert.ErrorIs(t, err, ErrBadResponse)
}

func TestClient_Latest_QueryParameters(t *testing.T) {
	var gotBase, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBase = r.URL.Query().Get("base")
		gotKey = r.URL.Query().Get("access_key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base": "EUR", "rates": {"USD": 1.09}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, Options{APIKey: "sekrit"})
	_, err := client.Latest(context.Background(), "EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", gotBase)
	assert.Equal(t, "sekrit", gotKey)
}

func TestClient_Latest_ConnectionRefused(t *testing.T) {
	mock := NewMockServer("EUR", nil)
	url := mock.URL()
	mock.Close()

	client := New(url, Options{Timeout: time.Second})
	_, err := client.Latest(context.Background(), "EUR")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Latest_ContextCanceled(t *testing.T) {
	mock := NewMockServer("EUR", map[string]string{"USD": "1.09"})
	defer mock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := New(mock.URL(), Options{})
	_, err := client.Latest(ctx, "EUR")
	assert.Error(t, err)
}

func TestClient_Latest_Throttled(t *testing.T) {
	mock := NewMockServer("EUR", map[string]string{"USD": "1.09"})
	defer mock.Close()

	client := New(mock.URL(), Options{MaxRequestsPerSecond: 1})

	// The single burst token admits the first request.
	_, err := client.Latest(context.Background(), "EUR")
	require.NoError(t, err)

	// With the token spent, a canceled wait surfaces the throttle sentinel
	// without an upstream round trip.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Latest(ctx, "EUR")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrThrottled)

	var provErr *Error
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "latest", provErr.Operation)
	assert.EqualValues(t, 1, mock.Requests())
}

func TestClient_HealthCheck(t *testing.T) {
	mock := NewMockServer("EUR", map[string]string{"USD": "1.09"})
	defer mock.Close()

	client := New(mock.URL(), Options{})
	assert.NoError(t, client.HealthCheck(context.Background()))

	mock.FailStatus = http.StatusServiceUnavailable
	err := client.HealthCheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	// Client errors still count as reachable.
	mock.FailStatus = http.StatusNotFound
	assert.NoError(t, client.HealthCheck(context.Background()))
}
