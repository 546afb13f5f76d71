package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
)

// MockServer is a configurable upstream stub for tests.
type MockServer struct {
	srv *httptest.Server

	// Rates returned to clients, keyed by currency code.
	Rates map[string]string
	// Base echoed back in the payload.
	Base string
	// FailStatus, when non-zero, makes every request fail with that status.
	FailStatus int
	// MalformedBody, when true, returns invalid JSON.
	MalformedBody bool

	requests atomic.Int64
}

// NewMockServer starts a stub upstream serving the given rates.
func NewMockServer(base string, rates map[string]string) *MockServer {
	m := &MockServer{Base: base, Rates: rates}
	m.srv = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *MockServer) handle(w http.ResponseWriter, _ *http.Request) {
	m.requests.Add(1)

	if m.FailStatus != 0 {
		http.Error(w, "upstream failure", m.FailStatus)
		return
	}
	if m.MalformedBody {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base": "EUR", "rates": `))
		return
	}

	rates := make(map[string]json.Number, len(m.Rates))
	for code, val := range m.Rates {
		rates[code] = json.Number(val)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"base":  m.Base,
		"rates": rates,
	})
}

// URL returns the stub endpoint.
func (m *MockServer) URL() string { return m.srv.URL }

// Requests returns the number of requests served.
func (m *MockServer) Requests() int64 { return m.requests.Load() }

// Close shuts the stub down.
func (m *MockServer) Close() { m.srv.Close() }
