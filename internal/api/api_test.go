package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"ip-api-client/internal/resolver"
	"ip-api-client/pkg/ipapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRemote struct{}

func (echoRemote) Query(_ context.Context, addr netip.Addr) (*ipapi.Result, error) {
	return &ipapi.Result{Query: addr.String()}, nil
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/ip?ip=8.8.8.8", nil)
	assert.Equal(t, "8.8.8.8", getClientIP(r))

	r = httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.Header.Set("x-forwarded-for", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", getClientIP(r))

	r = httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.Header.Set("x-real-ip", "203.0.113.8")
	assert.Equal(t, "203.0.113.8", getClientIP(r))

	r = httptest.NewRequest(http.MethodGet, "/ip", nil)
	r.RemoteAddr = "198.51.100.2:4711"
	assert.Equal(t, "198.51.100.2", getClientIP(r))
}

func TestIPRoute(t *testing.T) {
	t.Parallel()

	res := resolver.New(nil, echoRemote{}, nil, nil, nil)
	mux := BuildRoutes(res, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ip?ip=8.8.8.8", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body ipapi.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "8.8.8.8", body.Query)
	assert.Equal(t, resolver.SourceRemote, rec.Header().Get("x-result-source"))
}

func TestIPRouteInvalidAddress(t *testing.T) {
	t.Parallel()

	res := resolver.New(nil, echoRemote{}, nil, nil, nil)
	mux := BuildRoutes(res, nil)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ip?ip=not-an-ip", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
