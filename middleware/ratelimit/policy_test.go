package ratelimit

import (
	"errors"
	"net/http"
	"testing"

	"endpoint-gateway/middleware/ratelimit/domain"
	"endpoint-gateway/middleware/ratelimit/infra"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestNewPolicyTable_RejectsInvalidPolicy(t *testing.T) {
	bad := domain.DefaultPolicy(domain.ByEndpointOnly)
	bad.MaxRequests = 0

	_, err := NewPolicyTable(map[string]domain.Policy{
		"/ok":  domain.DefaultPolicy(domain.ByEndpointOnly),
		"/bad": bad,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, domain.ErrInvalidPolicy))
	require.Contains(t, err.Error(), `"/bad"`)
}

func TestProtect_FailsFastOnInvalidPolicy(t *testing.T) {
	_, err := Protect(domain.Policy{Strategy: "nope", Window: 1, MaxRequests: 1}, Options{})

	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	require.Equal(t, "strategy", cfgErr.Field)
}

func TestProtect_DecoratesSingleChiRoute(t *testing.T) {
	limit, err := Protect(domain.DefaultPolicy(domain.ByEndpointAndClientIP), Options{
		Engine: NewEngine(infra.NewStore()),
	})
	require.NoError(t, err)

	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	r := chi.NewRouter()
	r.With(limit).Get("/orders", ok)
	r.Get("/health", ok)

	require.Equal(t, http.StatusOK, serve(r, "/orders", "10.0.0.1:1", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, "/orders", "10.0.0.1:1", nil).Code)
	require.Equal(t, http.StatusOK, serve(r, "/orders", "10.0.0.2:1", nil).Code)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, serve(r, "/health", "10.0.0.1:1", nil).Code)
	}
}
