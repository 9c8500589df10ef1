package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy_OneRequestPerFiveSeconds(t *testing.T) {
	p := DefaultPolicy(ByEndpointAndClientIP)
	require.Equal(t, FixedWindow, p.Algorithm)
	require.Equal(t, 5*time.Second, p.Window)
	require.Equal(t, 1, p.MaxRequests)
	require.NoError(t, p.Validate())
}

func TestPolicy_Validate(t *testing.T) {
	valid := DefaultPolicy(ByEndpointOnly)

	cases := []struct {
		name  string
		edit  func(p *Policy)
		field string
	}{
		{"unknown strategy", func(p *Policy) { p.Strategy = "by_moon_phase" }, "strategy"},
		{"empty strategy", func(p *Policy) { p.Strategy = "" }, "strategy"},
		{"unknown algorithm", func(p *Policy) { p.Algorithm = "leaky" }, "algorithm"},
		{"zero window", func(p *Policy) { p.Window = 0 }, "window"},
		{"negative window", func(p *Policy) { p.Window = -time.Second }, "window"},
		{"zero max", func(p *Policy) { p.MaxRequests = 0 }, "max_requests"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.edit(&p)

			err := p.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidPolicy))

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			require.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestPolicy_ValidateAcceptsEmptyAlgorithm(t *testing.T) {
	p := Policy{Strategy: ByEndpointAndAPIKey, Window: time.Minute, MaxRequests: 10}
	require.NoError(t, p.Validate())
}
