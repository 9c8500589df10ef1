package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"

	"gopkg.in/yaml.v3"
)

// RoutePolicy associa um path a uma política validada.
type RoutePolicy struct {
	Path   string
	Policy domain.Policy
}

type policyFile struct {
	Defaults policyEntry   `yaml:"defaults"`
	Routes   []policyEntry `yaml:"routes"`
}

type policyEntry struct {
	Path        string `yaml:"path"`
	Strategy    string `yaml:"strategy"`
	Algorithm   string `yaml:"algorithm"`
	Window      string `yaml:"window"`
	// ponteiro: max_requests: 0 explícito precisa chegar ao Validate
	MaxRequests *int   `yaml:"max_requests"`
}

// LoadPolicies lê e valida o arquivo de políticas.
func LoadPolicies(path string) ([]RoutePolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policies file: %w", err)
	}
	return ParsePolicies(data)
}

// ParsePolicies interpreta o YAML de políticas. Campos omitidos herdam de
// "defaults", que por sua vez herda uma requisição a cada 5s por rota+IP.
// O resultado vem ordenado por path.
//
//	defaults:
//	  strategy: endpoint_ip
//	routes:
//	  - path: /orders
//	    window: 10s
//	    max_requests: 3
func ParsePolicies(data []byte) ([]RoutePolicy, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse policies: %w", err)
	}

	base, err := f.Defaults.apply(domain.DefaultPolicy(domain.ByEndpointAndClientIP))
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	seen := make(map[string]bool, len(f.Routes))
	out := make([]RoutePolicy, 0, len(f.Routes))
	for _, entry := range f.Routes {
		path := strings.TrimSpace(entry.Path)
		if path == "" {
			return nil, errors.New("route with empty path")
		}
		if !strings.HasPrefix(path, "/") {
			return nil, fmt.Errorf("route %q: path must begin with '/'", path)
		}
		if seen[path] {
			return nil, fmt.Errorf("duplicate path definition found: %s", path)
		}
		seen[path] = true

		p, err := entry.apply(base)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("route %q: %w", path, err)
		}
		out = append(out, RoutePolicy{Path: path, Policy: p})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (e policyEntry) apply(base domain.Policy) (domain.Policy, error) {
	p := base
	if s := strings.TrimSpace(e.Strategy); s != "" {
		p.Strategy = domain.Strategy(s)
	}
	if a := strings.TrimSpace(e.Algorithm); a != "" {
		p.Algorithm = domain.Algorithm(a)
	}
	if w := strings.TrimSpace(e.Window); w != "" {
		d, err := time.ParseDuration(w)
		if err != nil {
			return domain.Policy{}, fmt.Errorf("invalid window %q: %w", w, err)
		}
		p.Window = d
	}
	if e.MaxRequests != nil {
		p.MaxRequests = *e.MaxRequests
	}
	return p, nil
}

// Table converte para o formato aceito por ratelimit.NewPolicyTable.
func Table(routes []RoutePolicy) map[string]domain.Policy {
	out := make(map[string]domain.Policy, len(routes))
	for _, r := range routes {
		out[r.Path] = r.Policy
	}
	return out
}
