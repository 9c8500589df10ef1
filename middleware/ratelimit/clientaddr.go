package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientAddrFunc resolve o endereço do cliente. "" significa não resolvido.
type ClientAddrFunc func(r *http.Request) string

// DefaultClientAddrFunc usa o endereço de transporte (RemoteAddr).
//
// Só confie no X-Forwarded-For atrás de um proxy confiável: o header é
// controlado pelo cliente.
func DefaultClientAddrFunc(trustXFF bool) ClientAddrFunc {
	return func(r *http.Request) string {
		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		remote := strings.TrimSpace(r.RemoteAddr)
		host, _, err := net.SplitHostPort(remote)
		if err == nil && host != "" {
			return host
		}
		return remote
	}
}
