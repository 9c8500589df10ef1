// utilitário pequeno para formatação de valores em headers/logs.

package ratelimit

import (
	"strconv"
	"strings"
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"
)

// formatRetryAfter arredonda para cima em segundos inteiros, mínimo 1
// (Retry-After: 0 faria o cliente tentar de novo na hora).
func formatRetryAfter(d time.Duration) string {
	secs := int64((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

// FormatRetryAfter é exportado para os adapters gin/gRPC.
func FormatRetryAfter(d time.Duration) string { return formatRetryAfter(d) }

func printableKey(k domain.Key) string {
	return strings.ReplaceAll(string(k), "\x1f", "|")
}
