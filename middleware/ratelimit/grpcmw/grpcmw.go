// Package grpcmw aplica o rate limit por endpoint em métodos unários gRPC.
//
// O "path" da requisição é o método completo (ex: /orders.v1.Orders/Create) e o
// endereço do cliente vem do peer da conexão.
package grpcmw

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"endpoint-gateway/middleware/ratelimit"
	"endpoint-gateway/middleware/ratelimit/domain"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// PolicyResolver retorna a política do método, se houver.
type PolicyResolver func(fullMethod string) (domain.Policy, bool)

// APIKeyMetadata é a chave de metadata lida pela estratégia ByEndpointAndAPIKey.
const APIKeyMetadata = "x-api-key"

// MethodTable valida as políticas no registro.
func MethodTable(methods map[string]domain.Policy) (PolicyResolver, error) {
	table := make(map[string]domain.Policy, len(methods))
	for m, p := range methods {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("method %q: %w", m, err)
		}
		table[m] = p
	}
	return func(fullMethod string) (domain.Policy, bool) {
		p, ok := table[fullMethod]
		return p, ok
	}, nil
}

type Options struct {
	// Stats recebe cada decisão; Path é o método completo e Method fica vazio.
	Stats domain.StatsStore
}

func UnaryServerInterceptor(engine ratelimit.Admitter, resolve PolicyResolver, opts Options) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if engine == nil || resolve == nil {
			return handler(ctx, req)
		}
		policy, ok := resolve(info.FullMethod)
		if !ok {
			return handler(ctx, req)
		}

		dec := engine.Admit(domain.Request{
			Path:       info.FullMethod,
			ClientAddr: peerAddr(ctx),
			APIKey:     firstMetadata(ctx, APIKeyMetadata),
		}, policy)

		if opts.Stats != nil {
			err := opts.Stats.Record(ctx, domain.StatsEvent{
				Key:      dec.Key,
				Strategy: policy.Strategy,
				Admitted: dec.Allowed,
				Path:     info.FullMethod,
				At:       time.Now(),
			})
			if err != nil {
				log.Warn().Err(err).Str("method", info.FullMethod).Msg("rate limit stats record failed")
			}
		}

		if dec.Allowed {
			return handler(ctx, req)
		}

		retryAfter := ratelimit.FormatRetryAfter(dec.RetryAfter)
		// sem stream no contexto (ex: testes) o header é descartado.
		_ = grpc.SetHeader(ctx, metadata.Pairs("retry-after", retryAfter))
		log.Debug().Str("method", info.FullMethod).Dur("retry_after", dec.RetryAfter).Msg("rate limit exceeded")
		return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded, retry after %ss", retryAfter)
	}
}

func peerAddr(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return ""
	}
	addr := p.Addr.String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}
