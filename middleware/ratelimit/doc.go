// Package ratelimit fornece o adapter HTTP (net/http) do rate limit por endpoint.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: derivação de chave e engine de admissão, sem net/http
//   - infra: implementações concretas (janela fixa, token bucket, store em shards, stats)
//   - ratelimit (este pacote): middleware HTTP + resolução de política/endereço + tradução para status/headers
//   - ginmw, grpcmw: o mesmo contrato para gin e gRPC
//
// Fluxo:
//
//  1. Resolve a política da rota (PolicyTable, Protect); sem política, segue direto
//  2. Resolve o endereço do cliente (RemoteAddr ou XFF confiável)
//  3. Chama o engine (application.Service.Admit) para obter a decisão
//  4. Se bloqueado, responde 429 com Retry-After e não chama o handler
//  5. Se permitido, chama o próximo handler (ex: reverse proxy)
package ratelimit
