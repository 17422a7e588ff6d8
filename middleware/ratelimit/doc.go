// Package ratelimit fornece adapters HTTP (net/http) para o rate limit do
// formulário de contato e para o limite de concorrência do gateway.
//
// Camadas:
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny, acquire/timeout) sem net/http
//   - infra: implementações concretas (janela fixa em memória, semáforo, stats)
//   - ratelimit (este pacote): middlewares HTTP, extração de chave, tradução para status/headers
//
// Fluxo do POST /api/contact:
//
//  1. Extrai o identificador do cliente (X-Forwarded-For, X-Real-IP ou "unknown")
//  2. Pede a decisão para a camada application
//  3. Se bloqueado, responde 429 com Retry-After até o fim da janela
//  4. Se permitido, chama o próximo handler (proxy para o renderizador)
package ratelimit
