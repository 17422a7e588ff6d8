package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica o cliente (IP, header, etc).
type Key string

// UnknownKey é a chave usada quando nenhum header permite identificar o cliente.
const UnknownKey Key = "unknown"

// Clock devolve o instante atual. Injetado para que testes controlem o tempo.
type Clock func() time.Time

// Result é a resposta de uma janela para uma chave.
type Result struct {
	Allowed   bool
	Remaining int
	// ResetAt é o fim da janela ativa da chave.
	ResetAt time.Time
}

// WindowLimiter conta requisições por chave dentro de uma janela fixa.
//
// Check nunca falha: apenas decide. Reset apaga a entrada da chave sem
// condição (override administrativo).
type WindowLimiter interface {
	Check(Key) Result
	Reset(Key)
}

type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
