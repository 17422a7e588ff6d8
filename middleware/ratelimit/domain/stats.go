package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão do limiter do formulário de contato.
//
// Method/Path são strings genéricas para não depender de net/http.
//
// Observação: Key é o IP do cliente. Guardar por chave só com TrackKeys,
// senão o número de chaves no Redis cresce sem controle.
type StatsEvent struct {
	Key       Key
	Allowed   bool
	Remaining int

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do rate limit.
//
// O middleware trata erro como best-effort (não derruba a request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
