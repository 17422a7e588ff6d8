package application

import (
	"context"
	"time"

	"meteo-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService limita requisições em voo no gateway (proxy para o
// renderizador do site), sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//   - AcquireTimeout <= 0: espera até o ctx da request encerrar.
//   - AcquireTimeout > 0: desiste depois do timeout.
//
// Retorna (release, ok). Com ok=false nenhuma vaga foi adquirida e release é no-op.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if !ok || release == nil {
		return func() {}, false
	}
	return release, true
}
