package application

import (
	"time"

	"meteo-gateway/middleware/ratelimit/domain"
)

// Service traduz o resultado da janela em uma decisão para a borda HTTP.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão.
type Service struct {
	Limiter domain.WindowLimiter
	Now     domain.Clock
}

func (s Service) Decide(key domain.Key) domain.Decision {
	if s.Limiter == nil {
		return domain.Decision{Allowed: true}
	}
	if key == "" {
		key = domain.UnknownKey
	}

	res := s.Limiter.Check(key)
	dec := domain.Decision{
		Allowed:   res.Allowed,
		Remaining: res.Remaining,
		ResetAt:   res.ResetAt,
	}
	if res.Allowed {
		return dec
	}

	dec.RetryAfter = retryAfter(res.ResetAt, s.now())
	return dec
}

// Reset libera a chave antes do fim da janela.
func (s Service) Reset(key domain.Key) {
	if s.Limiter == nil {
		return
	}
	s.Limiter.Reset(key)
}

func (s Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// retryAfter arredonda para cima em segundos inteiros, mínimo 1s.
func retryAfter(resetAt, now time.Time) time.Duration {
	d := resetAt.Sub(now)
	if d <= time.Second {
		return time.Second
	}
	if rem := d % time.Second; rem != 0 {
		d += time.Second - rem
	}
	return d
}
