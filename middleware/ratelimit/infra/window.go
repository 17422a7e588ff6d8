package infra

import (
	"sync"
	"time"

	"meteo-gateway/middleware/ratelimit/domain"
)

const (
	DefaultMaxRequests  = 3
	DefaultWindow       = time.Minute
	DefaultCleanupEvery = 5 * time.Minute
)

// WindowStore conta requisições por chave em janelas fixas, só em memória.
//
// O estado não sobrevive a restart e não é compartilhado entre instâncias.
type WindowStore struct {
	mu           sync.Mutex
	entries      map[domain.Key]*windowEntry
	max          int
	window       time.Duration
	cleanupEvery time.Duration
	now          domain.Clock
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

type WindowOption func(*WindowStore)

func WithMaxRequests(n int) WindowOption {
	return func(s *WindowStore) { s.max = n }
}

func WithWindow(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.window = d }
}

// WithCleanupEvery define o intervalo do janitor. 0 desliga.
func WithCleanupEvery(d time.Duration) WindowOption {
	return func(s *WindowStore) { s.cleanupEvery = d }
}

func WithClock(c domain.Clock) WindowOption {
	return func(s *WindowStore) { s.now = c }
}

func NewWindowStore(opts ...WindowOption) *WindowStore {
	s := &WindowStore{
		entries:      make(map[domain.Key]*windowEntry),
		max:          DefaultMaxRequests,
		window:       DefaultWindow,
		cleanupEvery: DefaultCleanupEvery,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.max <= 0 {
		s.max = DefaultMaxRequests
	}
	if s.window <= 0 {
		s.window = DefaultWindow
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *WindowStore) Max() int                    { return s.max }
func (s *WindowStore) Window() time.Duration       { return s.window }
func (s *WindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Check implementa domain.WindowLimiter.
//
// Bloqueada, a chave não incrementa: count nunca passa de max.
func (s *WindowStore) Check(key domain.Key) domain.Result {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || now.After(ent.resetAt) {
		ent = &windowEntry{count: 1, resetAt: now.Add(s.window)}
		s.entries[key] = ent
		return domain.Result{Allowed: true, Remaining: s.max - 1, ResetAt: ent.resetAt}
	}

	if ent.count >= s.max {
		return domain.Result{Allowed: false, Remaining: 0, ResetAt: ent.resetAt}
	}

	ent.count++
	return domain.Result{Allowed: true, Remaining: s.max - ent.count, ResetAt: ent.resetAt}
}

// Reset implementa domain.WindowLimiter.
func (s *WindowStore) Reset(key domain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Len devolve o número de chaves rastreadas.
func (s *WindowStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup remove as entradas com janela expirada e devolve quantas removeu.
func (s *WindowStore) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if now.After(ent.resetAt) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// StartJanitor inicia uma goroutine que limpa janelas expiradas periodicamente.
// Pare cancelando o contexto.
func (s *WindowStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}
