package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

type (
	Cache interface {
		Get(string) ([]byte, bool)
		Set(string, []byte, time.Duration)
	}

	InMemory struct {
		cache *ristretto.Cache
	}
)

const bufferItems = 64

var _ Cache = (*InMemory)(nil)

// NewInMemory cria um cache onde o custo de cada item é o tamanho do corpo em bytes,
// então maxCost é o teto de memória.
func NewInMemory(numCounters, maxCost int64) (*InMemory, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	return &InMemory{cache: c}, nil
}

func (c *InMemory) Get(key string) ([]byte, bool) {
	i, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	v, ok := i.([]byte)
	if !ok {
		return nil, false
	}

	return v, true
}

func (c *InMemory) Set(key string, value []byte, expiry time.Duration) {
	if expiry <= 0 {
		return
	}
	_ = c.cache.SetWithTTL(key, value, int64(len(value)), expiry)
}

// Wait bloqueia até as escritas em buffer serem aplicadas.
func (c *InMemory) Wait() { c.cache.Wait() }

func (c *InMemory) Close() { c.cache.Close() }
