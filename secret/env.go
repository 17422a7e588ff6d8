package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
)

var ErrNotFound = errors.New("secret not found")

// EnvSource lê o segredo de uma variável de ambiente.
type EnvSource struct{}

func NewEnvSource() *EnvSource { return &EnvSource{} }

func (s *EnvSource) Get(_ context.Context, name string) (Secret, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return Secret(v), nil
}
