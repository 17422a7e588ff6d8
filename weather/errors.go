package weather

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownEndpoint  = errors.New("unknown weather endpoint")
	ErrMissingQuery     = errors.New("missing location query")
	ErrThrottled        = errors.New("weather upstream budget exhausted")
	ErrResponseTooLarge = errors.New("weather response too large")
)

// UpstreamError carrega o status devolvido pelo provedor.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather upstream returned %d: %s", e.Status, e.Body)
}
