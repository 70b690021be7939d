package ports

import (
	"errors"
	"fmt"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

var ErrNotFound = errors.New("not found")

var ErrConflict = errors.New("conflict")

// FailureKind classe les échecs d'un provider. Le client final ne voit jamais ce détail:
// il sert uniquement à piloter les fallbacks.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureProvider  FailureKind = "provider"
	FailureEmpty     FailureKind = "empty"
	FailureMalformed FailureKind = "malformed"
)

// ProviderError est l'erreur typée renvoyée par les adapters de providers.
type ProviderError struct {
	Provider domain.Provider
	Op       string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// KindOf renvoie le type d'échec, FailureTransport pour une erreur non typée.
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureTransport
}
