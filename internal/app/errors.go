package app

import (
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

var (
	ErrNotFound = ports.ErrNotFound
	ErrConflict = ports.ErrConflict
)

// CodedError porte un code d'erreur stable que l'API renvoie tel quel au client.
//
// Exemples de codes: invalid_request, unknown_provider, session_closed.
type CodedError struct {
	Code    string
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error { return e.Err }

func invalid(code, msg string) error {
	return &CodedError{Code: code, Message: msg}
}
