// Package httpjson regroupe les helpers JSON des handlers HTTP.
package httpjson

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	Write(w, status, errorBody{Error: msg})
}

func WriteErrorCode(w http.ResponseWriter, status int, code, msg string) {
	Write(w, status, errorBody{Error: msg, Code: code})
}

// Decode lit un corps JSON (1 Mo max). Un corps vide est une erreur.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}
