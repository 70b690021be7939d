package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/buildinfo"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/httpjson"
)

// Une chaîne hentai complète peut enchaîner 5 appels de 15s.
const defaultRequestTimeout = 90 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, buildinfo.Current())
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}

// writeAppError traduit les erreurs de l'app; upstream est le statut des autres erreurs.
func writeAppError(w http.ResponseWriter, err error, upstream int) {
	var ce *app.CodedError
	switch {
	case errors.Is(err, app.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, app.ErrConflict):
		httpjson.WriteError(w, http.StatusConflict, "already exists")
	case errors.As(err, &ce):
		httpjson.WriteErrorCode(w, http.StatusBadRequest, ce.Code, ce.Error())
	default:
		httpjson.WriteError(w, upstream, err.Error())
	}
}

func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
