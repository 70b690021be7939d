package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/httpjson"
)

// SessionsHandler expose les sessions de résolution. Les résolutions lancées ici sont
// asynchrones: le client relit GET /sessions/{id} ou écoute /events.
type SessionsHandler struct {
	sessions *app.SessionRegistry
	logger   zerolog.Logger
}

func NewSessionsHandler(sessions *app.SessionRegistry, logger zerolog.Logger) *SessionsHandler {
	return &SessionsHandler{sessions: sessions, logger: logger}
}

func (h *SessionsHandler) Routes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Post("/{id}/provider", h.selectProvider)
		r.Delete("/{id}", h.delete)
	})
}

func (h *SessionsHandler) resolveAsync(sess *app.Session) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultRequestTimeout)
		defer cancel()
		if _, ok := sess.Resolve(ctx); !ok {
			h.logger.Debug().Str("session", sess.ID).Msg("resolution discarded")
		}
	}()
}

func (h *SessionsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	q, err := req.query()
	if err != nil {
		writeAppError(w, err, http.StatusBadRequest)
		return
	}
	sess := h.sessions.Create(q)
	snap := sess.Snapshot()
	h.resolveAsync(sess)
	httpjson.Write(w, http.StatusAccepted, snap)
}

func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err, http.StatusInternalServerError)
		return
	}
	httpjson.Write(w, http.StatusOK, sess.Snapshot())
}

func (h *SessionsHandler) selectProvider(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err, http.StatusInternalServerError)
		return
	}
	var body struct {
		Provider string `json:"provider"`
	}
	if err := httpjson.Decode(r, &body); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := domain.ParseProvider(body.Provider)
	if err != nil {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "unknown_provider", err.Error())
		return
	}
	sess.SetProvider(p)
	snap := sess.Snapshot()
	h.resolveAsync(sess)
	httpjson.Write(w, http.StatusAccepted, snap)
}

func (h *SessionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
