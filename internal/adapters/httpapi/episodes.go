package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/httpjson"
)

type EpisodesHandler struct {
	episodes *app.EpisodeResolver
	streams  *app.StreamResolver
	sessions *app.SessionRegistry
}

func NewEpisodesHandler(episodes *app.EpisodeResolver, streams *app.StreamResolver, sessions *app.SessionRegistry) *EpisodesHandler {
	return &EpisodesHandler{episodes: episodes, streams: streams, sessions: sessions}
}

func (h *EpisodesHandler) Routes(r chi.Router) {
	r.Post("/episodes/resolve", h.resolve)
	if h.streams != nil {
		r.Post("/episodes/stream", h.stream)
	}
}

// resolveRequest accepte episodeCount en nombre ou en chaîne (AniList renvoie un entier).
type resolveRequest struct {
	Title        domain.Title      `json:"title"`
	Genres       []string          `json:"genres"`
	Provider     string            `json:"provider"`
	EpisodeCount domain.FlexString `json:"episodeCount"`
}

func (req resolveRequest) query() (app.EpisodeQuery, error) {
	p, err := domain.ParseProvider(req.Provider)
	if err != nil {
		return app.EpisodeQuery{}, &app.CodedError{Code: "unknown_provider", Message: err.Error()}
	}
	if req.Title.Primary() == "" && strings.TrimSpace(req.Title.English) == "" {
		return app.EpisodeQuery{}, &app.CodedError{Code: "invalid_request", Message: "title is required"}
	}
	return app.EpisodeQuery{
		Title:        req.Title,
		Genres:       req.Genres,
		Provider:     p,
		EpisodeCount: strings.TrimSpace(req.EpisodeCount.String()),
	}, nil
}

type resolveResponse struct {
	SessionID string `json:"sessionId,omitempty"`
	app.Resolution
}

func (h *EpisodesHandler) resolve(w http.ResponseWriter, r *http.Request) {
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
	httpjson.Write(w, http.StatusOK, resolveWithSession(r, h.episodes, h.sessions, q))
}

// resolveWithSession résout de façon synchrone; la session garde le résultat pour un
// éventuel changement de provider.
func resolveWithSession(r *http.Request, episodes *app.EpisodeResolver, sessions *app.SessionRegistry, q app.EpisodeQuery) resolveResponse {
	if sessions == nil {
		return resolveResponse{Resolution: episodes.ResolveEpisodes(r.Context(), q)}
	}
	sess := sessions.Create(q)
	res, _ := sess.Resolve(r.Context())
	return resolveResponse{SessionID: sess.ID, Resolution: res}
}

type streamRequest struct {
	Episode  domain.CommonEpisode `json:"episode"`
	Provider string               `json:"provider"`
	Adult    bool                 `json:"adult"`
}

func (h *EpisodesHandler) stream(w http.ResponseWriter, r *http.Request) {
	var req streamRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Episode.ID) == "" {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "invalid_request", "episode.id is required")
		return
	}
	p, err := domain.ParseProvider(req.Provider)
	if err != nil {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "unknown_provider", err.Error())
		return
	}

	desc, ok := h.streams.ResolveStream(r.Context(), app.StreamRequest{Episode: req.Episode, Provider: p, Adult: req.Adult}).Get()
	if !ok {
		httpjson.WriteError(w, http.StatusNotFound, "no stream available")
		return
	}
	httpjson.Write(w, http.StatusOK, desc)
}
