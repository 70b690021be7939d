package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/httpjson"
)

type AniListHandler struct {
	svc *app.AniListService
}

func NewAniListHandler(svc *app.AniListService) *AniListHandler {
	return &AniListHandler{svc: svc}
}

func (h *AniListHandler) Routes(r chi.Router) {
	r.Route("/anilist", func(r chi.Router) {
		r.Get("/search", h.search)
		r.Get("/popular", h.page(h.svc.Popular))
		r.Get("/trending", h.page(h.svc.Trending))
		r.Get("/top", h.page(h.svc.TopRated))
		r.Get("/genres", h.genres)
		r.Get("/genres/{genre}", h.byGenre)
		r.Get("/media/{id}", h.media)
	})
}

func (h *AniListHandler) search(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAppError(w, err, http.StatusBadGateway)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

func (h *AniListHandler) page(fn func(ctx context.Context, page, perPage int) ([]app.AniListMedia, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r.Context(), queryInt(r, "page"), queryInt(r, "perPage"))
		if err != nil {
			writeAppError(w, err, http.StatusBadGateway)
			return
		}
		httpjson.Write(w, http.StatusOK, res)
	}
}

func (h *AniListHandler) genres(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Genres(r.Context())
	if err != nil {
		writeAppError(w, err, http.StatusBadGateway)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

func (h *AniListHandler) byGenre(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ByGenre(r.Context(), chi.URLParam(r, "genre"), queryInt(r, "page"), queryInt(r, "perPage"))
	if err != nil {
		writeAppError(w, err, http.StatusBadGateway)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

func (h *AniListHandler) media(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "invalid_request", "invalid media id")
		return
	}
	res, err := h.svc.Details(r.Context(), id)
	if err != nil {
		writeAppError(w, err, http.StatusBadGateway)
		return
	}
	httpjson.Write(w, http.StatusOK, res)
}

// AnimeHandler enchaîne fiche AniList et résolution d'épisodes (écran de détails).
type AnimeHandler struct {
	anilist  *app.AniListService
	episodes *app.EpisodeResolver
	sessions *app.SessionRegistry
}

func NewAnimeHandler(anilist *app.AniListService, episodes *app.EpisodeResolver, sessions *app.SessionRegistry) *AnimeHandler {
	return &AnimeHandler{anilist: anilist, episodes: episodes, sessions: sessions}
}

func (h *AnimeHandler) Routes(r chi.Router) {
	if h.anilist == nil {
		return
	}
	r.Post("/anime/{id}/episodes", h.episodesFor)
}

func (h *AnimeHandler) episodesFor(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "invalid_request", "invalid media id")
		return
	}
	p, err := domain.ParseProvider(strings.TrimSpace(r.URL.Query().Get("provider")))
	if err != nil {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "unknown_provider", err.Error())
		return
	}
	media, err := h.anilist.Details(r.Context(), id)
	if err != nil {
		writeAppError(w, err, http.StatusBadGateway)
		return
	}
	q := app.EpisodeQueryFromMedia(media, p)
	httpjson.Write(w, http.StatusOK, resolveWithSession(r, h.episodes, h.sessions, q))
}
