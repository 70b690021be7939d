package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/httpjson"
)

type FavoritesHandler struct {
	svc *app.FavoritesService
}

func NewFavoritesHandler(svc *app.FavoritesService) *FavoritesHandler {
	return &FavoritesHandler{svc: svc}
}

func (h *FavoritesHandler) Routes(r chi.Router) {
	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.add)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.remove)
	})
}

func (h *FavoritesHandler) list(w http.ResponseWriter, r *http.Request) {
	favs, err := h.svc.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, favs)
}

func (h *FavoritesHandler) add(w http.ResponseWriter, r *http.Request) {
	var fav domain.Favorite
	if err := httpjson.Decode(r, &fav); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}
	created, err := h.svc.Add(r.Context(), fav)
	if err != nil {
		writeAppError(w, err, http.StatusInternalServerError)
		return
	}
	httpjson.Write(w, http.StatusCreated, created)
}

func (h *FavoritesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}
	fav, err := h.svc.IsFavorite(r.Context(), id)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]any{"id": id, "favorite": fav})
}

func (h *FavoritesHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(r, "id")
	if !ok {
		httpjson.WriteErrorCode(w, http.StatusBadRequest, "invalid_request", "invalid id")
		return
	}
	if err := h.svc.Remove(r.Context(), id); err != nil {
		writeAppError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
