package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/httpjson"
)

// StreamsHandler: GET /streams/direct?url=<embed> -> {"url": "<mp4|m3u8>"}.
type StreamsHandler struct {
	embeds *app.EmbedResolver
}

func NewStreamsHandler(embeds *app.EmbedResolver) *StreamsHandler {
	return &StreamsHandler{embeds: embeds}
}

func (h *StreamsHandler) Routes(r chi.Router) {
	r.Get("/streams/direct", h.direct)
}

func (h *StreamsHandler) direct(w http.ResponseWriter, r *http.Request) {
	u, err := h.embeds.Resolve(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		writeAppError(w, err, http.StatusBadGateway)
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"url": u})
}
