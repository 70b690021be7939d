package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

// Services regroupe ce que le serveur expose. Un service nil désactive ses routes.
type Services struct {
	Episodes  *app.EpisodeResolver
	Streams   *app.StreamResolver
	Sessions  *app.SessionRegistry
	AniList   *app.AniListService
	Favorites *app.FavoritesService
	Embeds    *app.EmbedResolver
}

type Server struct {
	logger zerolog.Logger
	svc    Services
	bus    ports.EventBus
}

func NewServer(logger zerolog.Logger, svc Services, bus ports.EventBus) *Server {
	return &Server{logger: logger, svc: svc, bus: bus}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/openapi.json", s.handleOpenAPI)
		r.Get("/events", s.handleEvents)

		// le SSE ne doit pas être coupé par le timeout des requêtes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(defaultRequestTimeout))

			if s.svc.Episodes != nil {
				NewEpisodesHandler(s.svc.Episodes, s.svc.Streams, s.svc.Sessions).Routes(r)
				NewAnimeHandler(s.svc.AniList, s.svc.Episodes, s.svc.Sessions).Routes(r)
			}
			if s.svc.Sessions != nil {
				NewSessionsHandler(s.svc.Sessions, s.logger).Routes(r)
			}
			if s.svc.AniList != nil {
				NewAniListHandler(s.svc.AniList).Routes(r)
			}
			if s.svc.Favorites != nil {
				NewFavoritesHandler(s.svc.Favorites).Routes(r)
			}
			if s.svc.Embeds != nil {
				NewStreamsHandler(s.svc.Embeds).Routes(r)
			}
		})
	})

	return r
}
