package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/adapters/httpapi"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/adapters/memorybus"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/adapters/scraperapi"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/adapters/sqlite"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/app"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/buildinfo"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/config"
)

func main() {
	configPath := flag.String("config", os.Getenv("HIKARI_CONFIG"), "Fichier de configuration (toml/yaml/json, optionnel)")
	addr := flag.String("addr", "", "Adresse d'écoute (ex: 127.0.0.1:8080)")
	dbPath := flag.String("db", "", "Chemin SQLite (ex: hikari.db)")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "hikari-server").Logger()
	log.Logger = logger

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		zerolog.SetGlobalLevel(lvl)
	}

	logger.Info().Interface("build", buildinfo.Current()).Str("db", cfg.DBPath).Str("providers", cfg.ProvidersBaseURL).Msg("starting")

	ctx := context.Background()
	db, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer func() { _ = db.Close() }()

	bus := memorybus.New()
	defer bus.Close()

	client := scraperapi.New().WithBaseURL(cfg.ProvidersBaseURL).WithTimeout(cfg.ProvidersTimeout)
	hentai := client.Hentai()
	providers := app.Providers{
		Hentai:    hentai,
		HentaiAlt: hentai,
		Hianime:   client.Hianime(),
		VoirAnime: client.VoirAnime(),
		AnimeSama: client.AnimeSama(),
		Sanitize:  scraperapi.Sanitize,
	}

	episodes := app.NewEpisodeResolver(logger.With().Str("component", "episodes").Logger(), providers).WithEventBus(bus)
	streams := app.NewStreamResolver(logger.With().Str("component", "streams").Logger(), providers).WithEventBus(bus)
	favorites := app.NewFavoritesService(logger.With().Str("component", "favorites").Logger(), sqlite.NewFavoritesRepository(db.SQL)).WithEventBus(bus)
	anilist := app.NewAniListService().WithEndpoint(cfg.AniListEndpoint).WithCacheTTL(cfg.AniListCacheTTL)

	srv := httpapi.NewServer(logger, httpapi.Services{
		Episodes:  episodes,
		Streams:   streams,
		Sessions:  app.NewSessionRegistry(episodes, cfg.MaxSessions),
		AniList:   anilist,
		Favorites: favorites,
		Embeds:    app.NewEmbedResolver(logger.With().Str("component", "embeds").Logger()),
	}, bus)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server crashed")
			stop()
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("shutting down")

	// ferme les flux SSE avant Shutdown, sinon il attend leur fin
	bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
	logger.Info().Msg("bye")
}
