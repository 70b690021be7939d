package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

// EpisodeQuery est ce que l'écran de détails sait d'un anime au moment de résoudre.
type EpisodeQuery struct {
	Title    domain.Title    `json:"title"`
	Genres   []string        `json:"genres"`
	Provider domain.Provider `json:"provider,omitempty"`
	// EpisodeCount est l'indice transmis à hianime (nombre d'épisodes connu côté catalogue).
	EpisodeCount string `json:"episodeCount,omitempty"`
}

// Resolution est le résultat d'une résolution d'épisodes, avec la trace des tentatives.
type Resolution struct {
	Provider domain.Provider `json:"provider"`
	Adult    bool            `json:"adult"`
	domain.EpisodeList
	Attempts []Attempt `json:"attempts"`
}

type EpisodeResolver struct {
	logger zerolog.Logger
	p      Providers
	bus    ports.EventBus
}

func NewEpisodeResolver(logger zerolog.Logger, p Providers) *EpisodeResolver {
	return &EpisodeResolver{logger: logger, p: p}
}

func (r *EpisodeResolver) WithEventBus(bus ports.EventBus) *EpisodeResolver {
	r.bus = bus
	return r
}

// ResolveEpisodes choisit la branche (adulte ou standard) puis déroule la chaîne de fallback
// correspondante. Il ne renvoie jamais d'erreur: l'échec se traduit par Found=false.
func (r *EpisodeResolver) ResolveEpisodes(ctx context.Context, q EpisodeQuery) Resolution {
	adult := IsAdultContent(q.Genres)
	provider := q.Provider
	if provider == "" {
		provider = domain.DefaultProvider
	}
	if adult {
		provider = domain.ProviderHentai
	}

	logger := r.logger.With().Str("provider", provider.String()).Str("title", q.Title.Primary()).Logger()

	var steps []Step[[]domain.CommonEpisode]
	switch provider {
	case domain.ProviderHentai:
		steps = r.hentaiSteps(q)
	case domain.ProviderHianime:
		steps = r.hianimeSteps(q)
	case domain.ProviderVoirAnimeVO, domain.ProviderVoirAnimeVF:
		steps = Sequential(Step[[]domain.CommonEpisode]{Name: provider.String(), Run: r.voiranime(q.Title.Display(), provider)})
	case domain.ProviderAnimeSama:
		steps = Sequential(Step[[]domain.CommonEpisode]{Name: provider.String(), Run: r.animesama(q.Title.Display())})
	}

	chain := NewChain(episodesEmpty, steps...)
	eps, _ := chain.Run(ctx, logger)

	res := Resolution{
		Provider:    provider,
		Adult:       adult,
		EpisodeList: domain.FoundEpisodes(eps),
		Attempts:    chain.Trace(),
	}
	logger.Info().Bool("found", res.Found).Int("episodes", len(res.Episodes)).Int("attempts", len(res.Attempts)).Msg("episodes resolved")

	if ctx.Err() == nil {
		publishJSON(r.bus, TopicEpisodesResolved, res)
	}
	return res
}

// hentaiSteps: catalogue (romaji) -> vide: catalogue (anglais); erreur: alt-stream x3.
func (r *EpisodeResolver) hentaiSteps(q EpisodeQuery) []Step[[]domain.CommonEpisode] {
	primary := q.Title.Primary()
	steps := []Step[[]domain.CommonEpisode]{
		{Name: "hentai-catalog", Run: r.hentaiCatalog(primary), OnEmpty: 1, OnFailed: 2},
		{Name: "hentai-catalog:english", Run: r.hentaiCatalog(q.Title.English), OnEmpty: StepExhausted, OnFailed: StepExhausted},
	}
	for i, suffix := range HentaiAltSuffixes {
		next := len(steps) + 1
		if i == len(HentaiAltSuffixes)-1 {
			next = StepExhausted
		}
		steps = append(steps, Step[[]domain.CommonEpisode]{
			Name:     "hentai-alt:" + suffix,
			Run:      r.hentaiAlt(primary, suffix),
			OnEmpty:  next,
			OnFailed: next,
		})
	}
	return steps
}

// hianimeSteps: une erreur sur la première tentative relance avec l'indice "0";
// un résultat vide est définitif. Sans indice, la première tentative est déjà "0"
// et il n'y a rien à relancer.
func (r *EpisodeResolver) hianimeSteps(q EpisodeQuery) []Step[[]domain.CommonEpisode] {
	title := q.Title.Display()
	hint := strings.TrimSpace(q.EpisodeCount)
	if hint == "" || hint == HianimeFallbackHint {
		return Sequential(Step[[]domain.CommonEpisode]{Name: "hianime:hint-" + HianimeFallbackHint, Run: r.hianime(title, HianimeFallbackHint)})
	}
	return []Step[[]domain.CommonEpisode]{
		{Name: "hianime", Run: r.hianime(title, hint), OnEmpty: StepExhausted, OnFailed: 1},
		{Name: "hianime:hint-" + HianimeFallbackHint, Run: r.hianime(title, HianimeFallbackHint), OnEmpty: StepExhausted, OnFailed: StepExhausted},
	}
}

func (r *EpisodeResolver) hentaiCatalog(title string) func(context.Context) ([]domain.CommonEpisode, error) {
	return func(ctx context.Context) ([]domain.CommonEpisode, error) {
		if strings.TrimSpace(title) == "" || r.p.Hentai == nil {
			return []domain.CommonEpisode{}, nil
		}
		resp, err := r.p.Hentai.Watch(ctx, r.p.sanitize(title))
		if err != nil {
			return nil, err
		}
		return NormalizeEpisodes(resp), nil
	}
}

func (r *EpisodeResolver) hentaiAlt(title, suffix string) func(context.Context) ([]domain.CommonEpisode, error) {
	return func(ctx context.Context) ([]domain.CommonEpisode, error) {
		if strings.TrimSpace(title) == "" || r.p.HentaiAlt == nil {
			return []domain.CommonEpisode{}, nil
		}
		resp, err := r.p.HentaiAlt.WatchSuffix(ctx, r.p.sanitize(title), suffix)
		if err != nil {
			return nil, err
		}
		return NormalizeEpisodes(resp), nil
	}
}

func (r *EpisodeResolver) hianime(title, hint string) func(context.Context) ([]domain.CommonEpisode, error) {
	return func(ctx context.Context) ([]domain.CommonEpisode, error) {
		if strings.TrimSpace(title) == "" || r.p.Hianime == nil {
			return []domain.CommonEpisode{}, nil
		}
		found, err := r.p.Hianime.Search(ctx, r.p.sanitize(title), hint)
		if err != nil {
			return nil, err
		}
		if found.Result == nil || found.Result.ID == "" {
			return []domain.CommonEpisode{}, nil
		}
		eps, err := r.p.Hianime.Episodes(ctx, found.Result.ID.String())
		if err != nil {
			return nil, err
		}
		return NormalizeEpisodes(eps), nil
	}
}

func (r *EpisodeResolver) voiranime(title string, lang domain.Provider) func(context.Context) ([]domain.CommonEpisode, error) {
	return func(ctx context.Context) ([]domain.CommonEpisode, error) {
		if strings.TrimSpace(title) == "" || r.p.VoirAnime == nil {
			return []domain.CommonEpisode{}, nil
		}
		found, err := r.p.VoirAnime.Search(ctx, r.p.sanitize(title))
		if err != nil {
			return nil, asProvider(err, lang)
		}
		entries := found.Results.VO
		if lang == domain.ProviderVoirAnimeVF {
			entries = found.Results.VF
		}
		if len(entries) == 0 || strings.TrimSpace(entries[0].Link) == "" {
			return []domain.CommonEpisode{}, nil
		}
		eps, err := r.p.VoirAnime.Episodes(ctx, entries[0].Link)
		if err != nil {
			return nil, asProvider(err, lang)
		}
		eps.Lang = lang
		return NormalizeEpisodes(eps), nil
	}
}

func (r *EpisodeResolver) animesama(title string) func(context.Context) ([]domain.CommonEpisode, error) {
	return func(ctx context.Context) ([]domain.CommonEpisode, error) {
		if strings.TrimSpace(title) == "" || r.p.AnimeSama == nil {
			return []domain.CommonEpisode{}, nil
		}
		found, err := r.p.AnimeSama.Search(ctx, r.p.sanitize(title))
		if err != nil {
			return nil, err
		}
		if len(found.Results) == 0 || strings.TrimSpace(found.Results[0].Link) == "" {
			return []domain.CommonEpisode{}, nil
		}
		seasons, err := r.p.AnimeSama.Episodes(ctx, found.Results[0].Link)
		if err != nil {
			return nil, err
		}
		return NormalizeEpisodes(seasons), nil
	}
}
