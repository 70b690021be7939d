package app

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

// StreamRequest identifie l'épisode choisi par l'utilisateur.
type StreamRequest struct {
	Episode  domain.CommonEpisode `json:"episode"`
	Provider domain.Provider      `json:"provider"`
	Adult    bool                 `json:"adult"`
}

type StreamResolver struct {
	logger zerolog.Logger
	p      Providers
	bus    ports.EventBus
}

func NewStreamResolver(logger zerolog.Logger, p Providers) *StreamResolver {
	return &StreamResolver{logger: logger, p: p}
}

func (r *StreamResolver) WithEventBus(bus ports.EventBus) *StreamResolver {
	r.bus = bus
	return r
}

// ResolveStream renvoie None quand rien n'est lisible, quelle que soit la cause.
func (r *StreamResolver) ResolveStream(ctx context.Context, req StreamRequest) mo.Option[domain.StreamDescriptor] {
	provider := req.Provider
	if provider == "" {
		provider = domain.DefaultProvider
	}
	if req.Adult {
		provider = domain.ProviderHentai
	}
	logger := r.logger.With().Str("provider", provider.String()).Str("episode", req.Episode.ID).Logger()

	var steps []Step[domain.StreamDescriptor]
	switch provider {
	case domain.ProviderHentai:
		steps = r.hentaiSteps(req.Episode)
	case domain.ProviderHianime:
		steps = Sequential(Step[domain.StreamDescriptor]{Name: "hianime-stream", Run: r.hianime(req.Episode.ID)})
	case domain.ProviderAnimeSama:
		steps = Sequential(Step[domain.StreamDescriptor]{Name: "animesama-stream", Run: r.animesama(req.Episode.ID)})
	case domain.ProviderVoirAnimeVO, domain.ProviderVoirAnimeVF:
		steps = Sequential(Step[domain.StreamDescriptor]{Name: "voiranime-stream", Run: r.voiranime(req.Episode.ID, provider)})
	}

	chain := NewChain(domain.StreamDescriptor.Empty, steps...)
	desc, ok := chain.Run(ctx, logger)
	logger.Info().Bool("found", ok).Int("attempts", len(chain.Trace())).Msg("stream resolved")
	if !ok {
		return mo.None[domain.StreamDescriptor]()
	}
	if ctx.Err() == nil {
		publishJSON(r.bus, TopicStreamResolved, desc)
	}
	return mo.Some(desc)
}

// Le slug est déjà une clé de lookup côté backend: on ne le passe pas par le sanitizer.
func (r *StreamResolver) hentaiTerm(ep domain.CommonEpisode) string {
	if s := strings.TrimSpace(ep.Slug); s != "" {
		return url.PathEscape(s)
	}
	if strings.TrimSpace(ep.Title) == "" {
		return ""
	}
	return r.p.sanitize(ep.Title)
}

// catalogue -> erreur: alt-stream x3; un catalogue vide est définitif.
func (r *StreamResolver) hentaiSteps(ep domain.CommonEpisode) []Step[domain.StreamDescriptor] {
	term := r.hentaiTerm(ep)
	steps := []Step[domain.StreamDescriptor]{{
		Name: "hentai-catalog",
		Run: func(ctx context.Context) (domain.StreamDescriptor, error) {
			if term == "" || r.p.Hentai == nil {
				return hentaiStreams(domain.HentaiResponse{}), nil
			}
			resp, err := r.p.Hentai.Watch(ctx, term)
			if err != nil {
				return domain.StreamDescriptor{}, err
			}
			return hentaiStreams(resp), nil
		},
		OnEmpty:  StepExhausted,
		OnFailed: 1,
	}}
	for i, suffix := range HentaiAltSuffixes {
		suffix := suffix
		next := len(steps) + 1
		if i == len(HentaiAltSuffixes)-1 {
			next = StepExhausted
		}
		steps = append(steps, Step[domain.StreamDescriptor]{
			Name: "hentai-alt:" + suffix,
			Run: func(ctx context.Context) (domain.StreamDescriptor, error) {
				if term == "" || r.p.HentaiAlt == nil {
					return hentaiStreams(domain.HentaiResponse{}), nil
				}
				resp, err := r.p.HentaiAlt.WatchSuffix(ctx, term, suffix)
				if err != nil {
					return domain.StreamDescriptor{}, err
				}
				return hentaiStreams(resp), nil
			},
			OnEmpty:  next,
			OnFailed: next,
		})
	}
	return steps
}

func hentaiStreams(resp domain.HentaiResponse) domain.StreamDescriptor {
	d := domain.StreamDescriptor{Provider: domain.ProviderHentai}
	if len(resp.Results) > 0 {
		d.Hentai = resp.Results[0].Streams
	}
	return d
}

func (r *StreamResolver) hianime(id string) func(context.Context) (domain.StreamDescriptor, error) {
	return func(ctx context.Context) (domain.StreamDescriptor, error) {
		d := domain.StreamDescriptor{Provider: domain.ProviderHianime}
		if strings.TrimSpace(id) == "" || r.p.Hianime == nil {
			return d, nil
		}
		resp, err := r.p.Hianime.Stream(ctx, id)
		if err != nil {
			return d, err
		}
		d.Hianime = resp.Results.StreamingInfo
		return d, nil
	}
}

func (r *StreamResolver) animesama(link string) func(context.Context) (domain.StreamDescriptor, error) {
	return func(ctx context.Context) (domain.StreamDescriptor, error) {
		d := domain.StreamDescriptor{Provider: domain.ProviderAnimeSama}
		if strings.TrimSpace(link) == "" || r.p.AnimeSama == nil {
			return d, nil
		}
		resp, err := r.p.AnimeSama.Stream(ctx, link)
		if err != nil {
			return d, err
		}
		streams := resp.Results
		d.AnimeSama = &streams
		return d, nil
	}
}

func (r *StreamResolver) voiranime(link string, lang domain.Provider) func(context.Context) (domain.StreamDescriptor, error) {
	return func(ctx context.Context) (domain.StreamDescriptor, error) {
		d := domain.StreamDescriptor{Provider: lang}
		if strings.TrimSpace(link) == "" || r.p.VoirAnime == nil {
			return d, nil
		}
		resp, err := r.p.VoirAnime.Stream(ctx, link)
		if err != nil {
			return d, asProvider(err, lang)
		}
		d.VoirAnime = resp.Results
		return d, nil
	}
}
