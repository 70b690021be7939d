package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

// Les termes passés aux providers sont déjà "sanitized" (voir scraperapi.Sanitize).

type HentaiCatalog interface {
	Watch(ctx context.Context, term string) (domain.HentaiResponse, error)
}

type HentaiAltStream interface {
	WatchSuffix(ctx context.Context, term, suffix string) (domain.HentaiResponse, error)
}

type HianimeProvider interface {
	Search(ctx context.Context, term, episodeHint string) (domain.HianimeSearchResponse, error)
	Episodes(ctx context.Context, id string) (domain.HianimeEpisodesResponse, error)
	Stream(ctx context.Context, episodeID string) (domain.HianimeStreamResponse, error)
}

type VoirAnimeProvider interface {
	Search(ctx context.Context, term string) (domain.VoirAnimeSearchResponse, error)
	Episodes(ctx context.Context, link string) (domain.VoirAnimeEpisodesResponse, error)
	Stream(ctx context.Context, link string) (domain.VoirAnimeStreamResponse, error)
}

type AnimeSamaProvider interface {
	Search(ctx context.Context, term string) (domain.AnimeSamaSearchResponse, error)
	Episodes(ctx context.Context, link string) (domain.AnimeSamaSeasonsResponse, error)
	Stream(ctx context.Context, link string) (domain.AnimeSamaStreamResponse, error)
}

// Sanitizer transforme un titre en terme de recherche transmissible.
type Sanitizer func(title string) string
