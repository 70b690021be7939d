package scraperapi

import (
	"context"
	"net/url"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

// VoirAnimeAdapter sert VO et VF: la recherche renvoie les deux partitions,
// le choix se fait côté resolver. Les erreurs sont marquées voiranime-vo; le resolver
// les réattribue à la langue sélectionnée.
type VoirAnimeAdapter struct {
	c *Client
}

func (a *VoirAnimeAdapter) Search(ctx context.Context, term string) (domain.VoirAnimeSearchResponse, error) {
	var out domain.VoirAnimeSearchResponse
	if err := a.c.getJSON(ctx, domain.ProviderVoirAnimeVO, "search", "/v/search?keyword="+term, &out); err != nil {
		return domain.VoirAnimeSearchResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderVoirAnimeVO, "search")
	}
	return out, nil
}

func (a *VoirAnimeAdapter) Episodes(ctx context.Context, link string) (domain.VoirAnimeEpisodesResponse, error) {
	var out domain.VoirAnimeEpisodesResponse
	if err := a.c.getJSON(ctx, domain.ProviderVoirAnimeVO, "episodes", "/v/episodes?link="+url.QueryEscape(link), &out); err != nil {
		return domain.VoirAnimeEpisodesResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderVoirAnimeVO, "episodes")
	}
	return out, nil
}

func (a *VoirAnimeAdapter) Stream(ctx context.Context, link string) (domain.VoirAnimeStreamResponse, error) {
	var out domain.VoirAnimeStreamResponse
	if err := a.c.getJSON(ctx, domain.ProviderVoirAnimeVO, "stream", "/v/stream?link="+url.QueryEscape(link), &out); err != nil {
		return domain.VoirAnimeStreamResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderVoirAnimeVO, "stream")
	}
	return out, nil
}
