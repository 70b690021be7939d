package scraperapi

import (
	"context"
	"net/url"
	"strings"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

type HianimeAdapter struct {
	c *Client
}

// Search appelle /a/search. episodeHint est le nombre d'épisodes connu côté catalogue ("0" si inconnu).
func (a *HianimeAdapter) Search(ctx context.Context, term, episodeHint string) (domain.HianimeSearchResponse, error) {
	var out domain.HianimeSearchResponse
	q := "/a/search?keyword=" + term + "&ep=" + url.QueryEscape(episodeHint)
	if err := a.c.getJSON(ctx, domain.ProviderHianime, "search", q, &out); err != nil {
		return domain.HianimeSearchResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderHianime, "search")
	}
	if out.Result == nil || strings.TrimSpace(out.Result.ID.String()) == "" {
		return out, malformed(domain.ProviderHianime, "search", "missing result.id")
	}
	return out, nil
}

func (a *HianimeAdapter) Episodes(ctx context.Context, id string) (domain.HianimeEpisodesResponse, error) {
	var out domain.HianimeEpisodesResponse
	if err := a.c.getJSON(ctx, domain.ProviderHianime, "episodes", "/a/episodes/"+url.PathEscape(id), &out); err != nil {
		return domain.HianimeEpisodesResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderHianime, "episodes")
	}
	return out, nil
}

func (a *HianimeAdapter) Stream(ctx context.Context, episodeID string) (domain.HianimeStreamResponse, error) {
	var out domain.HianimeStreamResponse
	if err := a.c.getJSON(ctx, domain.ProviderHianime, "stream", "/a/stream?id="+url.QueryEscape(episodeID), &out); err != nil {
		return domain.HianimeStreamResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderHianime, "stream")
	}
	return out, nil
}
