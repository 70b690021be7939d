package scraperapi

import (
	"context"
	"net/url"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

type AnimeSamaAdapter struct {
	c *Client
}

func (a *AnimeSamaAdapter) Search(ctx context.Context, term string) (domain.AnimeSamaSearchResponse, error) {
	var out domain.AnimeSamaSearchResponse
	if err := a.c.getJSON(ctx, domain.ProviderAnimeSama, "search", "/s/search?keyword="+term, &out); err != nil {
		return domain.AnimeSamaSearchResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderAnimeSama, "search")
	}
	return out, nil
}

// Episodes renvoie les saisons du titre (une "saison" AnimeSama = une entrée de liste).
func (a *AnimeSamaAdapter) Episodes(ctx context.Context, link string) (domain.AnimeSamaSeasonsResponse, error) {
	var out domain.AnimeSamaSeasonsResponse
	if err := a.c.getJSON(ctx, domain.ProviderAnimeSama, "episodes", "/s/episodes?link="+url.QueryEscape(link), &out); err != nil {
		return domain.AnimeSamaSeasonsResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderAnimeSama, "episodes")
	}
	return out, nil
}

func (a *AnimeSamaAdapter) Stream(ctx context.Context, link string) (domain.AnimeSamaStreamResponse, error) {
	var out domain.AnimeSamaStreamResponse
	if err := a.c.getJSON(ctx, domain.ProviderAnimeSama, "stream", "/s/stream?link="+url.QueryEscape(link), &out); err != nil {
		return domain.AnimeSamaStreamResponse{}, err
	}
	if !out.Success {
		return out, providerFailure(domain.ProviderAnimeSama, "stream")
	}
	return out, nil
}
