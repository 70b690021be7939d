package scraperapi

import (
	"context"
	"net/url"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

// HentaiAdapter couvre le catalogue (/h/watch/<slug>) et la variante alt-stream
// (/h/watch/<slug>/<suffix>).
type HentaiAdapter struct {
	c *Client
}

// hentaiEnvelope distingue "results" absent (payload inattendu) de "results":[] (aucun résultat).
type hentaiEnvelope struct {
	Results *[]domain.HentaiResult `json:"results"`
}

func (a *HentaiAdapter) Watch(ctx context.Context, term string) (domain.HentaiResponse, error) {
	return a.watch(ctx, "watch", "/h/watch/"+term)
}

func (a *HentaiAdapter) WatchSuffix(ctx context.Context, term, suffix string) (domain.HentaiResponse, error) {
	return a.watch(ctx, "watch-suffix", "/h/watch/"+term+"/"+url.PathEscape(suffix))
}

func (a *HentaiAdapter) watch(ctx context.Context, op, path string) (domain.HentaiResponse, error) {
	var env hentaiEnvelope
	if err := a.c.getJSON(ctx, domain.ProviderHentai, op, path, &env); err != nil {
		return domain.HentaiResponse{}, err
	}
	if env.Results == nil {
		return domain.HentaiResponse{}, malformed(domain.ProviderHentai, op, "missing results")
	}
	return domain.HentaiResponse{Results: *env.Results}, nil
}
