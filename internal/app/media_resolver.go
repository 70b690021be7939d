package app

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

// EmbedResolver transforme une page d'embed (lecteurs renvoyés par AnimeSama/VoirAnime)
// en URL média directe (.mp4 ou .m3u8), en suivant iframe / meta refresh / location.href.
type EmbedResolver struct {
	client   *http.Client
	maxDepth int
	logger   zerolog.Logger
}

const defaultEmbedDepth = 3

func NewEmbedResolver(logger zerolog.Logger) *EmbedResolver {
	return &EmbedResolver{
		client:   &http.Client{Timeout: 15 * time.Second},
		maxDepth: defaultEmbedDepth,
		logger:   logger,
	}
}

func (r *EmbedResolver) WithHTTPClient(c *http.Client) *EmbedResolver {
	if c != nil {
		r.client = c
	}
	return r
}

var (
	reMediaAbs = regexp.MustCompile(`(?i)(https?:)?//[^\s"'<>]+\.(mp4|m3u8)(\?[^\s"'<>]*)?`)
	reMediaRel = regexp.MustCompile(`(?i)/[^\s"'<>]+\.(mp4|m3u8)(\?[^\s"'<>]*)?`)

	// ordre de suivi des indirections
	reFollow = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<meta[^>]+http-equiv=['"]refresh['"][^>]+content=['"][^'"]*url=([^'">\s]+)`),
		regexp.MustCompile(`(?i)location\.(?:href|replace)\s*\(?\s*=?\s*['"]([^'"]+)['"]`),
		regexp.MustCompile(`(?i)<iframe[^>]+src=['"]([^'"]+)['"]`),
	}

	jsEscapes = strings.NewReplacer(`\/`, "/", `\u0026`, "&", `\u002F`, "/", `\u003A`, ":", "&amp;", "&")
)

func isDirectMedia(u string) bool {
	lu := strings.ToLower(u)
	return strings.Contains(lu, ".mp4") || strings.Contains(lu, ".m3u8")
}

// Resolve renvoie ErrNotFound quand aucune URL média n'a été trouvée.
func (r *EmbedResolver) Resolve(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("invalid_request", "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", invalid("invalid_request", "url must be absolute http(s)")
	}
	got, ok := r.resolve(ctx, u, r.maxDepth)
	if !ok {
		r.logger.Debug().Str("url", raw).Msg("no direct media found")
		return "", ErrNotFound
	}
	return got, nil
}

// ResolveSources complète chaque source AnimeSama avec son URL directe quand elle est trouvable.
// Les sources non résolues gardent leur URL d'embed.
func (r *EmbedResolver) ResolveSources(ctx context.Context, sources []domain.AnimeSamaSource) []domain.AnimeSamaSource {
	out := make([]domain.AnimeSamaSource, len(sources))
	for i, s := range sources {
		out[i] = s
		if direct, err := r.Resolve(ctx, s.URL); err == nil {
			out[i].URL = direct
		}
	}
	return out
}

func (r *EmbedResolver) resolve(ctx context.Context, page *url.URL, depth int) (string, bool) {
	if isDirectMedia(page.String()) {
		return page.String(), true
	}
	if depth <= 0 || ctx.Err() != nil {
		return "", false
	}

	text, ok := r.fetchHTML(ctx, page)
	if !ok {
		return "", false
	}
	if m, ok := pickMedia(page, text); ok {
		return m, true
	}
	for _, re := range reFollow {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		next, err := page.Parse(strings.TrimSpace(m[1]))
		if err != nil || next.String() == page.String() {
			continue
		}
		if got, ok := r.resolve(ctx, next, depth-1); ok {
			return got, true
		}
	}
	return "", false
}

func (r *EmbedResolver) fetchHTML(ctx context.Context, page *url.URL) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Gecko/20100101 Firefox/120.0")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if resp.StatusCode >= 400 || !(strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")) {
		return "", false
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	return jsEscapes.Replace(string(b)), true
}

// pickMedia préfère un .mp4 à un .m3u8, les URLs absolues aux relatives.
func pickMedia(base *url.URL, text string) (string, bool) {
	var candidates []string
	for _, m := range reMediaAbs.FindAllString(text, -1) {
		if strings.HasPrefix(m, "//") {
			m = base.Scheme + ":" + m
		}
		candidates = append(candidates, m)
	}
	if len(candidates) == 0 {
		for _, m := range reMediaRel.FindAllString(text, -1) {
			if ref, err := base.Parse(m); err == nil {
				candidates = append(candidates, ref.String())
			}
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), ".mp4") {
			return c, true
		}
	}
	return candidates[0], true
}
