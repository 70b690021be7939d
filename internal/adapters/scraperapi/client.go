// Package scraperapi parle aux backends REST de scraping (hianime, hentai, VoirAnime, AnimeSama).
// Chaque réponse est décodée dans sa variante typée de domain; toute erreur remonte
// sous forme de *ports.ProviderError.
package scraperapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

const (
	DefaultBaseURL = "http://127.0.0.1:6969"
	DefaultTimeout = 15 * time.Second

	userAgent    = "hikari-server"
	maxBodyBytes = 8 << 20
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
	// Timeout s'applique à chaque appel (un dépassement compte comme une erreur transport).
	Timeout time.Duration
}

func New() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Transport: newTransport()},
		Timeout: DefaultTimeout,
	}
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 16
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

func (c *Client) WithBaseURL(base string) *Client {
	if strings.TrimSpace(base) != "" {
		c.BaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
	return c
}

func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.Timeout = d
	}
	return c
}

func (c *Client) Hentai() *HentaiAdapter       { return &HentaiAdapter{c: c} }
func (c *Client) Hianime() *HianimeAdapter     { return &HianimeAdapter{c: c} }
func (c *Client) VoirAnime() *VoirAnimeAdapter { return &VoirAnimeAdapter{c: c} }
func (c *Client) AnimeSama() *AnimeSamaAdapter { return &AnimeSamaAdapter{c: c} }

// getJSON exécute un GET sur pathAndQuery (déjà encodé) et décode la réponse dans out.
func (c *Client) getJSON(ctx context.Context, provider domain.Provider, op, pathAndQuery string, out any) error {
	fail := func(kind ports.FailureKind, err error) error {
		return &ports.ProviderError{Provider: provider, Op: op, Kind: kind, Err: err}
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+pathAndQuery, nil)
	if err != nil {
		return fail(ports.FailureTransport, errors.Wrap(err, "build request"))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	client := c.HTTP
	if client == nil {
		client = &http.Client{}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fail(ports.FailureTransport, errors.Wrap(err, "request"))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fail(ports.FailureTransport, errors.Errorf("http error: %s", resp.Status))
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fail(ports.FailureTransport, errors.Wrap(err, "read body"))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fail(ports.FailureMalformed, errors.Wrap(err, "decode"))
	}
	return nil
}

func providerFailure(provider domain.Provider, op string) error {
	return &ports.ProviderError{Provider: provider, Op: op, Kind: ports.FailureProvider, Err: errors.New("success=false")}
}

func malformed(provider domain.Provider, op, msg string) error {
	return &ports.ProviderError{Provider: provider, Op: op, Kind: ports.FailureMalformed, Err: errors.New(msg)}
}
