package app

import (
	"context"
	"errors"
	"sync"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

// callLog enregistre les appels faits aux faux providers, dans l'ordre.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(s string) {
	l.mu.Lock()
	l.calls = append(l.calls, s)
	l.mu.Unlock()
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func transportErr(p domain.Provider) error {
	return &ports.ProviderError{Provider: p, Op: "test", Kind: ports.FailureTransport, Err: errors.New("connection refused")}
}

func providerErr(p domain.Provider) error {
	return &ports.ProviderError{Provider: p, Op: "test", Kind: ports.FailureProvider, Err: errors.New("success=false")}
}

func malformedErr(p domain.Provider) error {
	return &ports.ProviderError{Provider: p, Op: "test", Kind: ports.FailureMalformed, Err: errors.New("missing results")}
}

func hentaiResp(name string, eps ...domain.HentaiEpisode) domain.HentaiResponse {
	return domain.HentaiResponse{Results: []domain.HentaiResult{{Name: name, Episodes: eps}}}
}

type fakeHentai struct {
	log *callLog
	// clé = terme ou terme+"/"+suffixe
	resp map[string]domain.HentaiResponse
	errs map[string]error
}

func (f *fakeHentai) Watch(ctx context.Context, term string) (domain.HentaiResponse, error) {
	f.log.add("catalog:" + term)
	return f.lookup(term)
}

func (f *fakeHentai) WatchSuffix(ctx context.Context, term, suffix string) (domain.HentaiResponse, error) {
	f.log.add("alt:" + term + "/" + suffix)
	return f.lookup(term + "/" + suffix)
}

func (f *fakeHentai) lookup(key string) (domain.HentaiResponse, error) {
	if err, ok := f.errs[key]; ok {
		return domain.HentaiResponse{}, err
	}
	return f.resp[key], nil
}

type fakeHianime struct {
	log      *callLog
	search   func(term, hint string) (domain.HianimeSearchResponse, error)
	episodes func(id string) (domain.HianimeEpisodesResponse, error)
	stream   func(id string) (domain.HianimeStreamResponse, error)
}

func (f *fakeHianime) Search(ctx context.Context, term, hint string) (domain.HianimeSearchResponse, error) {
	f.log.add("search:" + term + "&ep=" + hint)
	return f.search(term, hint)
}

func (f *fakeHianime) Episodes(ctx context.Context, id string) (domain.HianimeEpisodesResponse, error) {
	f.log.add("episodes:" + id)
	return f.episodes(id)
}

func (f *fakeHianime) Stream(ctx context.Context, id string) (domain.HianimeStreamResponse, error) {
	f.log.add("stream:" + id)
	if f.stream == nil {
		return domain.HianimeStreamResponse{}, nil
	}
	return f.stream(id)
}

type fakeVoirAnime struct {
	log      *callLog
	search   domain.VoirAnimeSearchResponse
	episodes domain.VoirAnimeEpisodesResponse
	stream   domain.VoirAnimeStreamResponse
	err      error
}

func (f *fakeVoirAnime) Search(ctx context.Context, term string) (domain.VoirAnimeSearchResponse, error) {
	f.log.add("va-search:" + term)
	return f.search, f.err
}

func (f *fakeVoirAnime) Episodes(ctx context.Context, link string) (domain.VoirAnimeEpisodesResponse, error) {
	f.log.add("va-episodes:" + link)
	return f.episodes, nil
}

func (f *fakeVoirAnime) Stream(ctx context.Context, link string) (domain.VoirAnimeStreamResponse, error) {
	f.log.add("va-stream:" + link)
	return f.stream, f.err
}

type fakeAnimeSama struct {
	log     *callLog
	search  domain.AnimeSamaSearchResponse
	seasons domain.AnimeSamaSeasonsResponse
	stream  domain.AnimeSamaStreamResponse
	err     error
}

func (f *fakeAnimeSama) Search(ctx context.Context, term string) (domain.AnimeSamaSearchResponse, error) {
	f.log.add("as-search:" + term)
	return f.search, f.err
}

func (f *fakeAnimeSama) Episodes(ctx context.Context, link string) (domain.AnimeSamaSeasonsResponse, error) {
	f.log.add("as-episodes:" + link)
	return f.seasons, nil
}

func (f *fakeAnimeSama) Stream(ctx context.Context, link string) (domain.AnimeSamaStreamResponse, error) {
	f.log.add("as-stream:" + link)
	return f.stream, f.err
}

// identité: les tests vérifient les termes tels quels.
func rawTerm(s string) string { return s }

type fakeBus struct {
	mu     sync.Mutex
	events []ports.Event
}

func (b *fakeBus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	b.events = append(b.events, ports.Event{Topic: topic, Payload: payload})
	b.mu.Unlock()
}

func (b *fakeBus) Subscribe() (<-chan ports.Event, func()) {
	ch := make(chan ports.Event)
	return ch, func() {}
}

func (b *fakeBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Topic)
	}
	return out
}
