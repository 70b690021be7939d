package app

import (
	"context"
	"sync"
	"testing"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

// blockingResolver attend release avant de répondre.
type blockingResolver struct {
	started chan EpisodeQuery
	release chan struct{}
}

func (b *blockingResolver) ResolveEpisodes(ctx context.Context, q EpisodeQuery) Resolution {
	b.started <- q
	<-b.release
	p := q.Provider
	return Resolution{Provider: p, EpisodeList: domain.FoundEpisodes([]domain.CommonEpisode{{ID: string(p) + "-1"}})}
}

type staticResolver struct{}

func (staticResolver) ResolveEpisodes(ctx context.Context, q EpisodeQuery) Resolution {
	return Resolution{Provider: q.Provider, EpisodeList: domain.FoundEpisodes([]domain.CommonEpisode{{ID: "1"}})}
}

func TestSession_ResolveStoresResult(t *testing.T) {
	s := NewSession(staticResolver{}, EpisodeQuery{Provider: domain.ProviderHianime})
	if s.ID == "" {
		t.Fatalf("expected session id")
	}
	res, ok := s.Resolve(context.Background())
	if !ok || !res.Found {
		t.Fatalf("expected result, got %+v ok=%v", res, ok)
	}
	snap := s.Snapshot()
	if snap.Result == nil || snap.Pending || snap.Generation != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestSession_SelectProviderDiscardsStaleResult(t *testing.T) {
	br := &blockingResolver{started: make(chan EpisodeQuery, 2), release: make(chan struct{})}
	s := NewSession(br, EpisodeQuery{Provider: domain.ProviderHianime})

	var wg sync.WaitGroup
	var firstOK bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstOK = s.Resolve(context.Background())
	}()
	<-br.started

	var second Resolution
	var secondOK bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		second, secondOK = s.SelectProvider(context.Background(), domain.ProviderAnimeSama)
	}()
	<-br.started

	close(br.release)
	wg.Wait()

	if firstOK {
		t.Fatalf("first resolution should have been discarded")
	}
	if !secondOK || second.Provider != domain.ProviderAnimeSama {
		t.Fatalf("unexpected second result %+v ok=%v", second, secondOK)
	}
	snap := s.Snapshot()
	if snap.Result == nil || snap.Result.Provider != domain.ProviderAnimeSama {
		t.Fatalf("expected animesama result, got %+v", snap.Result)
	}
}

func TestSession_CloseDiscardsInFlight(t *testing.T) {
	br := &blockingResolver{started: make(chan EpisodeQuery, 1), release: make(chan struct{})}
	s := NewSession(br, EpisodeQuery{Provider: domain.ProviderHianime})

	done := make(chan bool)
	go func() {
		_, ok := s.Resolve(context.Background())
		done <- ok
	}()
	<-br.started
	s.Close()
	close(br.release)

	if <-done {
		t.Fatalf("result after close must be discarded")
	}
	if snap := s.Snapshot(); snap.Result != nil || !snap.Closed {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if _, ok := s.Resolve(context.Background()); ok {
		t.Fatalf("closed session must not resolve")
	}
}

func TestSessionRegistry_EvictsOldest(t *testing.T) {
	reg := NewSessionRegistry(staticResolver{}, 2)
	a := reg.Create(EpisodeQuery{})
	b := reg.Create(EpisodeQuery{})
	c := reg.Create(EpisodeQuery{})

	if _, err := reg.Get(a.ID); err != ErrNotFound {
		t.Fatalf("expected oldest evicted, got %v", err)
	}
	if !a.Snapshot().Closed {
		t.Fatalf("evicted session must be closed")
	}
	for _, s := range []*Session{b, c} {
		if _, err := reg.Get(s.ID); err != nil {
			t.Fatalf("get %s: %v", s.ID, err)
		}
	}
	if err := reg.Delete(b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := reg.Delete(b.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", reg.Len())
	}
}
