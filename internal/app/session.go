package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

type episodeResolver interface {
	ResolveEpisodes(ctx context.Context, q EpisodeQuery) Resolution
}

// Session porte l'état d'un écran de détails: la requête courante et le dernier résultat.
//
// Chaque résolution reçoit un numéro de génération; un résultat arrivant après un
// changement de provider ou une fermeture est ignoré.
type Session struct {
	ID        string
	CreatedAt time.Time

	resolver episodeResolver

	mu         sync.Mutex
	query      EpisodeQuery
	result     *Resolution
	generation uint64
	closed     bool
	cancel     context.CancelFunc
}

type SessionSnapshot struct {
	ID         string          `json:"id"`
	Query      EpisodeQuery    `json:"query"`
	Generation uint64          `json:"generation"`
	Pending    bool            `json:"pending"`
	Closed     bool            `json:"closed"`
	Result     *Resolution     `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	Provider   domain.Provider `json:"provider"`
}

func NewSession(resolver episodeResolver, q EpisodeQuery) *Session {
	return &Session{ID: xid.New().String(), CreatedAt: time.Now().UTC(), resolver: resolver, query: q}
}

// Resolve lance une résolution pour la requête courante. ok=false si le résultat a été
// invalidé entre-temps (SelectProvider ou Close).
func (s *Session) Resolve(ctx context.Context) (Resolution, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Resolution{}, false
	}
	s.stopLocked()
	s.generation++
	gen := s.generation
	q := s.query
	s.result = nil
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	res := s.resolver.ResolveEpisodes(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		return res, false
	}
	s.result = &res
	s.cancel = nil
	return res, true
}

// SetProvider invalide la résolution en cours et le dernier résultat.
func (s *Session) SetProvider(p domain.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Provider = p
	s.result = nil
	s.stopLocked()
	s.generation++
}

// SelectProvider remplace le provider puis relance la résolution.
func (s *Session) SelectProvider(ctx context.Context, p domain.Provider) (Resolution, bool) {
	s.SetProvider(p)
	return s.Resolve(ctx)
}

func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopLocked()
	s.generation++
	s.mu.Unlock()
}

func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SessionSnapshot{
		ID:         s.ID,
		Query:      s.query,
		Generation: s.generation,
		Pending:    s.result == nil && !s.closed,
		Closed:     s.closed,
		CreatedAt:  s.CreatedAt,
		Provider:   s.query.Provider,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
		snap.Provider = r.Provider
	}
	return snap
}

// SessionRegistry garde les sessions en mémoire. Au-delà de max, la plus ancienne est fermée.
type SessionRegistry struct {
	resolver episodeResolver
	max      int

	mu    sync.Mutex
	byID  map[string]*Session
	order []string
}

const DefaultMaxSessions = 256

func NewSessionRegistry(resolver episodeResolver, max int) *SessionRegistry {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	return &SessionRegistry{resolver: resolver, max: max, byID: map[string]*Session{}}
}

func (r *SessionRegistry) Create(q EpisodeQuery) *Session {
	s := NewSession(r.resolver, q)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = s
	r.order = append(r.order, s.ID)
	for len(r.order) > r.max {
		oldest := r.order[0]
		r.order = r.order[1:]
		if old, ok := r.byID[oldest]; ok {
			old.Close()
			delete(r.byID, oldest)
		}
	}
	return s
}

func (r *SessionRegistry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (r *SessionRegistry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.byID[id]
	if ok {
		delete(r.byID, id)
		for i, v := range r.order {
			if v == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
