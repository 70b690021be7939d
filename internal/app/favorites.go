package app

import (
	"context"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

// FavoritesService gère la liste de favoris (lecture-modification-écriture sérialisées).
type FavoritesService struct {
	repo   ports.FavoritesRepository
	logger zerolog.Logger
	bus    ports.EventBus

	mu sync.Mutex
}

func NewFavoritesService(logger zerolog.Logger, repo ports.FavoritesRepository) *FavoritesService {
	return &FavoritesService{repo: repo, logger: logger}
}

func (s *FavoritesService) WithEventBus(bus ports.EventBus) *FavoritesService {
	s.bus = bus
	return s
}

// List renvoie les favoris dont un des titres correspond (fuzzy, insensible à la casse) à query.
func (s *FavoritesService) List(ctx context.Context, query string) ([]domain.Favorite, error) {
	favs, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.TrimSpace(query)
	out := make([]domain.Favorite, 0, len(favs))
	for _, f := range favs {
		if q == "" || matchTitle(q, f.Title) {
			out = append(out, f)
		}
	}
	return out, nil
}

func matchTitle(q string, t domain.Title) bool {
	for _, candidate := range []string{t.Romaji, t.English, t.Native} {
		if candidate != "" && fuzzy.MatchFold(q, candidate) {
			return true
		}
	}
	return false
}

func (s *FavoritesService) IsFavorite(ctx context.Context, id int) (bool, error) {
	favs, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range favs {
		if f.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *FavoritesService) Add(ctx context.Context, fav domain.Favorite) (domain.Favorite, error) {
	if fav.ID <= 0 {
		return domain.Favorite{}, invalid("invalid_request", "favorite id must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.repo.Load(ctx)
	if err != nil {
		return domain.Favorite{}, err
	}
	for _, f := range favs {
		if f.ID == fav.ID {
			return domain.Favorite{}, ErrConflict
		}
	}
	favs = append(favs, fav)
	if err := s.repo.Save(ctx, favs); err != nil {
		return domain.Favorite{}, err
	}
	s.logger.Info().Int("id", fav.ID).Msg("favorite added")
	publishJSON(s.bus, TopicFavoritesChanged, map[string]any{"op": "add", "id": fav.ID})
	return fav, nil
}

func (s *FavoritesService) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	kept := make([]domain.Favorite, 0, len(favs))
	for _, f := range favs {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(favs) {
		return ErrNotFound
	}
	if err := s.repo.Save(ctx, kept); err != nil {
		return err
	}
	s.logger.Info().Int("id", id).Msg("favorite removed")
	publishJSON(s.bus, TopicFavoritesChanged, map[string]any{"op": "remove", "id": id})
	return nil
}
