package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goccy/go-json"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
	"github.com/Guilhem-Bonnet/HikariFlix/internal/ports"
)

const favoritesKey = "favorites"

// FavoritesRepository garde toute la liste sous une seule clé, comme l'app mobile.
type FavoritesRepository struct {
	kv kvStore
}

func NewFavoritesRepository(db *sql.DB) *FavoritesRepository {
	return &FavoritesRepository{kv: kvStore{db: db}}
}

func (r *FavoritesRepository) Load(ctx context.Context) ([]domain.Favorite, error) {
	b, err := r.kv.get(ctx, favoritesKey)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return []domain.Favorite{}, nil
		}
		return nil, err
	}
	var favs []domain.Favorite
	if err := json.Unmarshal(b, &favs); err != nil || favs == nil {
		// Valeur corrompue: on repart d'une liste vide.
		return []domain.Favorite{}, nil
	}
	return favs, nil
}

func (r *FavoritesRepository) Save(ctx context.Context, favs []domain.Favorite) error {
	if favs == nil {
		favs = []domain.Favorite{}
	}
	b, err := json.Marshal(favs)
	if err != nil {
		return err
	}
	return r.kv.put(ctx, favoritesKey, b)
}
