package ports

import (
	"context"

	"github.com/Guilhem-Bonnet/HikariFlix/internal/domain"
)

// FavoritesRepository stocke la liste entière en une fois (un seul tableau JSON).
type FavoritesRepository interface {
	Load(ctx context.Context) ([]domain.Favorite, error)
	Save(ctx context.Context, favorites []domain.Favorite) error
}
