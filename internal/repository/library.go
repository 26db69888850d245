package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"photovault/internal/models"
)

// Library exposes the lookups the media gateway needs over one pool.
type Library struct {
	photos *PhotoRepository
	users  *UserRepository
}

func NewLibrary(pool *pgxpool.Pool) *Library {
	return &Library{
		photos: NewPhotoRepository(pool),
		users:  NewUserRepository(pool),
	}
}

func (l *Library) FindPhotoByHash(ctx context.Context, hash string) (models.Photo, error) {
	return l.photos.FindByHash(ctx, hash)
}

func (l *Library) FindUserByID(ctx context.Context, id int64) (models.User, error) {
	return l.users.FindByID(ctx, id)
}
