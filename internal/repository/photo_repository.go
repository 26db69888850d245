package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"photovault/internal/models"
)

var ErrPhotoNotFound = errors.New("photo not found")

type PhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

// FindByHash loads a photo with its direct shares and album shares. All
// three reads run in one read-only transaction so the relations come from
// the same snapshot.
func (r *PhotoRepository) FindByHash(ctx context.Context, hash string) (models.Photo, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return models.Photo{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	photo, err := r.scanPhoto(ctx, tx, hash)
	if err != nil {
		return models.Photo{}, err
	}

	photo.SharedTo, err = r.sharedTo(ctx, tx, hash)
	if err != nil {
		return models.Photo{}, fmt.Errorf("load shared_to: %w", err)
	}

	photo.Albums, err = r.albumShares(ctx, tx, hash)
	if err != nil {
		return models.Photo{}, fmt.Errorf("load album shares: %w", err)
	}

	return photo, nil
}

func (r *PhotoRepository) scanPhoto(ctx context.Context, tx pgx.Tx, hash string) (models.Photo, error) {
	const query = `
		SELECT p.image_hash, p.owner_id, p.public, p.video,
		       COALESCE(f.path, ''),
		       t.thumbnail_big,
		       (SELECT COUNT(*) FROM api_file_embedded_media em WHERE em.from_file_id = f.hash)
		FROM api_photo p
		LEFT JOIN api_file f ON f.hash = p.main_file_id
		LEFT JOIN api_thumbnail t ON t.photo_id = p.image_hash
		WHERE p.image_hash = $1
	`

	row := tx.QueryRow(ctx, query, hash)
	var photo models.Photo
	if err := row.Scan(
		&photo.ImageHash,
		&photo.OwnerID,
		&photo.Public,
		&photo.IsVideo,
		&photo.OriginalPath,
		&photo.LegacyThumbnailPath,
		&photo.EmbeddedMediaCount,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Photo{}, ErrPhotoNotFound
		}
		return models.Photo{}, err
	}
	return photo, nil
}

func (r *PhotoRepository) sharedTo(ctx context.Context, tx pgx.Tx, hash string) ([]int64, error) {
	const query = `SELECT user_id FROM api_photo_shared_to WHERE photo_id = $1`

	rows, err := tx.Query(ctx, query, hash)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *PhotoRepository) albumShares(ctx context.Context, tx pgx.Tx, hash string) ([]models.AlbumShare, error) {
	const query = `
		SELECT ap.albumuser_id, s.user_id
		FROM api_albumuser_photos ap
		JOIN api_albumuser_shared_to s ON s.albumuser_id = ap.albumuser_id
		WHERE ap.photo_id = $1
		ORDER BY ap.albumuser_id
	`

	rows, err := tx.Query(ctx, query, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var albums []models.AlbumShare
	for rows.Next() {
		var albumID, userID int64
		if err := rows.Scan(&albumID, &userID); err != nil {
			return nil, err
		}
		if n := len(albums); n > 0 && albums[n-1].AlbumID == albumID {
			albums[n-1].SharedTo = append(albums[n-1].SharedTo, userID)
			continue
		}
		albums = append(albums, models.AlbumShare{AlbumID: albumID, SharedTo: []int64{userID}})
	}
	return albums, rows.Err()
}
