package database

import (
	"context"
	"errors"

	"banana-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateImageParams struct {
	UserID       uuid.UUID
	Category     string
	FileBytes    []byte
	PreviewBytes []byte
}

// CreateImage inserts an image and pays for it with one upload credit, in one
// transaction. The credit check takes the user's row lock first, so two
// concurrent uploads by the same user cannot both pass on a single remaining
// credit. Returns the stored image and the refreshed counter.
func (s *Store) CreateImage(ctx context.Context, arg CreateImageParams) (*models.Image, int, error) {
	var image *models.Image
	var uploadsLeft int

	err := s.ExecTx(ctx, func(q *Queries) error {
		left, err := q.lockUploadsLeft(ctx, arg.UserID)
		if err != nil {
			return err
		}
		if left <= 0 {
			return ErrNoUploadCredit
		}

		image, err = q.insertImage(ctx, arg)
		if err != nil {
			return err
		}

		uploadsLeft, err = q.addUploadsLeft(ctx, arg.UserID, -1)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return image, uploadsLeft, nil
}

// DeleteImage removes the image owned by the user and refunds the upload
// credit it consumed, in one transaction. A miss leaves the counter untouched.
func (s *Store) DeleteImage(ctx context.Context, userID, imageID uuid.UUID) (int, error) {
	var uploadsLeft int

	err := s.ExecTx(ctx, func(q *Queries) error {
		res, err := q.db.Exec(ctx, `DELETE FROM images WHERE image_id = $1 AND user_id = $2`, imageID, userID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return ErrImageNotFound
		}

		uploadsLeft, err = q.addUploadsLeft(ctx, userID, 1)
		return err
	})
	if err != nil {
		return 0, err
	}

	return uploadsLeft, nil
}

func (q *Queries) insertImage(ctx context.Context, arg CreateImageParams) (*models.Image, error) {
	query := `
		INSERT INTO images (user_id, category, file_bytes, preview_bytes)
		VALUES ($1, $2, $3, $4)
		RETURNING image_id, user_id, category, preview_bytes, faved, created_at
	`
	var image models.Image
	err := q.db.QueryRow(ctx, query, arg.UserID, arg.Category, arg.FileBytes, arg.PreviewBytes).Scan(
		&image.ID,
		&image.UserID,
		&image.Category,
		&image.PreviewBytes,
		&image.Faved,
		&image.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (q *Queries) ListImagePreviews(ctx context.Context, userID uuid.UUID) ([]models.ImagePreview, error) {
	query := `
		SELECT image_id, category, preview_bytes, faved, created_at
		FROM images
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var previews []models.ImagePreview
	for rows.Next() {
		var p models.ImagePreview
		err := rows.Scan(
			&p.ID,
			&p.Category,
			&p.PreviewBytes,
			&p.Faved,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		previews = append(previews, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if previews == nil {
		return []models.ImagePreview{}, nil
	}

	return previews, nil
}

func (q *Queries) GetFullImage(ctx context.Context, userID, imageID uuid.UUID) ([]byte, error) {
	var fileBytes []byte
	query := `SELECT file_bytes FROM images WHERE user_id = $1 AND image_id = $2`
	err := q.db.QueryRow(ctx, query, userID, imageID).Scan(&fileBytes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return fileBytes, nil
}

// GetImageCategory resolves the category of an image only if it belongs to the
// given user; the generation endpoint uses it to verify ownership of both
// source images before any credit is spent.
func (q *Queries) GetImageCategory(ctx context.Context, userID, imageID uuid.UUID) (string, error) {
	var category string
	query := `SELECT category FROM images WHERE user_id = $1 AND image_id = $2`
	err := q.db.QueryRow(ctx, query, userID, imageID).Scan(&category)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrImageNotFound
		}
		return "", err
	}
	return category, nil
}

func (q *Queries) ToggleImageFavorite(ctx context.Context, userID, imageID uuid.UUID) (bool, error) {
	var faved bool
	query := `UPDATE images SET faved = NOT faved WHERE image_id = $1 AND user_id = $2 RETURNING faved`
	err := q.db.QueryRow(ctx, query, imageID, userID).Scan(&faved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrImageNotFound
		}
		return false, err
	}
	return faved, nil
}
