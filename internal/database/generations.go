package database

import (
	"context"
	"errors"

	"banana-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CreateGenerationParams struct {
	UserID          uuid.UUID
	YourselfImageID uuid.UUID
	ClothingImageID uuid.UUID
	FileBytes       []byte
	PreviewBytes    []byte
}

// CreateGeneration inserts a generated image, paying one generation credit and
// one recents slot in the same transaction. Both counters are read under the
// user's row lock before anything is written; exhaustion of either is reported
// with its own sentinel so the caller can tell the two apart. Ownership of the
// two source images is the caller's job and is not re-checked here.
func (s *Store) CreateGeneration(ctx context.Context, arg CreateGenerationParams) (*models.Generation, int, int, error) {
	var generation *models.Generation
	var generationsLeft, recentsLeft int

	err := s.ExecTx(ctx, func(q *Queries) error {
		gens, recents, err := q.lockGenerationCredits(ctx, arg.UserID)
		if err != nil {
			return err
		}
		if gens <= 0 {
			return ErrNoGenerationCredit
		}
		if recents <= 0 {
			return ErrNoRecentsSlot
		}

		generation, err = q.insertGeneration(ctx, arg)
		if err != nil {
			return err
		}

		query := `
			UPDATE users
			SET generations_left = generations_left - 1, recents_left = recents_left - 1
			WHERE user_id = $1
			RETURNING generations_left, recents_left
		`
		return q.db.QueryRow(ctx, query, arg.UserID).Scan(&generationsLeft, &recentsLeft)
	})
	if err != nil {
		return nil, 0, 0, err
	}

	return generation, generationsLeft, recentsLeft, nil
}

// DeleteGeneration removes the generation and frees its recents slot. The
// generation credit itself is never refunded: the generate operation already
// ran, only the storage slot is reusable.
func (s *Store) DeleteGeneration(ctx context.Context, userID, imageID uuid.UUID) (int, error) {
	var recentsLeft int

	err := s.ExecTx(ctx, func(q *Queries) error {
		res, err := q.db.Exec(ctx, `DELETE FROM generations WHERE image_id = $1 AND user_id = $2`, imageID, userID)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return ErrGenerationNotFound
		}

		recentsLeft, err = q.addRecentsLeft(ctx, userID, 1)
		return err
	})
	if err != nil {
		return 0, err
	}

	return recentsLeft, nil
}

func (q *Queries) insertGeneration(ctx context.Context, arg CreateGenerationParams) (*models.Generation, error) {
	query := `
		INSERT INTO generations (user_id, yourself_image_id, clothing_image_id, file_bytes, preview_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING image_id, user_id, yourself_image_id, clothing_image_id, preview_bytes, faved, created_at
	`
	var generation models.Generation
	err := q.db.QueryRow(ctx, query,
		arg.UserID,
		arg.YourselfImageID,
		arg.ClothingImageID,
		arg.FileBytes,
		arg.PreviewBytes,
	).Scan(
		&generation.ID,
		&generation.UserID,
		&generation.YourselfImageID,
		&generation.ClothingImageID,
		&generation.PreviewBytes,
		&generation.Faved,
		&generation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &generation, nil
}

func (q *Queries) ListGenerationPreviews(ctx context.Context, userID uuid.UUID) ([]models.GenerationPreview, error) {
	query := `
		SELECT image_id, preview_bytes, faved, created_at
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := q.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var previews []models.GenerationPreview
	for rows.Next() {
		var p models.GenerationPreview
		if err := rows.Scan(&p.ID, &p.PreviewBytes, &p.Faved, &p.CreatedAt); err != nil {
			return nil, err
		}
		previews = append(previews, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if previews == nil {
		return []models.GenerationPreview{}, nil
	}

	return previews, nil
}

func (q *Queries) GetFullGeneration(ctx context.Context, userID, imageID uuid.UUID) ([]byte, error) {
	var fileBytes []byte
	query := `SELECT file_bytes FROM generations WHERE user_id = $1 AND image_id = $2`
	err := q.db.QueryRow(ctx, query, userID, imageID).Scan(&fileBytes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGenerationNotFound
		}
		return nil, err
	}
	return fileBytes, nil
}

func (q *Queries) ToggleGenerationFavorite(ctx context.Context, userID, imageID uuid.UUID) (bool, error) {
	var faved bool
	query := `UPDATE generations SET faved = NOT faved WHERE image_id = $1 AND user_id = $2 RETURNING faved`
	err := q.db.QueryRow(ctx, query, imageID, userID).Scan(&faved)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrGenerationNotFound
		}
		return false, err
	}
	return faved, nil
}
