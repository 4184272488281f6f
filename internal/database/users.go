package database

import (
	"context"
	"errors"

	"banana-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (q *Queries) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `
		SELECT
			user_id, user_name, user_surname, user_email, password_hash, user_type,
			uploads_left, generations_left, recents_left, last_payment_at, created_at
		FROM users
		WHERE user_id = $1
	`
	var user models.User
	err := q.db.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Surname,
		&user.Email,
		&user.PasswordHash,
		&user.UserType,
		&user.UploadsLeft,
		&user.GenerationsLeft,
		&user.RecentsLeft,
		&user.LastPaymentAt,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT
			user_id, user_name, user_surname, user_email, password_hash, user_type,
			uploads_left, generations_left, recents_left, last_payment_at, created_at
		FROM users
		WHERE user_email = $1
	`
	var user models.User
	err := q.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Surname,
		&user.Email,
		&user.PasswordHash,
		&user.UserType,
		&user.UploadsLeft,
		&user.GenerationsLeft,
		&user.RecentsLeft,
		&user.LastPaymentAt,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// lockUploadsLeft reads the user's upload counter and takes the row lock that
// serializes every concurrent credit operation for the same user until commit.
func (q *Queries) lockUploadsLeft(ctx context.Context, userID uuid.UUID) (int, error) {
	var left int
	query := `SELECT uploads_left FROM users WHERE user_id = $1 FOR UPDATE`
	err := q.db.QueryRow(ctx, query, userID).Scan(&left)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoUploadCredit
		}
		return 0, err
	}
	return left, nil
}

func (q *Queries) lockGenerationCredits(ctx context.Context, userID uuid.UUID) (generationsLeft, recentsLeft int, err error) {
	query := `SELECT generations_left, recents_left FROM users WHERE user_id = $1 FOR UPDATE`
	err = q.db.QueryRow(ctx, query, userID).Scan(&generationsLeft, &recentsLeft)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, ErrNoGenerationCredit
		}
		return 0, 0, err
	}
	return generationsLeft, recentsLeft, nil
}

func (q *Queries) addUploadsLeft(ctx context.Context, userID uuid.UUID, delta int) (int, error) {
	var left int
	query := `UPDATE users SET uploads_left = uploads_left + $1 WHERE user_id = $2 RETURNING uploads_left`
	err := q.db.QueryRow(ctx, query, delta, userID).Scan(&left)
	return left, err
}

func (q *Queries) addRecentsLeft(ctx context.Context, userID uuid.UUID, delta int) (int, error) {
	var left int
	query := `UPDATE users SET recents_left = recents_left + $1 WHERE user_id = $2 RETURNING recents_left`
	err := q.db.QueryRow(ctx, query, delta, userID).Scan(&left)
	return left, err
}
