package database

import (
	"context"
	"errors"

	"banana-api/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxFeedbacksPerUser = 5

// CreateFeedback appends a feedback row as long as the user stays under the
// cap. The cap is enforced by counting before inserting, not by a constraint,
// so the count runs under the user's row lock to keep it race-free.
func (s *Store) CreateFeedback(ctx context.Context, userID uuid.UUID, message string) (*models.Feedback, error) {
	var feedback *models.Feedback

	err := s.ExecTx(ctx, func(q *Queries) error {
		var lockedID uuid.UUID
		err := q.db.QueryRow(ctx, `SELECT user_id FROM users WHERE user_id = $1 FOR UPDATE`, userID).Scan(&lockedID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrUserNotFound
			}
			return err
		}

		var count int
		err = q.db.QueryRow(ctx, `SELECT count(*) FROM feedbacks WHERE user_id = $1`, userID).Scan(&count)
		if err != nil {
			return err
		}
		if count >= maxFeedbacksPerUser {
			return ErrFeedbackLimit
		}

		query := `
			INSERT INTO feedbacks (user_id, message)
			VALUES ($1, $2)
			RETURNING feedback_id, user_id, message, created_at
		`
		var f models.Feedback
		err = q.db.QueryRow(ctx, query, userID, message).Scan(&f.ID, &f.UserID, &f.Message, &f.CreatedAt)
		if err != nil {
			return err
		}
		feedback = &f
		return nil
	})
	if err != nil {
		return nil, err
	}

	return feedback, nil
}
