package models

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	ID        uuid.UUID `json:"feedback_id"`
	UserID    uuid.UUID `json:"-"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
