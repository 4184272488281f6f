package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	CategoryYourself = "yourself"
	CategoryClothing = "clothing"
)

func ValidCategory(category string) bool {
	return category == CategoryYourself || category == CategoryClothing
}

type Image struct {
	ID           uuid.UUID `json:"image_id"`
	UserID       uuid.UUID `json:"-"`
	Category     string    `json:"category"`
	FileBytes    []byte    `json:"-"`
	PreviewBytes []byte    `json:"preview_base64"`
	Faved        bool      `json:"faved"`
	CreatedAt    time.Time `json:"created_at"`
}

// ImagePreview is the listing projection of an Image; full-resolution bytes
// stay out of it so the previews endpoint never drags megabytes per row.
type ImagePreview struct {
	ID           uuid.UUID `json:"id"`
	Category     string    `json:"category"`
	PreviewBytes []byte    `json:"base64"`
	Faved        bool      `json:"faved"`
	CreatedAt    time.Time `json:"created_at"`
}
