package models

import (
	"time"

	"github.com/google/uuid"
)

type Generation struct {
	ID              uuid.UUID `json:"image_id"`
	UserID          uuid.UUID `json:"-"`
	YourselfImageID uuid.UUID `json:"yourself_image_id"`
	ClothingImageID uuid.UUID `json:"clothing_image_id"`
	FileBytes       []byte    `json:"-"`
	PreviewBytes    []byte    `json:"preview_base64"`
	Faved           bool      `json:"faved"`
	CreatedAt       time.Time `json:"created_at"`
}

type GenerationPreview struct {
	ID           uuid.UUID `json:"id"`
	PreviewBytes []byte    `json:"base64"`
	Faved        bool      `json:"faved"`
	CreatedAt    time.Time `json:"created_at"`
}
