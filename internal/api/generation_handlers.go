package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"banana-api/internal/database"
	"banana-api/internal/generate"
	"banana-api/internal/models"
	"banana-api/internal/preview"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateGenerationRequest struct {
	YourselfImageID uuid.UUID `json:"yourself_image_id"`
	ClothingImageID uuid.UUID `json:"clothing_image_id"`
}

type CreateGenerationResponse struct {
	ImageID         uuid.UUID `json:"image_id"`
	PreviewBase64   []byte    `json:"preview_base64"`
	CreatedAt       string    `json:"created_at"`
	GenerationsLeft int       `json:"generations_left"`
	RecentsLeft     int       `json:"recents_left"`
}

// @Summary      Generate a try-on image
// @Description  Composes a new image from one of the user's "yourself" photos and one "clothing" photo. Costs one generation credit and one recents slot; deleting the result only frees the slot.
// @Tags         generations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        generationRequest  body      CreateGenerationRequest  true  "Source image IDs"
// @Success      201  {object}  CreateGenerationResponse
// @Failure      400  {string}  string "Bad Request - wrong category"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      402  {string}  string "Payment Required - no generation credit or recents slot left"
// @Failure      404  {string}  string "Source image not found"
// @Failure      501  {string}  string "Generation backend not available"
// @Router       /generations [post]
func (s *Server) CreateGenerationHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req CreateGenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.YourselfImageID == uuid.Nil || req.ClothingImageID == uuid.Nil {
		http.Error(w, "Both yourself_image_id and clothing_image_id are required", http.StatusBadRequest)
		return
	}

	yourselfBytes, err := s.sourceImage(r, claims.UserID, req.YourselfImageID, models.CategoryYourself)
	if err != nil {
		s.writeSourceImageError(w, err)
		return
	}
	clothingBytes, err := s.sourceImage(r, claims.UserID, req.ClothingImageID, models.CategoryClothing)
	if err != nil {
		s.writeSourceImageError(w, err)
		return
	}

	resultBytes, err := s.composer.Compose(r.Context(), yourselfBytes, clothingBytes)
	if err != nil {
		if errors.Is(err, generate.ErrNotImplemented) {
			http.Error(w, "Image generation is not available", http.StatusNotImplemented)
			return
		}
		http.Error(w, "Image generation failed", http.StatusInternalServerError)
		return
	}

	previewBytes, err := preview.Generate(resultBytes)
	if err != nil {
		http.Error(w, "Generated image could not be processed", http.StatusInternalServerError)
		return
	}

	generation, generationsLeft, recentsLeft, err := s.store.CreateGeneration(r.Context(), database.CreateGenerationParams{
		UserID:          claims.UserID,
		YourselfImageID: req.YourselfImageID,
		ClothingImageID: req.ClothingImageID,
		FileBytes:       resultBytes,
		PreviewBytes:    previewBytes,
	})
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNoGenerationCredit):
			http.Error(w, "No generation credit left", http.StatusPaymentRequired)
		case errors.Is(err, database.ErrNoRecentsSlot):
			http.Error(w, "No recents slot left, delete an old generation first", http.StatusPaymentRequired)
		default:
			http.Error(w, "Failed to store generation", http.StatusInternalServerError)
		}
		return
	}

	s.publishEvent(r.Context(), claims.UserID, "generation_created", generation)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateGenerationResponse{
		ImageID:         generation.ID,
		PreviewBase64:   generation.PreviewBytes,
		CreatedAt:       generation.CreatedAt.Format(timeFormat),
		GenerationsLeft: generationsLeft,
		RecentsLeft:     recentsLeft,
	})
}

var errWrongCategory = errors.New("source image has the wrong category")

// sourceImage validates that the image belongs to the caller and carries the
// expected category before handing back its bytes.
func (s *Server) sourceImage(r *http.Request, userID, imageID uuid.UUID, wantCategory string) ([]byte, error) {
	category, err := s.store.GetImageCategory(r.Context(), userID, imageID)
	if err != nil {
		return nil, err
	}
	if category != wantCategory {
		return nil, errWrongCategory
	}
	return s.store.GetFullImage(r.Context(), userID, imageID)
}

func (s *Server) writeSourceImageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrImageNotFound):
		http.Error(w, "Source image not found", http.StatusNotFound)
	case errors.Is(err, errWrongCategory):
		http.Error(w, "Source image has the wrong category", http.StatusBadRequest)
	default:
		http.Error(w, "Failed to load source image", http.StatusInternalServerError)
	}
}

type FullGenerationResponse struct {
	ImageBase64 []byte `json:"image_base64"`
}

// @Summary      Get a full-resolution generation
// @Tags         generations
// @Produce      json
// @Security     BearerAuth
// @Param        imageId  path      string  true  "Generation ID" format(uuid)
// @Success      200  {object}  FullGenerationResponse
// @Failure      400  {string}  string "Invalid generation ID"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "Generation not found"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /generations/{imageId} [get]
func (s *Server) GetFullGenerationHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "imageId"))
	if err != nil {
		http.Error(w, "Invalid generation ID format", http.StatusBadRequest)
		return
	}

	fileBytes, err := s.store.GetFullGeneration(r.Context(), claims.UserID, imageID)
	if err != nil {
		if errors.Is(err, database.ErrGenerationNotFound) {
			http.Error(w, "Generation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve generation", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FullGenerationResponse{ImageBase64: fileBytes})
}

type DeleteGenerationResponse struct {
	RecentsLeft int `json:"recents_left"`
}

// @Summary      Delete a generation
// @Description  Deletes a generated image and frees its recents slot. The generation credit is not refunded.
// @Tags         generations
// @Produce      json
// @Security     BearerAuth
// @Param        imageId  path      string  true  "Generation ID" format(uuid)
// @Success      200  {object}  DeleteGenerationResponse
// @Failure      400  {string}  string "Invalid generation ID"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "Generation not found"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /generations/{imageId} [delete]
func (s *Server) DeleteGenerationHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "imageId"))
	if err != nil {
		http.Error(w, "Invalid generation ID format", http.StatusBadRequest)
		return
	}

	recentsLeft, err := s.store.DeleteGeneration(r.Context(), claims.UserID, imageID)
	if err != nil {
		if errors.Is(err, database.ErrGenerationNotFound) {
			http.Error(w, "Generation not found or you do not have permission to delete it", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete generation", http.StatusInternalServerError)
		return
	}

	s.publishEvent(r.Context(), claims.UserID, "generation_deleted", map[string]string{"image_id": imageID.String()})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DeleteGenerationResponse{RecentsLeft: recentsLeft})
}

// @Summary      Toggle generation favorite
// @Tags         generations
// @Produce      json
// @Security     BearerAuth
// @Param        imageId  path      string  true  "Generation ID" format(uuid)
// @Success      200  {object}  FavoriteResponse
// @Failure      400  {string}  string "Invalid generation ID"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "Generation not found"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /generations/{imageId}/favorite [post]
func (s *Server) ToggleGenerationFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "imageId"))
	if err != nil {
		http.Error(w, "Invalid generation ID format", http.StatusBadRequest)
		return
	}

	faved, err := s.store.ToggleGenerationFavorite(r.Context(), claims.UserID, imageID)
	if err != nil {
		if errors.Is(err, database.ErrGenerationNotFound) {
			http.Error(w, "Generation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to toggle favorite", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FavoriteResponse{Faved: faved})
}
