package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"banana-api/internal/database"
	"banana-api/internal/models"
	"banana-api/internal/preview"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type UploadImageRequest struct {
	Category  string `json:"category" example:"yourself"`
	FileBytes []byte `json:"file_bytes" swaggertype:"string" format:"base64"`
}

type UploadImageResponse struct {
	ImageID       uuid.UUID `json:"image_id"`
	PreviewBase64 []byte    `json:"preview_base64"`
	CreatedAt     string    `json:"created_at"`
	UploadsLeft   int       `json:"uploads_left"`
}

// @Summary      Upload an image
// @Description  Stores an uploaded image together with a server-generated preview. Costs one upload credit; the credit is refunded when the image is deleted.
// @Tags         images
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        uploadRequest  body      UploadImageRequest  true  "Image payload (base64 bytes + category)"
// @Success      201  {object}  UploadImageResponse
// @Failure      400  {string}  string "Bad Request"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      402  {string}  string "Payment Required - no upload credit left"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /images [post]
func (s *Server) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 32<<20)

	var req UploadImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !models.ValidCategory(req.Category) {
		http.Error(w, "Category must be 'yourself' or 'clothing'", http.StatusBadRequest)
		return
	}
	if len(req.FileBytes) == 0 {
		http.Error(w, "Image bytes are required", http.StatusBadRequest)
		return
	}

	previewBytes, err := preview.Generate(req.FileBytes)
	if err != nil {
		http.Error(w, "Unsupported or corrupted image data", http.StatusBadRequest)
		return
	}

	image, uploadsLeft, err := s.store.CreateImage(r.Context(), database.CreateImageParams{
		UserID:       claims.UserID,
		Category:     req.Category,
		FileBytes:    req.FileBytes,
		PreviewBytes: previewBytes,
	})
	if err != nil {
		if errors.Is(err, database.ErrNoUploadCredit) {
			http.Error(w, "No upload credit left", http.StatusPaymentRequired)
			return
		}
		http.Error(w, "Failed to store image", http.StatusInternalServerError)
		return
	}

	s.publishEvent(r.Context(), claims.UserID, "image_uploaded", image)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UploadImageResponse{
		ImageID:       image.ID,
		PreviewBase64: image.PreviewBytes,
		CreatedAt:     image.CreatedAt.Format(timeFormat),
		UploadsLeft:   uploadsLeft,
	})
}

type PreviewsResponse struct {
	Yourself    []models.ImagePreview      `json:"yourself"`
	Clothing    []models.ImagePreview      `json:"clothing"`
	Generations []models.GenerationPreview `json:"generations"`
}

// @Summary      List previews
// @Description  Returns lightweight previews of all the user's images grouped by category, plus recent generations, newest first.
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PreviewsResponse
// @Failure      401  {string}  string "Unauthorized"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /images [get]
func (s *Server) ListPreviewsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	previews, err := s.store.ListImagePreviews(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to list previews", http.StatusInternalServerError)
		return
	}

	generations, err := s.store.ListGenerationPreviews(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to list generation previews", http.StatusInternalServerError)
		return
	}

	response := PreviewsResponse{
		Yourself:    []models.ImagePreview{},
		Clothing:    []models.ImagePreview{},
		Generations: generations,
	}
	for _, p := range previews {
		switch p.Category {
		case models.CategoryYourself:
			response.Yourself = append(response.Yourself, p)
		case models.CategoryClothing:
			response.Clothing = append(response.Clothing, p)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

type FullImageResponse struct {
	ImageBase64 []byte `json:"image_base64"`
}

// @Summary      Get a full-resolution image
// @Description  Returns the original bytes of a stored image owned by the user.
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        imageId  path      string  true  "Image ID" format(uuid)
// @Success      200  {object}  FullImageResponse
// @Failure      400  {string}  string "Invalid image ID"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "Image not found"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /images/{imageId} [get]
func (s *Server) GetFullImageHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "imageId"))
	if err != nil {
		http.Error(w, "Invalid image ID format", http.StatusBadRequest)
		return
	}

	fileBytes, err := s.store.GetFullImage(r.Context(), claims.UserID, imageID)
	if err != nil {
		if errors.Is(err, database.ErrImageNotFound) {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FullImageResponse{ImageBase64: fileBytes})
}

type DeleteImageResponse struct {
	UploadsLeft int `json:"uploads_left"`
}

// @Summary      Delete an image
// @Description  Deletes an image owned by the user and refunds the upload credit it consumed.
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        imageId  path      string  true  "Image ID" format(uuid)
// @Success      200  {object}  DeleteImageResponse
// @Failure      400  {string}  string "Invalid image ID"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "Image not found"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /images/{imageId} [delete]
func (s *Server) DeleteImageHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "imageId"))
	if err != nil {
		http.Error(w, "Invalid image ID format", http.StatusBadRequest)
		return
	}

	uploadsLeft, err := s.store.DeleteImage(r.Context(), claims.UserID, imageID)
	if err != nil {
		if errors.Is(err, database.ErrImageNotFound) {
			http.Error(w, "Image not found or you do not have permission to delete it", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to delete image", http.StatusInternalServerError)
		return
	}

	s.publishEvent(r.Context(), claims.UserID, "image_deleted", map[string]string{"image_id": imageID.String()})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DeleteImageResponse{UploadsLeft: uploadsLeft})
}

type FavoriteResponse struct {
	Faved bool `json:"faved"`
}

// @Summary      Toggle image favorite
// @Description  Flips the favorite flag on an image owned by the user and returns the new value.
// @Tags         images
// @Produce      json
// @Security     BearerAuth
// @Param        imageId  path      string  true  "Image ID" format(uuid)
// @Success      200  {object}  FavoriteResponse
// @Failure      400  {string}  string "Invalid image ID"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "Image not found"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /images/{imageId}/favorite [post]
func (s *Server) ToggleImageFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	imageID, err := uuid.Parse(chi.URLParam(r, "imageId"))
	if err != nil {
		http.Error(w, "Invalid image ID format", http.StatusBadRequest)
		return
	}

	faved, err := s.store.ToggleImageFavorite(r.Context(), claims.UserID, imageID)
	if err != nil {
		if errors.Is(err, database.ErrImageNotFound) {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to toggle favorite", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FavoriteResponse{Faved: faved})
}
