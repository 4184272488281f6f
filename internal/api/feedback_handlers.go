package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"banana-api/internal/database"
)

type CreateFeedbackRequest struct {
	Message string `json:"message" example:"Previews load slowly on mobile"`
}

// @Summary      Submit feedback
// @Description  Stores a free-text feedback message. Each user may keep at most five feedback entries.
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        feedbackRequest  body      CreateFeedbackRequest  true  "Feedback message"
// @Success      201  {object}  models.Feedback
// @Failure      400  {string}  string "Bad Request"
// @Failure      401  {string}  string "Unauthorized"
// @Failure      404  {string}  string "User not found"
// @Failure      409  {string}  string "Feedback limit reached"
// @Failure      500  {string}  string "Internal Server Error"
// @Router       /feedback [post]
func (s *Server) CreateFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	var req CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	feedback, err := s.store.CreateFeedback(r.Context(), claims.UserID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrFeedbackLimit):
			http.Error(w, "Feedback limit reached", http.StatusConflict)
		case errors.Is(err, database.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			http.Error(w, "Failed to store feedback", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(feedback)
}
