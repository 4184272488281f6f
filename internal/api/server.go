package api

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"banana-api/internal/config"
	"banana-api/internal/database"
	"banana-api/internal/generate"
	"banana-api/internal/websocket"

	"github.com/google/uuid"
)

const timeFormat = time.RFC3339

type Server struct {
	config   *config.Config
	store    *database.Store
	composer generate.Composer
	wsHub    *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.Store, composer generate.Composer, wsHub *websocket.Hub) *Server {
	return &Server{
		config:   cfg,
		store:    store,
		composer: composer,
		wsHub:    wsHub,
	}
}

// publishEvent appends the event to the journal and pushes it to any
// websocket clients the user has connected. Failures are logged, never
// surfaced: the mutation that triggered the event already succeeded.
func (s *Server) publishEvent(ctx context.Context, userID uuid.UUID, eventType string, payload interface{}) {
	if err := s.store.LogEvent(ctx, userID, eventType, payload); err != nil {
		log.Printf("WARN: failed to journal event %s for user %s: %v", eventType, userID, err)
	}

	if s.wsHub == nil {
		return
	}
	data, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	})
	if err != nil {
		log.Printf("WARN: failed to marshal event %s: %v", eventType, err)
		return
	}
	s.wsHub.PublishEvent(userID, data)
}
