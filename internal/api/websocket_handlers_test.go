package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"banana-api/internal/auth"
	"banana-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func startWsTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	router.Use(MetricsMiddleware)
	router.Get("/ws", testServer.ServeWsHandler)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestServeWsHandler_PushesEventAfterUpload(t *testing.T) {
	claims := createAPITestUser(t, "ws_push@example.com", 5, 5, 5)
	token, err := auth.GenerateJWT(&models.User{ID: claims.UserID, Email: claims.Email}, testServer.config.JWT.Secret)
	require.NoError(t, err)

	srv := startWsTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token

	// Handshake musi przejść przez pełny łańcuch middleware.
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err, "websocket handshake must survive the metrics middleware")
	defer conn.Close()

	// Rejestracja w hubie idzie przez kanał.
	time.Sleep(100 * time.Millisecond)

	payload := UploadImageRequest{Category: "yourself", FileBytes: makeTestPNG(t, 30, 30)}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/api/v1/images", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.UploadImageHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, message, err := conn.ReadMessage()
	require.NoError(t, err, "the upload should be pushed to the connected client")

	var event struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(message, &event))
	require.Equal(t, "image_uploaded", event.Type)
}

func TestServeWsHandler_RejectsBadToken(t *testing.T) {
	srv := startWsTestServer(t)

	for _, url := range []string{
		"ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		"ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage",
	} {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.Error(t, err, "handshake must fail without a valid token")
		if conn != nil {
			conn.Close()
		}
	}
}
