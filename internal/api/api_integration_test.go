package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"banana-api/internal/database"
	"banana-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func loginUserForTest(t *testing.T, email, password string) TokenResponse {
	t.Helper()
	loginReq := LoginRequest{Email: email, Password: password}
	body, _ := json.Marshal(loginReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var res TokenResponse
	err := json.Unmarshal(rr.Body.Bytes(), &res)
	require.NoError(t, err)
	return res
}

func TestLoginHandler_Integration(t *testing.T) {
	claims := createAPITestUser(t, "login_test@example.com", 10, 5, 5)

	t.Run("successful login", func(t *testing.T) {
		res := loginUserForTest(t, "login_test@example.com", "password")
		require.NotEmpty(t, res.AccessToken)
		require.NotEmpty(t, res.RefreshToken)

		var sessionCount int
		err := testPool.QueryRow(context.Background(),
			"SELECT COUNT(*) FROM sessions WHERE user_id = $1", claims.UserID).Scan(&sessionCount)
		require.NoError(t, err)
		require.Equal(t, 1, sessionCount, "A session should be created in the database")
	})

	t.Run("invalid password", func(t *testing.T) {
		loginReq := LoginRequest{Email: "login_test@example.com", Password: "wrong_password"}
		body, _ := json.Marshal(loginReq)
		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		loginReq := LoginRequest{Email: "nobody@example.com", Password: "password"}
		body, _ := json.Marshal(loginReq)
		req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
		rr := httptest.NewRecorder()

		http.HandlerFunc(testServer.LoginHandler).ServeHTTP(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRefreshTokenHandler_Integration(t *testing.T) {
	createAPITestUser(t, "refresh_test@example.com", 10, 5, 5)
	loginResp := loginUserForTest(t, "refresh_test@example.com", "password")
	require.NotEmpty(t, loginResp.RefreshToken)

	refreshReq := RefreshTokenRequest{RefreshToken: loginResp.RefreshToken}
	body, _ := json.Marshal(refreshReq)
	req := httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	http.HandlerFunc(testServer.RefreshTokenHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var refreshResp TokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &refreshResp))
	require.NotEmpty(t, refreshResp.AccessToken)
	require.NotEmpty(t, refreshResp.RefreshToken)
	require.NotEqual(t, loginResp.RefreshToken, refreshResp.RefreshToken)

	// Stary token został zrotowany i nie może działać drugi raz.
	body, _ = json.Marshal(RefreshTokenRequest{RefreshToken: loginResp.RefreshToken})
	req = httptest.NewRequest("POST", "/api/v1/auth/refresh", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	http.HandlerFunc(testServer.RefreshTokenHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionHandlers_Integration(t *testing.T) {
	claims := createAPITestUser(t, "session_test@example.com", 10, 5, 5)

	loginUserForTest(t, "session_test@example.com", "password")
	time.Sleep(10 * time.Millisecond)
	loginResp2 := loginUserForTest(t, "session_test@example.com", "password")

	router := chi.NewRouter()
	router.Use(testServer.AuthMiddleware)
	router.Get("/api/v1/sessions", testServer.ListSessionsHandler)
	router.Delete("/api/v1/sessions/{sessionId}", testServer.DeleteSessionHandler)
	router.Post("/api/v1/sessions/terminate_all", testServer.TerminateAllSessionsHandler)

	reqList := httptest.NewRequest("GET", "/api/v1/sessions", nil)
	reqList.Header.Set("Authorization", "Bearer "+loginResp2.AccessToken)
	rrList := httptest.NewRecorder()
	router.ServeHTTP(rrList, reqList)

	require.Equal(t, http.StatusOK, rrList.Code)
	var sessions []models.Session
	require.NoError(t, json.Unmarshal(rrList.Body.Bytes(), &sessions))
	require.Len(t, sessions, 2)

	urlDelete := fmt.Sprintf("/api/v1/sessions/%s", sessions[1].ID)
	reqDelete := httptest.NewRequest("DELETE", urlDelete, nil)
	reqDelete.Header.Set("Authorization", "Bearer "+loginResp2.AccessToken)
	rrDelete := httptest.NewRecorder()
	router.ServeHTTP(rrDelete, reqDelete)

	require.Equal(t, http.StatusNoContent, rrDelete.Code)

	sessionsAfterDelete, err := testServer.store.ListSessionsForUser(context.Background(), claims.UserID)
	require.NoError(t, err)
	require.Len(t, sessionsAfterDelete, 1)

	reqTerminate := httptest.NewRequest("POST", "/api/v1/sessions/terminate_all", nil)
	reqTerminate.Header.Set("Authorization", "Bearer "+loginResp2.AccessToken)
	rrTerminate := httptest.NewRecorder()
	router.ServeHTTP(rrTerminate, reqTerminate)

	require.Equal(t, http.StatusNoContent, rrTerminate.Code)

	sessionsAfterTerminate, err := testServer.store.ListSessionsForUser(context.Background(), claims.UserID)
	require.NoError(t, err)
	require.Len(t, sessionsAfterTerminate, 0)
}

func TestGetCurrentUserHandler_RenewalDate(t *testing.T) {
	claims := createAPITestUser(t, "me_premium@example.com", 10, 5, 5)
	_, err := testPool.Exec(context.Background(),
		`UPDATE users SET user_type = 'premium', last_payment_at = '2024-01-31' WHERE user_id = $1`,
		claims.UserID)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetCurrentUserHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "premium", resp.UserType)
	require.NotNil(t, resp.NextRenewalDate)
	// 31 stycznia + miesiąc = ostatni dzień lutego (2024 jest przestępny).
	require.Equal(t, "2024-02-29", *resp.NextRenewalDate)
}

func TestGetCurrentUserHandler_FreeUserNoRenewal(t *testing.T) {
	claims := createAPITestUser(t, "me_free@example.com", 10, 5, 5)

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	rr := httptest.NewRecorder()
	req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetCurrentUserHandler).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp UserResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Nil(t, resp.NextRenewalDate)
	require.Equal(t, 10, resp.UploadsLeft)
}

func TestCreateFeedbackHandler_Integration(t *testing.T) {
	claims := createAPITestUser(t, "feedback_api@example.com", 10, 5, 5)

	send := func(message string) *httptest.ResponseRecorder {
		payload := CreateFeedbackRequest{Message: message}
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest("POST", "/api/v1/feedback", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		req = req.WithContext(context.WithValue(req.Context(), userContextKey, claims))
		http.HandlerFunc(testServer.CreateFeedbackHandler).ServeHTTP(rr, req)
		return rr
	}

	for i := 0; i < 5; i++ {
		rr := send(fmt.Sprintf("opinia numer %d", i))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := send("szósta opinia się nie mieści")
	require.Equal(t, http.StatusConflict, rr.Code)

	rr = send("   ")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetEventsHandler_Integration(t *testing.T) {
	claims := createAPITestUser(t, "events_api@example.com", 10, 5, 5)

	// Upload generuje wpis w dzienniku zdarzeń.
	payload := UploadImageRequest{Category: "yourself", FileBytes: makeTestPNG(t, 50, 50)}
	body, _ := json.Marshal(payload)
	reqUpload := httptest.NewRequest("POST", "/api/v1/images", bytes.NewReader(body))
	rrUpload := httptest.NewRecorder()
	reqUpload = reqUpload.WithContext(context.WithValue(reqUpload.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.UploadImageHandler).ServeHTTP(rrUpload, reqUpload)
	require.Equal(t, http.StatusCreated, rrUpload.Code)

	reqAll := httptest.NewRequest("GET", "/api/v1/events?since=0", nil)
	rrAll := httptest.NewRecorder()
	reqAll = reqAll.WithContext(context.WithValue(reqAll.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetEventsHandler).ServeHTTP(rrAll, reqAll)

	require.Equal(t, http.StatusOK, rrAll.Code)
	var events []database.Event
	require.NoError(t, json.Unmarshal(rrAll.Body.Bytes(), &events))
	require.GreaterOrEqual(t, len(events), 1)
	require.Equal(t, "image_uploaded", events[len(events)-1].EventType)

	lastEventID := events[len(events)-1].ID

	urlSince := fmt.Sprintf("/api/v1/events?since=%d", lastEventID)
	reqSince := httptest.NewRequest("GET", urlSince, nil)
	rrSince := httptest.NewRecorder()
	reqSince = reqSince.WithContext(context.WithValue(reqSince.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetEventsHandler).ServeHTTP(rrSince, reqSince)

	require.Equal(t, http.StatusOK, rrSince.Code)
	var noEvents []database.Event
	require.NoError(t, json.Unmarshal(rrSince.Body.Bytes(), &noEvents))
	require.Len(t, noEvents, 0, "There should be no new events since the last known ID")

	reqBad := httptest.NewRequest("GET", "/api/v1/events?since=abc", nil)
	rrBad := httptest.NewRecorder()
	reqBad = reqBad.WithContext(context.WithValue(reqBad.Context(), userContextKey, claims))
	http.HandlerFunc(testServer.GetEventsHandler).ServeHTTP(rrBad, reqBad)
	require.Equal(t, http.StatusBadRequest, rrBad.Code)
}

func TestAuthMiddleware_Integration(t *testing.T) {
	router := chi.NewRouter()
	router.With(testServer.AuthMiddleware).Get("/api/v1/me", testServer.GetCurrentUserHandler)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/me", nil)
		req.Header.Set("Authorization", "Token abc")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+testUserToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
	})
}
