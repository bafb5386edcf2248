package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestLogin covers the login handler with table-driven scenarios.
func TestLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "super_secret_for_tests_0123456789ab")

	tests := []struct {
		name           string
		method         string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Successful login",
			method:         http.MethodPost,
			body:           `{"email": "known@example.com", "password": "password1"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"token"`,
		},
		{
			name:           "Invalid method",
			method:         http.MethodGet,
			body:           ``,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   `"error":"Use POST method for login"`,
		},
		{
			name:           "Invalid JSON",
			method:         http.MethodPost,
			body:           `{"email": }`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"Bad JSON"`,
		},
		{
			name:           "Missing password",
			method:         http.MethodPost,
			body:           `{"email": "known@example.com"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"Email and password are required"`,
		},
		{
			name:           "Unknown email",
			method:         http.MethodPost,
			body:           `{"email": "ghost@example.com", "password": "password1"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"Invalid email or password"`,
		},
		{
			name:           "Wrong password",
			method:         http.MethodPost,
			body:           `{"email": "known@example.com", "password": "wrongpass"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"Invalid email or password"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			createUser(t, h, "known@example.com", "password1")

			req := httptest.NewRequest(tt.method, "/login", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			h.Login(rr, req)

			if status := rr.Code; status != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d (body=%s)", tt.expectedStatus, status, rr.Body.String())
			}

			body := strings.TrimSpace(rr.Body.String())
			if !strings.Contains(body, tt.expectedBody) {
				t.Errorf("Expected body to contain %q, got %q", tt.expectedBody, body)
			}
		})
	}
}

// logging in with no boards re-seeds the demo set
func TestLogin_SeedsWhenBoardless(t *testing.T) {
	t.Setenv("JWT_SECRET", "super_secret_for_tests_0123456789ab")
	h := newTestHandler(t)
	user := createUser(t, h, "known@example.com", "password1")

	req := httptest.NewRequest(http.MethodPost, "/login",
		bytes.NewBufferString(`{"email": "known@example.com", "password": "password1"}`))
	rr := httptest.NewRecorder()

	h.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if boards := h.Store.BoardsByUserID(user.ID); len(boards) != 2 {
		t.Fatalf("want 2 seeded boards after login, got %d", len(boards))
	}
}
