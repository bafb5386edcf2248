package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/taskboard-app/taskboard/internal/models"
	"github.com/taskboard-app/taskboard/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return &Handler{
		Store: store.Open(filepath.Join(t.TempDir(), "db.json")),
		WSHub: NewWSHub(),
		// RateLimiter left nil: limits are exercised in their own tests
	}
}

func ctxWithUser(id int64, r *http.Request) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), "user_id", id))
}

func createUser(t *testing.T, h *Handler, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := h.Store.CreateUser(email, string(hash), "Test User", time.Now().UTC())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createBoard(t *testing.T, h *Handler, userID int64, name string) *models.Board {
	t.Helper()
	board, err := h.Store.CreateBoard(name, "d", userID)
	if err != nil {
		t.Fatalf("failed to create board for test: %v", err)
	}
	return board
}

func createTask(t *testing.T, h *Handler, boardID int64, title string) *models.Task {
	t.Helper()
	task, err := h.Store.CreateTask(title, "d", boardID, nil)
	if err != nil {
		t.Fatalf("failed to create task for test: %v", err)
	}
	return task
}
