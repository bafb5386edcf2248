package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/taskboard-app/taskboard/internal/store"
)

/*
handles routes:
GET /boards - list boards of the authenticated user
POST /boards - create board
*/
func (h *Handler) HandleBoards(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBoards(w, r)
	case http.MethodPost:
		h.createBoard(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) HandleBoardByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/boards/")
	if idStr == "" {
		sendError(w, "Board ID is required", http.StatusBadRequest)
		return
	}
	boardID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		sendError(w, "Invalid board ID", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		h.getBoard(w, r, boardID)
	case http.MethodPut:
		h.updateBoard(w, r, boardID)
	case http.MethodDelete:
		h.deleteBoard(w, r, boardID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listBoards(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	boards := h.Store.BoardsByUserID(userID)
	if len(boards) == 0 {
		// first visit after losing everything: hand out the demo set
		if err := h.Store.SeedDemoData(userID); err != nil {
			log.Printf("Error seeding demo data for user %d: %v", userID, err)
			sendError(w, "Failed to fetch boards", http.StatusInternalServerError)
			return
		}
		boards = h.Store.BoardsByUserID(userID)
	}
	sendJSON(w, http.StatusOK, boards)
}

func (h *Handler) createBoard(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || len(input.Name) > 100 {
		sendError(w, "Board name is required and must be <= 100 characters", http.StatusBadRequest)
		return
	}
	if len(input.Description) > 500 {
		sendError(w, "Description must be <= 500 characters", http.StatusBadRequest)
		return
	}

	board, err := h.Store.CreateBoard(input.Name, strings.TrimSpace(input.Description), userID)
	if err != nil {
		log.Printf("Error creating board for user %d: %v", userID, err)
		sendError(w, "Failed to create board", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Location", "/boards/"+strconv.FormatInt(board.ID, 10))
	sendJSON(w, http.StatusCreated, board)
}

func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request, boardID int64) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	board, err := h.Store.FindBoardByID(boardID)
	if err != nil || board.UserID != userID {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}
	sendJSON(w, http.StatusOK, board)
}

func (h *Handler) updateBoard(w http.ResponseWriter, r *http.Request, boardID int64) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	board, err := h.Store.FindBoardByID(boardID)
	if err != nil {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}
	if board.UserID != userID {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}

	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	upd := store.BoardUpdate{Description: input.Description}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > 100 {
			sendError(w, "Board name is required and must be <= 100 characters", http.StatusBadRequest)
			return
		}
		upd.Name = &name
	}
	if input.Description != nil && len(*input.Description) > 500 {
		sendError(w, "Description must be <= 500 characters", http.StatusBadRequest)
		return
	}

	updated, err := h.Store.UpdateBoard(boardID, upd)
	if err != nil {
		if errors.Is(err, store.ErrBoardNotFound) {
			sendError(w, "Board not found", http.StatusNotFound)
			return
		}
		log.Printf("Error updating board %d: %v", boardID, err)
		sendError(w, "Failed to update board", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteBoard(w http.ResponseWriter, r *http.Request, boardID int64) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	board, err := h.Store.FindBoardByID(boardID)
	if err != nil {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}
	if board.UserID != userID {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}

	deleted, err := h.Store.DeleteBoard(boardID)
	if err != nil {
		log.Printf("Error deleting board %d: %v", boardID, err)
		sendError(w, "Failed to delete board", http.StatusInternalServerError)
		return
	}
	if !deleted {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
