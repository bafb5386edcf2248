package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taskboard-app/taskboard/internal/models"
	"github.com/taskboard-app/taskboard/internal/store"
)

/*
handles routes:
- GET /tasks?board_id={id} - list tasks for a board
- POST /tasks - create a new task
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	boardID, err := strconv.ParseInt(r.URL.Query().Get("board_id"), 10, 64)
	if err != nil {
		sendError(w, "board_id is required (number)", http.StatusBadRequest)
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

	sendJSON(w, http.StatusOK, h.Store.TasksByBoardID(boardID))
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
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
		BoardID     int64   `json:"boardId"`
		Title       string  `json:"title"`
		Description string  `json:"description"`
		DueDate     *string `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || input.BoardID == 0 {
		sendError(w, "Title and boardId are required", http.StatusBadRequest)
		return
	}
	if len(input.Title) > 200 {
		sendError(w, "Title too long (max 200 chars)", http.StatusBadRequest)
		return
	}

	dueDate, ok := parseDueDate(input.DueDate)
	if !ok {
		sendError(w, "dueDate must be an RFC 3339 timestamp", http.StatusBadRequest)
		return
	}

	// the board must exist and belong to the caller
	board, err := h.Store.FindBoardByID(input.BoardID)
	if err != nil || board.UserID != userID {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}

	task, err := h.Store.CreateTask(input.Title, strings.TrimSpace(input.Description), board.ID, dueDate)
	if err != nil {
		log.Printf("Error creating task on board %d: %v", board.ID, err)
		sendError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskEvent("task_created", task)
	w.Header().Set("Location", "/tasks/"+strconv.FormatInt(task.ID, 10))
	sendJSON(w, http.StatusCreated, task)
}

/*
routes:
- GET /tasks/{id}
- PUT/PATCH /tasks/{id}
- DELETE /tasks/{id}
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/tasks/")
	if idStr == "" {
		sendError(w, "Task ID is required", http.StatusBadRequest)
		return
	}
	taskID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		sendError(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTaskByID(w, r, taskID)
	case http.MethodPut, http.MethodPatch:
		h.updateTaskByID(w, r, taskID)
	case http.MethodDelete:
		h.deleteTaskByID(w, r, taskID)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ownedTask loads the task and checks the caller owns its board.
// Writes the error response itself when it returns nil.
func (h *Handler) ownedTask(w http.ResponseWriter, taskID, userID int64) *models.Task {
	task, err := h.Store.FindTaskByID(taskID)
	if err != nil {
		sendError(w, "Task not found", http.StatusNotFound)
		return nil
	}
	board, err := h.Store.FindBoardByID(task.BoardID)
	if err != nil {
		sendError(w, "Board not found", http.StatusNotFound)
		return nil
	}
	if board.UserID != userID {
		sendError(w, "Access denied", http.StatusForbidden)
		return nil
	}
	return task
}

func (h *Handler) getTaskByID(w http.ResponseWriter, r *http.Request, taskID int64) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	task := h.ownedTask(w, taskID, userID)
	if task == nil {
		return
	}
	sendJSON(w, http.StatusOK, task)
}

func (h *Handler) updateTaskByID(w http.ResponseWriter, r *http.Request, taskID int64) {
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

	task := h.ownedTask(w, taskID, userID)
	if task == nil {
		return
	}

	var input struct {
		Title       *string         `json:"title"`
		Description *string         `json:"description"`
		Status      *string         `json:"status"`
		DueDate     json.RawMessage `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	upd := store.TaskUpdate{Description: input.Description}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			sendError(w, "Title cannot be empty", http.StatusBadRequest)
			return
		}
		if len(title) > 200 {
			sendError(w, "Title too long (max 200 chars)", http.StatusBadRequest)
			return
		}
		upd.Title = &title
	}
	if input.Status != nil {
		status := normalizeStatus(*input.Status)
		if status == "" {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return
		}
		upd.Status = &status
	}
	if input.DueDate != nil {
		upd.DueDateSet = true
		if string(input.DueDate) != "null" {
			var raw string
			if err := json.Unmarshal(input.DueDate, &raw); err != nil {
				sendError(w, "dueDate must be an RFC 3339 timestamp or null", http.StatusBadRequest)
				return
			}
			due, ok := parseDueDate(&raw)
			if !ok {
				sendError(w, "dueDate must be an RFC 3339 timestamp or null", http.StatusBadRequest)
				return
			}
			upd.DueDate = due
		}
	}

	updated, err := h.Store.UpdateTask(taskID, upd)
	if err != nil {
		log.Printf("Error updating task %d: %v", taskID, err)
		sendError(w, "Failed to update task", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskEvent("task_updated", updated)
	sendJSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteTaskByID(w http.ResponseWriter, r *http.Request, taskID int64) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	task := h.ownedTask(w, taskID, userID)
	if task == nil {
		return
	}

	deleted, err := h.Store.DeleteTask(taskID)
	if err != nil || !deleted {
		log.Printf("Error deleting task %d: %v", taskID, err)
		sendError(w, "Failed to delete task", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskEvent("task_deleted", task)
	w.WriteHeader(http.StatusNoContent)
}

// convert various user inputs to standard status values
func normalizeStatus(s string) models.TaskStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return models.TaskStatusPending
	case "completed", "done":
		return models.TaskStatusCompleted
	default:
		return ""
	}
}

// parseDueDate accepts a nil pointer (no due date) or an RFC 3339 string.
func parseDueDate(raw *string) (*time.Time, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	due, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, false
	}
	return &due, true
}
