package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/taskboard-app/taskboard/internal/models"
)

type WSHub struct {
	connections map[int64]map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[int64]map[*websocket.Conn]bool)}
}

// BroadcastTaskEvent sends a task event to every WebSocket connection
// subscribed to the task's board.
func (hub *WSHub) BroadcastTaskEvent(event string, task *models.Task) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	conns, exists := hub.connections[task.BoardID]
	if !exists {
		return
	}

	message, err := json.Marshal(map[string]interface{}{
		"event":    event,
		"task_id":  task.ID,
		"board_id": task.BoardID,
		"title":    task.Title,
		"status":   task.Status,
	})
	if err != nil {
		log.Printf("Failed to marshal task event: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message: %v", err)
			delete(conns, conn)
			conn.Close()
		}
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	clientIP := r.RemoteAddr
	if h.RateLimiter != nil && !h.RateLimiter.Allow(clientIP) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}

	boardID, err := strconv.ParseInt(r.URL.Query().Get("board_id"), 10, 64)
	if err != nil {
		sendError(w, "board_id is required (number)", http.StatusBadRequest)
		return
	}

	// only the board owner may subscribe
	board, err := h.Store.FindBoardByID(boardID)
	if err != nil || board.UserID != userID {
		sendError(w, "Board not found", http.StatusNotFound)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Adjust for production (e.g., check specific origins)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.WSHub.mutex.Lock()
	if h.WSHub.connections[boardID] == nil {
		h.WSHub.connections[boardID] = make(map[*websocket.Conn]bool)
	}
	h.WSHub.connections[boardID][conn] = true
	h.WSHub.mutex.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.WSHub.mutex.Lock()
			delete(h.WSHub.connections[boardID], conn)
			h.WSHub.mutex.Unlock()
			conn.Close()
			return
		}
	}
}
