package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/taskboard-app/taskboard/internal/handlers"
	"github.com/taskboard-app/taskboard/internal/store"
)

func main() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Error loading .env file: %v", err)
		}
	} else {
		log.Println(".env file not found, skipping — relying on environment variables")
	}

	validateEnv()

	dbFile := os.Getenv("DB_FILE")
	if dbFile == "" {
		dbFile = "data/db.json"
	}
	st := store.Open(dbFile)

	initHandlers(st)
	server := initServer()
	startServer(server)
}

func validateEnv() {
	if os.Getenv("SERVER_PORT") == "" {
		log.Fatal("Environment variable SERVER_PORT must be set")
	}
	if len(os.Getenv("JWT_SECRET")) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters")
	}
}

func initHandlers(st *store.Store) *handlers.Handler {
	handler := &handlers.Handler{
		Store: st,
		// allow max 5 register/login attempts per 15 minutes from the same IP
		RateLimiter: handlers.NewRateLimiter(5, 15*time.Minute),
		WSHub:       handlers.NewWSHub(),
	}
	http.HandleFunc("/register", handler.Register)
	http.HandleFunc("/login", handler.Login)
	http.HandleFunc("/boards", handler.AuthMiddleware(handler.HandleBoards))
	http.HandleFunc("/boards/", handler.AuthMiddleware(handler.HandleBoardByID))
	http.HandleFunc("/tasks", handler.AuthMiddleware(handler.HandleTasks))
	http.HandleFunc("/tasks/", handler.AuthMiddleware(handler.HandleTaskByID))
	http.HandleFunc("/ws", handler.AuthMiddleware(handler.HandleWebSocket))
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return handler
}

func initServer() *http.Server {
	return &http.Server{
		Addr: ":" + os.Getenv("SERVER_PORT"),
	}
}

func startServer(server *http.Server) {
	log.Printf("Starting server on :%s", os.Getenv("SERVER_PORT"))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped")
}
