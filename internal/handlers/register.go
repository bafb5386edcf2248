package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/taskboard-app/taskboard/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		log.Printf("Invalid method for register: %s", r.Method)
		sendError(w, "Use POST method", http.StatusMethodNotAllowed)
		return
	}

	clientIP := r.RemoteAddr
	if h.RateLimiter != nil && !h.RateLimiter.Allow(clientIP) {
		log.Printf("Rate limit exceeded for IP: %s", clientIP)
		sendError(w, "Too many register attempts. Please try again later.", http.StatusTooManyRequests)
		return
	}

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Error decoding JSON: %v", err)
		sendError(w, "Bad JSON", http.StatusBadRequest)
		return
	}

	if input.Email == "" || input.Password == "" || input.Name == "" {
		sendError(w, "All fields are required", http.StatusBadRequest)
		return
	}
	if !isValidEmail(input.Email) {
		log.Printf("Invalid email format")
		sendError(w, "Invalid email", http.StatusBadRequest)
		return
	}
	if len(input.Password) < 6 {
		sendError(w, "Password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.FindUserByEmail(input.Email); !errors.Is(err, store.ErrUserNotFound) {
		sendError(w, "User already exists", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		sendError(w, "Cannot hash password", http.StatusInternalServerError)
		return
	}

	user, err := h.Store.CreateUser(input.Email, string(hash), input.Name, time.Now().UTC())
	if err != nil {
		log.Printf("Error creating user: %v", err)
		sendError(w, "Cannot save user", http.StatusInternalServerError)
		return
	}

	// new users get demo boards and tasks right away
	if err := h.Store.SeedDemoData(user.ID); err != nil {
		log.Printf("Error seeding demo data for user %d: %v", user.ID, err)
	}

	tokenString, err := generateJWTToken(user.ID)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		sendError(w, "Cannot create token", http.StatusInternalServerError)
		return
	}

	log.Printf("User registered: %s", user.Email)
	sendJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"token":   tokenString,
		"user": map[string]any{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
		},
	})
}

func isValidEmail(email string) bool {
	const emailRegex = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	re := regexp.MustCompile(emailRegex)
	return re.MatchString(email)
}
