package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// TestRateLimiter_Allow tests the Allow method for rate limiting logic.
func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		attempts []string // IPs to attempt
		expected []bool   // Expected results
	}{
		{
			name:     "Within limit",
			limit:    2,
			attempts: []string{"192.168.1.1", "192.168.1.1"},
			expected: []bool{true, true},
		},
		{
			name:     "Exceed limit",
			limit:    1,
			attempts: []string{"192.168.1.1", "192.168.1.1"},
			expected: []bool{true, false},
		},
		{
			name:     "Multiple IPs",
			limit:    1,
			attempts: []string{"192.168.1.1", "192.168.1.2"},
			expected: []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.limit, 1*time.Second)
			for i, ip := range tt.attempts {
				got := rl.Allow(ip)
				if got != tt.expected[i] {
					t.Errorf("Attempt %d for IP %s: expected %v, got %v", i+1, ip, tt.expected[i], got)
				}
			}
		})
	}
}

// TestRateLimiter_Cleanup verifies attempts reset after the window passes.
func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(5, 100*time.Millisecond)

	rl.Allow("192.168.1.1")
	rl.Allow("192.168.1.2")

	time.Sleep(150 * time.Millisecond)

	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	if len(rl.attempts) != 0 {
		t.Errorf("Expected attempts map to be empty after cleanup, got %d", len(rl.attempts))
	}
}

// TestRateLimiter_Concurrent tests concurrent access to Allow.
func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(3, 1*time.Second)
	ip := "192.168.1.1"
	var wg sync.WaitGroup
	results := make([]bool, 5)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = rl.Allow(ip)
		}(i)
	}
	wg.Wait()

	allowedCount := 0
	for _, result := range results {
		if result {
			allowedCount++
		}
	}
	if allowedCount > rl.limit {
		t.Errorf("Expected at most %d allowed attempts, got %d", rl.limit, allowedCount)
	}
}

// a limited register endpoint answers 429 once the budget is spent
func TestRegister_RateLimited(t *testing.T) {
	t.Setenv("JWT_SECRET", "super_secret_for_tests_0123456789ab")
	h := newTestHandler(t)
	h.RateLimiter = NewRateLimiter(1, time.Minute)

	body := `{"email": "a@example.com", "password": "strongpass", "name": "A"}`
	req1 := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	req1.RemoteAddr = "10.0.0.1:1234"
	rec1 := httptest.NewRecorder()
	h.Register(rec1, req1)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first attempt should pass, got %d body=%s", rec1.Code, rec1.Body.String())
	}

	req2 := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(body))
	req2.RemoteAddr = "10.0.0.1:1234"
	rec2 := httptest.NewRecorder()
	h.Register(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("want 429 on second attempt, got %d", rec2.Code)
	}
}
