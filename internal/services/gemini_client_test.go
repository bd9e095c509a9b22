package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mindgrove/mindgrove-backend/internal/platform/logger"
)

func TestGenerateCancelledDuringRetryBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("GEMINI_BASE_URL", server.URL)
	t.Setenv("GEMINI_MAX_RETRIES", "4")

	log, _ := logger.New("test")
	client, err := NewGeminiClient(log)
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err = client.Generate(ctx, "prompt", GenerateConfig{})
	elapsed := time.Since(start)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error kind: want=context.Canceled got=%v", err)
	}
	// Retry-After asked for a 5s wait; cancellation must cut it short.
	if elapsed > 2*time.Second {
		t.Fatalf("cancelled call took %s, want prompt return", elapsed)
	}
}
