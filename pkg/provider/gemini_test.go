package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewGeminiClient(GeminiConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestGenerateSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-2.0-flash:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Error("missing api key header")
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hello"}]}}]}`))
	})

	resp, err := client.Generate(context.Background(), "gemini-2.0-flash", &GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hello" {
		t.Errorf("expected %q, got %q", "hello", resp.Text)
	}
	if resp.Model != "gemini-2.0-flash" {
		t.Errorf("expected model echoed, got %q", resp.Model)
	}
}

func TestGenerateClassifiesRateLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := client.Generate(context.Background(), "m", &GenerateRequest{Prompt: "hi"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	var rle *RateLimitError
	if !errors.As(err, &rle) {
		t.Fatalf("expected *RateLimitError, got %T", err)
	}
	if rle.RetryAfter != 120*time.Second {
		t.Errorf("expected retry-after 120s, got %s", rle.RetryAfter)
	}
}

func TestGenerateClassifiesOverload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Generate(context.Background(), "m", &GenerateRequest{Prompt: "hi"})
	if !errors.Is(err, ErrOverloaded) {
		t.Fatalf("expected ErrOverloaded, got %v", err)
	}

	var ole *OverloadedError
	if !errors.As(err, &ole) {
		t.Fatalf("expected *OverloadedError, got %T", err)
	}
	if ole.RetryAfter != 0 {
		t.Errorf("expected no retry-after hint, got %s", ole.RetryAfter)
	}
}

func TestGenerateOtherErrorsAreNotCapacity(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusInternalServerError} {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.Generate(context.Background(), "m", &GenerateRequest{Prompt: "hi"})
		if err == nil {
			t.Fatalf("status %d: expected error", status)
		}
		if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrOverloaded) {
			t.Errorf("status %d must not classify as capacity, got %v", status, err)
		}
		if _, ok := IsCapacityError(err); ok {
			t.Errorf("status %d: IsCapacityError must be false", status)
		}

		var pe *ProviderError
		if !errors.As(err, &pe) {
			t.Fatalf("status %d: expected *ProviderError, got %T", status, err)
		}
		if pe.StatusCode != status {
			t.Errorf("expected status %d recorded, got %d", status, pe.StatusCode)
		}
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Generate(context.Background(), "m", &GenerateRequest{Prompt: "hi"})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
}

func TestIsCapacityError(t *testing.T) {
	retry, ok := IsCapacityError(&RateLimitError{RetryAfter: 30 * time.Second})
	if !ok || retry != 30*time.Second {
		t.Errorf("expected (30s, true), got (%s, %v)", retry, ok)
	}

	retry, ok = IsCapacityError(&OverloadedError{})
	if !ok || retry != 0 {
		t.Errorf("expected (0, true), got (%s, %v)", retry, ok)
	}

	if _, ok := IsCapacityError(errors.New("boom")); ok {
		t.Error("plain errors must not classify as capacity")
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "300", 300 * time.Second},
		{"zero seconds", "0", 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRetryAfter(tt.header); got != tt.want {
				t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.header, got, tt.want)
			}
		})
	}

	t.Run("http date", func(t *testing.T) {
		header := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
		got := parseRetryAfter(header)
		if got <= 0 || got > time.Minute {
			t.Errorf("expected ~1m, got %s", got)
		}
	})
}
