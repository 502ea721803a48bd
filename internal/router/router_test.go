package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"persona-relay/internal/handlers"
	"persona-relay/internal/persona"
	"persona-relay/internal/services"
)

// newRelay wires the real service against a stub upstream and returns the router.
func newRelay(t *testing.T, apiKey string, upstream http.HandlerFunc) (http.Handler, *int32) {
	t.Helper()

	var hits int32
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		upstream(w, r)
	}))
	t.Cleanup(up.Close)

	p, err := persona.Lookup("odindev")
	if err != nil {
		t.Fatalf("lookup persona: %v", err)
	}

	svc, err := services.NewGeminiService(context.Background(), services.GeminiOptions{
		APIKey:     apiKey,
		Model:      "gemini-2.0-flash",
		BaseURL:    up.URL,
		Transport:  services.TransportREST,
		HTTPClient: up.Client(),
	}, p, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewGeminiService: %v", err)
	}
	t.Cleanup(svc.Close)

	h := New(
		zerolog.Nop(),
		handlers.NewChatHandler(svc, zerolog.Nop()),
		handlers.NewHealthHandler(svc, "gemini-2.0-flash", services.TransportREST),
		Options{AllowedOrigins: []string{"*"}, MaxBodyBytes: 1024},
	)
	return h, &hits
}

func doChat(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_ChatRoundTrip(t *testing.T) {
	h, hits := newRelay(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`))
	})

	rr := doChat(h, `{"messages":[{"role":"user","content":"hello"}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["message"] != "hi" {
		t.Errorf("expected message 'hi', got %q", resp["message"])
	}
	if *hits != 1 {
		t.Errorf("expected exactly one upstream call, got %d", *hits)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Errorf("expected X-Request-ID on response")
	}
}

func TestRouter_MissingKeyMakesNoUpstreamCall(t *testing.T) {
	h, hits := newRelay(t, "", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("upstream must not be called without a key")
	})

	rr := doChat(h, `{"messages":[{"role":"user","content":"hello"}]}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error":"Gemini API key not configured"`) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
	if *hits != 0 {
		t.Errorf("expected zero upstream calls, got %d", *hits)
	}
}

func TestRouter_MissingKeyWinsOverMissingMessages(t *testing.T) {
	for _, body := range []string{`{}`, `{"messages":null}`} {
		h, hits := newRelay(t, "", func(w http.ResponseWriter, r *http.Request) {})

		rr := doChat(h, body)

		if rr.Code != http.StatusInternalServerError {
			t.Fatalf("body %s: expected status 500, got %d", body, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"error":"Gemini API key not configured"`) {
			t.Errorf("body %s: unexpected body %s", body, rr.Body.String())
		}
		if *hits != 0 {
			t.Errorf("body %s: expected zero upstream calls, got %d", body, *hits)
		}
	}
}

func TestRouter_MissingMessagesWithKeyIsGeneric(t *testing.T) {
	h, hits := newRelay(t, "test-key", func(w http.ResponseWriter, r *http.Request) {})

	rr := doChat(h, `{}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error":"An error occurred while processing your request"`) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
	if *hits != 0 {
		t.Errorf("expected zero upstream calls, got %d", *hits)
	}
}

func TestRouter_UpstreamStatusIsMirrored(t *testing.T) {
	h, hits := newRelay(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Permission denied"}}`))
	})

	rr := doChat(h, `{"messages":[{"role":"user","content":"hello"}]}`)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error":"Permission denied"`) {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
	if *hits != 1 {
		t.Errorf("expected one upstream call, got %d", *hits)
	}
}

func TestRouter_NoCandidatesFallsBack(t *testing.T) {
	h, _ := newRelay(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	rr := doChat(h, `{"messages":[{"role":"user","content":"hello"}]}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "I'm sorry, I couldn't generate a response.") {
		t.Errorf("unexpected body %s", rr.Body.String())
	}
}

func TestRouter_OversizedBodyRejected(t *testing.T) {
	big := `{"messages":[{"role":"user","content":"` + strings.Repeat("x", 4096) + `"}]}`

	tests := []struct {
		name          string
		contentLength int64
	}{
		{"declared length", int64(len(big))},
		{"chunked", -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, hits := newRelay(t, "test-key", func(w http.ResponseWriter, r *http.Request) {})

			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(big))
			req.Header.Set("Content-Type", "application/json")
			req.ContentLength = tc.contentLength
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != http.StatusRequestEntityTooLarge {
				t.Fatalf("expected status 413, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), `"error":"request body too large"`) {
				t.Errorf("unexpected body %s", rr.Body.String())
			}
			if *hits != 0 {
				t.Errorf("expected zero upstream calls, got %d", *hits)
			}
		})
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h, _ := newRelay(t, "test-key", func(w http.ResponseWriter, r *http.Request) {})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "relay_http_requests_total") {
		t.Errorf("metrics output missing relay_http_requests_total")
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _ := newRelay(t, "test-key", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard allow-origin, got %q", got)
	}
}
