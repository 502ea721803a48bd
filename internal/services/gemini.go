package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"persona-relay/internal/metrics"
	"persona-relay/internal/models"
	"persona-relay/internal/persona"
)

// FallbackReply replaces an upstream success that carries no usable text.
const FallbackReply = "I'm sorry, I couldn't generate a response."

const (
	TransportREST = "rest"
	TransportSDK  = "sdk"
)

// ErrAPIKeyNotConfigured is returned before any outbound call when no credential was configured.
var ErrAPIKeyNotConfigured = errors.New("gemini api key not configured")

// ErrNoMessages is returned for a missing or null messages array. It is
// checked after the credential so an unconfigured relay always says so.
var ErrNoMessages = errors.New("request has no messages array")

// UpstreamError is a non-success status returned by the generative-language API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini returned status %d: %s", e.Status, e.Message)
}

func newUpstreamError(status int, message string) *UpstreamError {
	if message == "" {
		message = fmt.Sprintf("API returned status %d", status)
	}
	return &UpstreamError{Status: status, Message: message}
}

// Transport performs exactly one generateContent call. It returns the first
// candidate's first text part, or "" when the response has no such text.
type Transport interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Close() error
}

type GeminiOptions struct {
	APIKey         string
	Model          string
	BaseURL        string // REST transport only
	Transport      string // "rest" | "sdk"
	ConcurrentReqs int    // 0 = unbounded
	HTTPClient     *http.Client
}

type GeminiService struct {
	apiKey        string
	persona       persona.Persona
	transport     Transport
	transportName string
	logger        zerolog.Logger
	rateChan      chan struct{} // nil when unbounded
}

func NewGeminiService(ctx context.Context, opts GeminiOptions, p persona.Persona, logger zerolog.Logger) (*GeminiService, error) {
	s := &GeminiService{
		apiKey:        opts.APIKey,
		persona:       p,
		transportName: opts.Transport,
		logger:        logger.With().Str("component", "gemini").Str("persona", p.Name).Logger(),
	}

	if opts.ConcurrentReqs > 0 {
		s.rateChan = make(chan struct{}, opts.ConcurrentReqs)
		for i := 0; i < opts.ConcurrentReqs; i++ {
			s.rateChan <- struct{}{}
		}
	}

	// Without a credential every request short-circuits, so no client is built.
	if opts.APIKey == "" {
		return s, nil
	}

	switch opts.Transport {
	case TransportREST, "":
		s.transportName = TransportREST
		s.transport = NewRESTTransport(opts.BaseURL, opts.Model, opts.APIKey, opts.HTTPClient)
	case TransportSDK:
		t, err := NewSDKTransport(ctx, opts.Model, opts.APIKey)
		if err != nil {
			return nil, err
		}
		s.transport = t
	default:
		return nil, fmt.Errorf("unknown gemini transport %q", opts.Transport)
	}

	return s, nil
}

// NewGeminiServiceWithTransport wires an already-built transport.
func NewGeminiServiceWithTransport(apiKey string, p persona.Persona, t Transport, name string, logger zerolog.Logger) *GeminiService {
	return &GeminiService{
		apiKey:        apiKey,
		persona:       p,
		transport:     t,
		transportName: name,
		logger:        logger,
	}
}

func (s *GeminiService) Close() {
	if s.transport != nil {
		s.transport.Close()
	}
}

// Configured reports whether a credential is present.
func (s *GeminiService) Configured() bool {
	return s.apiKey != ""
}

func (s *GeminiService) Persona() persona.Persona {
	return s.persona
}

// acquireRate blocks until a concurrency slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	if s.rateChan == nil {
		return nil
	}
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *GeminiService) releaseRate() {
	if s.rateChan != nil {
		s.rateChan <- struct{}{}
	}
}

// Generate relays one conversation upstream and returns the assistant's reply.
func (s *GeminiService) Generate(ctx context.Context, messages []models.Message) (string, error) {
	if s.apiKey == "" {
		return "", ErrAPIKeyNotConfigured
	}
	if messages == nil {
		return "", ErrNoMessages
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	req := BuildGenerateRequest(s.persona, messages)

	start := time.Now()
	text, err := s.transport.Generate(ctx, req)
	metrics.UpstreamLatency.WithLabelValues(s.transportName).Observe(time.Since(start).Seconds())
	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			s.logger.Warn().Int("status", upErr.Status).Str("upstream_message", upErr.Message).Msg("gemini api error")
		}
		return "", err
	}

	if text == "" {
		metrics.FallbackRepliesTotal.Inc()
		s.logger.Warn().Int("turns", len(req.Contents)).Msg("gemini returned no text, using fallback reply")
		return FallbackReply, nil
	}

	return text, nil
}
