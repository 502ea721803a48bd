// Package transcript keeps the ordered conversation shown to the user and
// drives one relay call per submission.
package transcript

import (
	"context"
	"errors"
	"strings"
	"sync"

	"persona-relay/internal/models"
)

// ErrorReply is appended in place of a reply whenever a submission fails.
const ErrorReply = "Sorry, I encountered an error. Please try again."

var (
	ErrEmptyMessage = errors.New("empty message")
	ErrBusy         = errors.New("a response is already pending")
)

// Relay sends the full transcript and returns the assistant's reply.
type Relay interface {
	Send(ctx context.Context, messages []models.Message) (string, error)
}

type Transcript struct {
	mu       sync.Mutex
	relay    Relay
	messages []models.Message
	loading  bool
	lastErr  error
}

func New(relay Relay) *Transcript {
	return &Transcript{relay: relay}
}

// Messages returns a copy of the transcript in conversation order.
func (t *Transcript) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]models.Message(nil), t.messages...)
}

func (t *Transcript) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// LastError is the failure behind the most recent ErrorReply, or nil.
func (t *Transcript) LastError() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Begin appends the user message and marks the transcript as loading. It
// returns the history to send. Blank input and submissions made while a
// reply is pending are rejected without touching the transcript.
func (t *Transcript) Begin(text string) ([]models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loading {
		return nil, ErrBusy
	}

	t.messages = append(t.messages, models.Message{Role: models.RoleUser, Content: text})
	t.loading = true

	return append([]models.Message(nil), t.messages...), nil
}

// Complete records the outcome of the call started by Begin and clears the loading flag.
func (t *Transcript) Complete(reply string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.loading = false
	t.lastErr = err

	if err != nil {
		reply = ErrorReply
	}
	t.messages = append(t.messages, models.Message{Role: models.RoleAssistant, Content: reply})
}

// Submit runs Begin, one relay call, and Complete. The loading flag is
// released on every exit path, including a panicking relay.
func (t *Transcript) Submit(ctx context.Context, text string) error {
	history, err := t.Begin(text)
	if err != nil {
		return err
	}

	var (
		reply   string
		sendErr error
	)
	defer func() {
		if rec := recover(); rec != nil {
			t.Complete("", errors.New("relay panicked"))
			panic(rec)
		}
		t.Complete(reply, sendErr)
	}()

	reply, sendErr = t.Send(ctx, history)
	return sendErr
}

// Send performs the relay call for a history returned by Begin. It does not
// touch the transcript; pass its result to Complete.
func (t *Transcript) Send(ctx context.Context, history []models.Message) (string, error) {
	return t.relay.Send(ctx, history)
}
