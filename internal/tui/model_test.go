package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"persona-relay/internal/models"
	"persona-relay/internal/transcript"
)

type stubRelay struct {
	reply string
	err   error
	calls int
	sent  []models.Message
}

func (s *stubRelay) Send(ctx context.Context, messages []models.Message) (string, error) {
	s.calls++
	s.sent = messages
	return s.reply, s.err
}

func newTestModel(relay transcript.Relay) (Model, *transcript.Transcript) {
	tr := transcript.New(relay)
	m := New(context.Background(), "OdinDev Assistant", tr)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model), tr
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

// findReply runs cmd (and any batched commands) until a replyMsg appears.
func findReply(t *testing.T, cmd tea.Cmd) replyMsg {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	switch msg := cmd().(type) {
	case replyMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if r, ok := c().(replyMsg); ok {
				return r
			}
		}
	}
	t.Fatalf("no reply message produced")
	return replyMsg{}
}

func TestModel_EnterSendsAndCompletes(t *testing.T) {
	relay := &stubRelay{reply: "greetings"}
	m, tr := newTestModel(relay)

	m = typeText(m, "hello")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if !tr.Loading() {
		t.Fatalf("expected loading after enter")
	}
	if got := m.input.Value(); got != "" {
		t.Errorf("expected input cleared, got %q", got)
	}

	reply := findReply(t, cmd)
	updated, _ = m.Update(reply)
	m = updated.(Model)

	if tr.Loading() {
		t.Errorf("expected loading cleared after reply")
	}
	msgs := tr.Messages()
	if len(msgs) != 2 || msgs[0].Content != "hello" || msgs[1].Content != "greetings" {
		t.Fatalf("unexpected transcript %+v", msgs)
	}
	if relay.calls != 1 {
		t.Errorf("expected one relay call, got %d", relay.calls)
	}
	if !strings.Contains(m.View(), "greetings") {
		t.Errorf("expected reply in view")
	}
}

func TestModel_BlankEnterIsIgnored(t *testing.T) {
	relay := &stubRelay{reply: "unused"}
	m, tr := newTestModel(relay)

	m = typeText(m, "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Errorf("expected no command for blank input")
	}
	if len(tr.Messages()) != 0 || tr.Loading() {
		t.Errorf("blank input must not change the transcript")
	}
}

func TestModel_EnterWhileLoadingIsIgnored(t *testing.T) {
	relay := &stubRelay{reply: "r"}
	m, tr := newTestModel(relay)

	m = typeText(m, "one")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	m = typeText(m, "two")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if cmd != nil {
		t.Errorf("expected no command while a reply is pending")
	}
	if len(tr.Messages()) != 1 {
		t.Errorf("expected one message, got %d", len(tr.Messages()))
	}
}

func TestModel_FailureShowsErrorReply(t *testing.T) {
	relay := &stubRelay{err: errors.New("connection refused")}
	m, tr := newTestModel(relay)

	m = typeText(m, "hello")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	updated, _ = m.Update(findReply(t, cmd))
	m = updated.(Model)

	msgs := tr.Messages()
	if len(msgs) != 2 || msgs[1].Content != transcript.ErrorReply {
		t.Fatalf("expected error reply, got %+v", msgs)
	}
	if !strings.Contains(m.View(), "Sorry, I encountered an error") {
		t.Errorf("expected error reply in view")
	}
}

func TestModel_QuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyType
	}{
		{"ctrl+c", tea.KeyCtrlC},
		{"esc", tea.KeyEsc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestModel(&stubRelay{})
			_, cmd := m.Update(tea.KeyMsg{Type: tt.key})
			if cmd == nil {
				t.Fatalf("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Errorf("expected tea.QuitMsg")
			}
		})
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := New(context.Background(), "Syn", transcript.New(&stubRelay{}))
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() = %q, want Initializing...", got)
	}
}

func TestModel_HeaderShowsTitle(t *testing.T) {
	m, _ := newTestModel(&stubRelay{})
	if !strings.Contains(m.View(), "OdinDev Assistant") {
		t.Errorf("expected persona title in header")
	}
}
