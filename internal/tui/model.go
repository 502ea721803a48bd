// Package tui renders a transcript as an interactive terminal chat.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"persona-relay/internal/models"
	"persona-relay/internal/transcript"
)

const (
	headerHeight = 1
	footerHeight = 4 // bordered input (3) + hint line
)

// replyMsg carries the outcome of one relay call back into Update.
type replyMsg struct {
	reply string
	err   error
}

type Model struct {
	ctx        context.Context
	title      string
	transcript *transcript.Transcript

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	ready  bool
}

func New(ctx context.Context, title string, tr *transcript.Transcript) Model {
	ti := textinput.New()
	ti.Placeholder = "Message " + title + "..."
	ti.Prompt = "› "
	ti.Focus()
	ti.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Blue)

	return Model{
		ctx:        ctx,
		title:      title,
		transcript: tr,
		input:      ti,
		spinner:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case replyMsg:
		m.transcript.Complete(msg.reply, msg.err)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.transcript.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a relay call for the current input. Blank input and
// submissions while a reply is pending are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	history, err := m.transcript.Begin(m.input.Value())
	if err != nil {
		return m, nil
	}
	m.input.Reset()
	m.refresh()

	tr := m.transcript
	ctx := m.ctx
	send := func() tea.Msg {
		reply, err := tr.Send(ctx, history)
		return replyMsg{reply: reply, err: err}
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	vpHeight := height - headerHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 6

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err == nil {
		m.renderer = r
	}

	m.refresh()
}

// refresh re-renders the transcript into the viewport and pins it to the bottom.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	msgs := m.transcript.Messages()
	if len(msgs) == 0 && !m.transcript.Loading() {
		return hintStyle.Render("Ask " + m.title + " anything.")
	}

	wrap := lipgloss.NewStyle().Width(max(m.width-2, 10))

	var b strings.Builder
	for _, msg := range msgs {
		switch msg.Role {
		case models.RoleUser:
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(msg.Content))
			b.WriteString("\n\n")
		default:
			b.WriteString(assistantLabelStyle.Render(m.title))
			b.WriteString("\n")
			if msg.Content == transcript.ErrorReply {
				b.WriteString(errorReplyStyle.Render(msg.Content))
				b.WriteString("\n\n")
			} else {
				b.WriteString(m.renderMarkdown(msg.Content))
			}
		}
	}

	if m.transcript.Loading() {
		b.WriteString(m.spinner.View())
		b.WriteString(hintStyle.Render(" thinking..."))
	}

	return b.String()
}

func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content + "\n\n"
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n\n"
	}
	return out
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := headerStyle.Width(m.width).Render(m.title)
	input := inputBoxStyle.Width(max(m.width-2, 10)).Render(m.input.View())
	hint := hintStyle.Render("enter send • ↑/↓ pgup/pgdn scroll • esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input, hint)
}
