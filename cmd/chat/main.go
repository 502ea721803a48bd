package main

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"persona-relay/internal/client"
	"persona-relay/internal/config"
	"persona-relay/internal/persona"
	"persona-relay/internal/transcript"
	"persona-relay/internal/tui"
)

func main() {
	cfg := config.Load()

	// The TUI owns stdout; logs go to stderr.
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relay := client.New(cfg.RelayURL)

	title := cfg.Persona
	if p, err := persona.Lookup(cfg.Persona); err == nil {
		title = p.Title
	}
	infoCtx, infoCancel := context.WithTimeout(ctx, 3*time.Second)
	if info, err := relay.Info(infoCtx); err == nil && info.Name != "" {
		title = info.Name
	} else if err != nil {
		logger.Warn().Err(err).Str("relay", cfg.RelayURL).Msg("relay info unavailable, using local persona title")
	}
	infoCancel()

	model := tui.New(ctx, title, transcript.New(relay))
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run(); err != nil {
		logger.Fatal().Err(err).Msg("chat client failed")
	}
}
