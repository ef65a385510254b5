package main

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/izbuzz/blackjackd/cmd/blackjackd/shared"
	"github.com/izbuzz/blackjackd/internal/client"
	"github.com/izbuzz/blackjackd/internal/tui"
)

// ClientCmd runs the interactive terminal client.
type ClientCmd struct {
	Server string `arg:"" default:"ws://localhost:8080/ws" help:"WebSocket server URL"`
	Debug  bool   `help:"Enable debug logging"`
}

func (c *ClientCmd) Run() error {
	level := "error"
	if c.Debug {
		level = "debug"
	}
	// Log lines would tear the TUI, so anything below error stays quiet
	// unless debugging.
	logger := shared.SetupLogger(level)

	model := tui.NewModel(client.New(c.Server, logger), logger)
	if err := model.Start(); err != nil {
		return err
	}

	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
