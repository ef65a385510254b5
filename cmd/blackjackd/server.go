package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/quartz"

	"github.com/izbuzz/blackjackd/cmd/blackjackd/shared"
	"github.com/izbuzz/blackjackd/internal/server"
)

// ServerCmd runs the blackjack server.
type ServerCmd struct {
	Config     string `short:"c" default:"blackjackd.hcl" help:"Path to HCL configuration file"`
	Addr       string `short:"a" help:"Server address to bind to (overrides config)"`
	LogLevel   string `short:"l" help:"Log level (overrides config)"`
	NumDecks   int    `help:"Decks in the shoe (overrides config)"`
	Timeout    int    `help:"Decision timeout in seconds (overrides config)"`
	MaxPlayers int    `help:"Maximum players per lobby (overrides config)"`
	Seed       *int64 `help:"Deterministic RNG seed (optional)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}

	if c.Addr != "" {
		cfg.Server.Address = c.Addr
	}
	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.NumDecks > 0 {
		cfg.Game.NumDecks = c.NumDecks
	}
	if c.Timeout > 0 {
		cfg.Game.DecisionTimeoutSeconds = c.Timeout
	}
	if c.MaxPlayers > 0 {
		cfg.Game.MaxPlayers = c.MaxPlayers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.Server.LogLevel)

	var seed int64
	if c.Seed != nil {
		seed = *c.Seed
		logger.Info("using deterministic seed", "seed", seed)
	} else {
		seed = time.Now().UnixNano()
	}

	s := server.NewServer(logger)
	service := server.NewGameService(s, logger, cfg, seed, quartz.NewReal())
	s.SetGameService(service)

	logger.Info("starting blackjack server",
		"addr", cfg.Server.Address,
		"num_decks", cfg.Game.NumDecks,
		"decision_timeout_seconds", cfg.Game.DecisionTimeoutSeconds,
		"max_players", cfg.Game.MaxPlayers)

	ctx := shared.SetupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := s.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
