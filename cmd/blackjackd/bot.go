package main

import (
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/izbuzz/blackjackd/cmd/blackjackd/shared"
	"github.com/izbuzz/blackjackd/internal/bot"
)

// BotCmd runs one or more automated players against a server. With no lobby
// given, the first bot hosts and starts once everyone is seated.
type BotCmd struct {
	Server   string `arg:"" default:"ws://localhost:8080/ws" help:"WebSocket server URL"`
	Count    int    `short:"n" default:"3" help:"Number of bots to run"`
	Lobby    string `help:"Existing lobby to join instead of hosting one"`
	HitBelow int    `default:"17" help:"Bots hit below this score"`
	Debug    bool   `help:"Enable debug logging"`
}

func (c *BotCmd) Run() error {
	level := "info"
	if c.Debug {
		level = "debug"
	}
	logger := shared.SetupLogger(level)

	if c.Count < 1 {
		return fmt.Errorf("count must be at least 1, got %d", c.Count)
	}

	g, ctx := errgroup.WithContext(shared.SetupSignalHandler(logger))

	lobbyID := c.Lobby
	strategy := bot.Threshold{HitBelow: c.HitBelow}
	bots := make([]*bot.Bot, c.Count)

	start := 0
	if lobbyID == "" {
		// The first bot hosts and starts the game once all bots are in.
		host := bot.New(bot.Config{
			ServerURL: c.Server,
			Name:      "bot-1",
			WaitFor:   c.Count,
			Strategy:  strategy,
		}, logger)
		bots[0] = host
		g.Go(func() error { return host.Run(ctx) })

		var err error
		lobbyID, err = waitForLobby(host)
		if err != nil {
			_ = g.Wait()
			return err
		}
		start = 1
	}

	for i := start; i < c.Count; i++ {
		b := bot.New(bot.Config{
			ServerURL: c.Server,
			Name:      fmt.Sprintf("bot-%d", i+1),
			LobbyID:   lobbyID,
			Strategy:  strategy,
		}, logger)
		bots[i] = b
		g.Go(func() error { return b.Run(ctx) })
	}

	return g.Wait()
}

func waitForLobby(host *bot.Bot) (string, error) {
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if id := host.LobbyID(); id != "" {
			return id, nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return "", fmt.Errorf("timed out waiting for the host bot to open a lobby")
}
