package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/izbuzz/blackjackd/internal/client"
	"github.com/izbuzz/blackjackd/internal/protocol"
)

// Config describes one bot player.
type Config struct {
	ServerURL string
	Name      string
	// LobbyID joins an existing lobby; empty creates one and makes the bot
	// the host.
	LobbyID string
	// WaitFor is how many players (including the bot) must be in the lobby
	// before a hosting bot starts the game.
	WaitFor  int
	Strategy Strategy
}

// Bot is an automated player. It authenticates, joins or creates a lobby,
// starts the game when hosting, and plays its strategy until the outcome.
type Bot struct {
	cfg    Config
	client *client.Client
	logger *log.Logger

	mu       sync.Mutex
	playerID string
	lobbyID  string
	hosting  bool
	started  bool

	done chan struct{}
	once sync.Once
}

// New creates a bot. A nil strategy plays the dealer's policy.
func New(cfg Config, logger *log.Logger) *Bot {
	if cfg.Strategy == nil {
		cfg.Strategy = DefaultStrategy()
	}
	if cfg.WaitFor < 1 {
		cfg.WaitFor = 1
	}
	return &Bot{
		cfg:    cfg,
		client: client.New(cfg.ServerURL, logger),
		logger: logger.WithPrefix("bot").With("name", cfg.Name),
		done:   make(chan struct{}),
	}
}

// Run connects and plays one game, returning when the outcome arrives or
// the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.client.Connect(); err != nil {
		return err
	}
	defer func() { _ = b.client.Disconnect() }()

	b.client.On(protocol.TypeAuthResponse, b.onAuthResponse)
	b.client.On(protocol.TypeLobbyCreated, b.onLobbyCreated)
	b.client.On(protocol.TypeLobbyUpdate, b.onLobbyUpdate)
	b.client.On(protocol.TypeGameState, b.onGameState)
	b.client.On(protocol.TypeOutcome, b.onOutcome)
	b.client.On(protocol.TypeError, b.onError)

	if err := b.client.Auth(b.cfg.Name); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return nil
	}
}

// LobbyID returns the lobby the bot is in, empty before one is assigned.
func (b *Bot) LobbyID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lobbyID
}

func (b *Bot) finish() {
	b.once.Do(func() { close(b.done) })
}

func (b *Bot) onAuthResponse(msg *protocol.Message) {
	var data protocol.AuthResponseData
	if err := msg.Decode(&data); err != nil {
		b.logger.Error("failed to parse auth response", "error", err)
		return
	}
	if !data.Success {
		b.logger.Error("authentication failed", "error", data.Error)
		b.finish()
		return
	}

	b.mu.Lock()
	b.playerID = data.PlayerID
	b.mu.Unlock()

	var err error
	if b.cfg.LobbyID == "" {
		err = b.client.CreateLobby()
	} else {
		b.mu.Lock()
		b.lobbyID = b.cfg.LobbyID
		b.mu.Unlock()
		err = b.client.JoinLobby(b.cfg.LobbyID)
	}
	if err != nil {
		b.logger.Error("failed to enter lobby", "error", err)
		b.finish()
	}
}

func (b *Bot) onLobbyCreated(msg *protocol.Message) {
	var data protocol.LobbyCreatedData
	if err := msg.Decode(&data); err != nil {
		b.logger.Error("failed to parse lobby_created", "error", err)
		return
	}

	b.mu.Lock()
	b.lobbyID = data.LobbyID
	b.hosting = true
	b.mu.Unlock()

	b.logger.Info("hosting lobby", "lobby", data.LobbyID)
}

func (b *Bot) onLobbyUpdate(msg *protocol.Message) {
	var data protocol.LobbyUpdateData
	if err := msg.Decode(&data); err != nil {
		b.logger.Error("failed to parse lobby_update", "error", err)
		return
	}

	b.mu.Lock()
	shouldStart := b.hosting && !b.started &&
		data.Status == "open" && len(data.Players) >= b.cfg.WaitFor
	if shouldStart {
		b.started = true
	}
	lobbyID := b.lobbyID
	b.mu.Unlock()

	if shouldStart {
		b.logger.Info("starting game", "lobby", lobbyID, "players", len(data.Players))
		if err := b.client.StartGame(lobbyID); err != nil {
			b.logger.Error("failed to start game", "error", err)
			b.finish()
		}
	}
}

// onGameState plays the strategy whenever the table says it is our turn.
// The snapshot carries both whose turn it is and our score, so no separate
// action prompt is needed.
func (b *Bot) onGameState(msg *protocol.Message) {
	var data protocol.GameStateData
	if err := msg.Decode(&data); err != nil {
		b.logger.Error("failed to parse game_state", "error", err)
		return
	}

	b.mu.Lock()
	playerID := b.playerID
	b.mu.Unlock()

	if data.Turn != playerID {
		return
	}

	score, err := findScore(data.Hands, playerID)
	if err != nil {
		b.logger.Error("own hand missing from game state", "error", err)
		return
	}

	action := b.cfg.Strategy.Action(score)
	b.logger.Debug("deciding", "score", score, "action", action.String())
	if err := b.client.Decide(data.LobbyID, action.String()); err != nil {
		b.logger.Error("failed to send decision", "error", err)
	}
}

func (b *Bot) onOutcome(msg *protocol.Message) {
	var data protocol.OutcomeData
	if err := msg.Decode(&data); err == nil {
		if data.Winner == "" {
			b.logger.Info("game over, nobody won")
		} else {
			b.logger.Info("game over", "winner", data.Name)
		}
	}
	b.finish()
}

func (b *Bot) onError(msg *protocol.Message) {
	var data protocol.ErrorData
	if err := msg.Decode(&data); err != nil {
		return
	}
	b.logger.Error("server error", "code", data.Code, "message", data.Message)
	if data.Code == "game_aborted" {
		b.finish()
	}
}

func findScore(hands []protocol.HandInfo, playerID string) (int, error) {
	for _, h := range hands {
		if h.PlayerID == playerID {
			return h.Score, nil
		}
	}
	return 0, fmt.Errorf("no hand for player %s", playerID)
}
