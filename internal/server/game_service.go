package server

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	uuid "github.com/satori/go.uuid"

	"github.com/izbuzz/blackjackd/internal/game"
	"github.com/izbuzz/blackjackd/internal/protocol"
	"github.com/izbuzz/blackjackd/internal/randutil"
)

var (
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrLobbyFull        = errors.New("lobby is full")
	ErrNoGameInProgress = errors.New("no game in progress")
)

// Messenger delivers wire messages to connected players. The Server
// implements it; tests substitute a recorder.
type Messenger interface {
	SendToPlayer(playerID string, msg *protocol.Message) error
}

// GameService owns all lobbies and running games. Each lobby hosts at most
// one game; each game runs on its own goroutine with decisions routed in
// through HandleDecision.
type GameService struct {
	logger    *log.Logger
	cfg       *Config
	messenger Messenger
	clock     quartz.Clock
	seed      int64

	ctx      context.Context
	cancelFn context.CancelFunc

	mu       sync.Mutex
	gamesRun int64
	lobbies  map[string]*session
}

// NewGameService creates the service. The seed makes every game's shuffle
// reproducible: game n uses seed+n.
func NewGameService(messenger Messenger, logger *log.Logger, cfg *Config, seed int64, clock quartz.Clock) *GameService {
	ctx, cancel := context.WithCancel(context.Background())
	return &GameService{
		logger:    logger.WithPrefix("games"),
		cfg:       cfg,
		messenger: messenger,
		clock:     clock,
		seed:      seed,
		ctx:       ctx,
		cancelFn:  cancel,
		lobbies:   make(map[string]*session),
	}
}

// Stop aborts all running games. Used during server shutdown only; a
// started game has no other cancellation path.
func (gs *GameService) Stop() {
	gs.cancelFn()
}

// CreateLobby opens a lobby with the caller as host and returns its ID.
func (gs *GameService) CreateLobby(playerID, playerName string) (string, error) {
	host := game.Participant{ID: game.ParticipantID(playerID), Name: playerName}
	lobbyID := uuid.NewV4().String()

	sess := &session{
		id:    lobbyID,
		svc:   gs,
		lobby: game.NewLobby(lobbyID, host),
	}

	gs.mu.Lock()
	gs.lobbies[lobbyID] = sess
	gs.mu.Unlock()

	gs.logger.Info("lobby created", "lobby", lobbyID, "host", playerName)

	created, err := protocol.NewMessage(protocol.TypeLobbyCreated, protocol.LobbyCreatedData{
		LobbyID: lobbyID,
		Host:    lobbyPlayerFromGame(host),
	})
	if err != nil {
		return "", err
	}
	if err := gs.messenger.SendToPlayer(playerID, created); err != nil {
		gs.logger.Error("failed to deliver lobby_created", "error", err)
	}

	sess.AnnounceLobby(host, sess.lobby.Participants())
	return lobbyID, nil
}

// JoinLobby adds a player to an open lobby. A duplicate join surfaces
// ErrAlreadyJoined to the requester and changes nothing.
func (gs *GameService) JoinLobby(lobbyID, playerID, playerName string) error {
	sess, err := gs.session(lobbyID)
	if err != nil {
		return err
	}
	if len(sess.lobby.Participants()) >= gs.cfg.Game.MaxPlayers {
		return ErrLobbyFull
	}

	p := game.Participant{ID: game.ParticipantID(playerID), Name: playerName}
	participants, err := sess.lobby.Join(p)
	if err != nil {
		return err
	}

	gs.logger.Info("player joined lobby", "lobby", lobbyID, "player", playerName)
	sess.UpdateParticipants(participants)
	return nil
}

// StartGame finalizes the lobby and launches the game on its own goroutine.
// Only the host may start.
func (gs *GameService) StartGame(lobbyID, playerID string) error {
	sess, err := gs.session(lobbyID)
	if err != nil {
		return err
	}

	order, err := sess.lobby.Start(game.ParticipantID(playerID))
	if err != nil {
		return err
	}

	gs.mu.Lock()
	gs.gamesRun++
	gameSeed := gs.seed + gs.gamesRun
	gs.mu.Unlock()

	engine := game.New(order, sess, gs.logger.With("lobby", lobbyID),
		game.WithConfig(gs.cfg.GameConfig()),
		game.WithClock(gs.clock),
		game.WithRand(randutil.New(gameSeed)),
	)
	sess.setEngine(engine)

	gs.logger.Info("game started", "lobby", lobbyID, "players", len(order), "seed", gameSeed)
	go gs.runGame(sess, engine)
	return nil
}

// runGame drives one game to completion and tears the lobby down after.
func (gs *GameService) runGame(sess *session, engine *game.Engine) {
	_, err := engine.Run(gs.ctx)
	if err != nil {
		// Only shoe exhaustion or shutdown lands here; both abort the game.
		gs.logger.Error("game aborted", "lobby", sess.id, "error", err)
		msg, merr := protocol.NewMessage(protocol.TypeError, protocol.ErrorData{
			Code:    "game_aborted",
			Message: err.Error(),
		})
		if merr == nil {
			sess.broadcast(msg)
		}
	}
	gs.removeLobby(sess.id)
}

// CancelGame terminates an open lobby. Only the host may cancel, and only
// before the game has started.
func (gs *GameService) CancelGame(lobbyID, playerID string) error {
	sess, err := gs.session(lobbyID)
	if err != nil {
		return err
	}
	if err := sess.lobby.Cancel(game.ParticipantID(playerID)); err != nil {
		return err
	}

	gs.logger.Info("lobby cancelled", "lobby", lobbyID)
	sess.UpdateParticipants(sess.lobby.Participants())
	gs.removeLobby(lobbyID)
	return nil
}

// HandleDecision routes a hit/stand decision to the lobby's running engine,
// which validates turn ownership.
func (gs *GameService) HandleDecision(lobbyID, playerID string, action game.Action) error {
	sess, err := gs.session(lobbyID)
	if err != nil {
		return err
	}
	engine := sess.getEngine()
	if engine == nil {
		return ErrNoGameInProgress
	}
	return engine.SubmitDecision(game.ParticipantID(playerID), action)
}

func (gs *GameService) session(lobbyID string) (*session, error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	sess, ok := gs.lobbies[lobbyID]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return sess, nil
}

func (gs *GameService) removeLobby(lobbyID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	delete(gs.lobbies, lobbyID)
}

// session binds one lobby to its (at most one) running game and implements
// the engine's presentation port by fanning snapshots out to the lobby's
// members over the wire.
type session struct {
	id    string
	svc   *GameService
	lobby *game.Lobby

	mu     sync.Mutex
	engine *game.Engine
}

func (s *session) setEngine(e *game.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = e
}

func (s *session) getEngine() *game.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// broadcast sends a message to every lobby member.
func (s *session) broadcast(msg *protocol.Message) {
	for _, p := range s.lobby.Participants() {
		if err := s.svc.messenger.SendToPlayer(string(p.ID), msg); err != nil {
			s.svc.logger.Debug("broadcast delivery failed", "lobby", s.id, "player", p.Name, "error", err)
		}
	}
}

func (s *session) lobbyUpdate() *protocol.Message {
	msg, err := protocol.NewMessage(protocol.TypeLobbyUpdate, protocol.LobbyUpdateData{
		LobbyID: s.id,
		Host:    lobbyPlayerFromGame(s.lobby.Host()),
		Players: lobbyPlayersFromGame(s.lobby.Participants()),
		Status:  s.lobby.Status().String(),
	})
	if err != nil {
		s.svc.logger.Error("failed to build lobby_update", "error", err)
		return nil
	}
	return msg
}

// AnnounceLobby implements game.Presenter.
func (s *session) AnnounceLobby(host game.Participant, participants []game.Participant) {
	if msg := s.lobbyUpdate(); msg != nil {
		s.broadcast(msg)
	}
}

// UpdateParticipants implements game.Presenter.
func (s *session) UpdateParticipants(participants []game.Participant) {
	if msg := s.lobbyUpdate(); msg != nil {
		s.broadcast(msg)
	}
}

// RenderState implements game.Presenter: the whole table goes to everyone,
// and the participant on turn additionally gets an action request.
func (s *session) RenderState(view game.TableView) {
	data := protocol.GameStateData{
		LobbyID: s.id,
		Hands:   handInfosFromViews(view.Hands),
	}
	if view.Turn != nil {
		data.Turn = string(view.Turn.ID)
		data.TimeoutSeconds = view.TimeoutSeconds
	}

	msg, err := protocol.NewMessage(protocol.TypeGameState, data)
	if err != nil {
		s.svc.logger.Error("failed to build game_state", "error", err)
		return
	}
	s.broadcast(msg)

	if view.Turn != nil && !view.Turn.Dealer {
		action, err := protocol.NewMessage(protocol.TypeActionRequired, protocol.ActionRequiredData{
			LobbyID:        s.id,
			PlayerID:       string(view.Turn.ID),
			Actions:        []string{game.Hit.String(), game.Stand.String()},
			TimeoutSeconds: view.TimeoutSeconds,
		})
		if err != nil {
			s.svc.logger.Error("failed to build action_required", "error", err)
			return
		}
		if err := s.svc.messenger.SendToPlayer(string(view.Turn.ID), action); err != nil {
			s.svc.logger.Debug("action_required delivery failed", "lobby", s.id, "error", err)
		}
	}
}

// NotifyTimeout implements game.Presenter.
func (s *session) NotifyTimeout(p game.Participant) {
	msg, err := protocol.NewMessage(protocol.TypePlayerTimeout, protocol.PlayerTimeoutData{
		LobbyID:  s.id,
		PlayerID: string(p.ID),
		Name:     p.Name,
	})
	if err != nil {
		return
	}
	s.broadcast(msg)
}

// AnnounceOutcome implements game.Presenter.
func (s *session) AnnounceOutcome(outcome game.Outcome) {
	data := protocol.OutcomeData{
		LobbyID: s.id,
		Hands:   handInfosFromViews(outcome.Hands),
	}
	if outcome.Winner != nil {
		data.Winner = string(outcome.Winner.ID)
		data.Name = outcome.Winner.Name
	}
	msg, err := protocol.NewMessage(protocol.TypeOutcome, data)
	if err != nil {
		s.svc.logger.Error("failed to build outcome", "error", err)
		return
	}
	s.broadcast(msg)
}
