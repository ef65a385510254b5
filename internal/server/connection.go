package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"

	"github.com/izbuzz/blackjackd/internal/game"
	"github.com/izbuzz/blackjackd/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client: a read pump feeding the game
// service and a write pump draining the send buffer.
type Connection struct {
	conn       *websocket.Conn
	send       chan *protocol.Message
	playerID   string
	playerName string
	logger     *log.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	mu         sync.RWMutex
	closeOnce  sync.Once
	service    *GameService
}

// NewConnection creates a connection wrapper.
func NewConnection(conn *websocket.Conn, logger *log.Logger, service *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *protocol.Message, 64),
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
		service: service,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A full send buffer closes
// the connection rather than blocking a game goroutine.
func (c *Connection) SendMessage(msg *protocol.Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel closed during shutdown.
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "player", c.PlayerName())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// PlayerID returns the identity assigned at auth, empty before then.
func (c *Connection) PlayerID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// PlayerName returns the display name given at auth.
func (c *Connection) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

func (c *Connection) setIdentity(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = id
	c.playerName = name
}

// readPump handles incoming messages from the client.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches one incoming frame.
func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("received message", "type", msg.Type, "player", c.PlayerName())

	if msg.Type == protocol.TypeAuth {
		var data protocol.AuthData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "failed to parse auth data")
			return
		}
		c.handleAuth(data)
		return
	}

	if c.PlayerID() == "" {
		c.sendError("not_authenticated", "must authenticate first")
		return
	}

	switch msg.Type {
	case protocol.TypeCreateLobby:
		c.handleCreateLobby()

	case protocol.TypeJoinLobby:
		var data protocol.JoinLobbyData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "failed to parse join data")
			return
		}
		if err := c.service.JoinLobby(data.LobbyID, c.PlayerID(), c.PlayerName()); err != nil {
			c.sendServiceError(err)
		}

	case protocol.TypeStartGame:
		var data protocol.StartGameData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "failed to parse start data")
			return
		}
		if err := c.service.StartGame(data.LobbyID, c.PlayerID()); err != nil {
			c.sendServiceError(err)
		}

	case protocol.TypeCancelGame:
		var data protocol.CancelGameData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "failed to parse cancel data")
			return
		}
		if err := c.service.CancelGame(data.LobbyID, c.PlayerID()); err != nil {
			c.sendServiceError(err)
		}

	case protocol.TypeDecision:
		var data protocol.DecisionData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "failed to parse decision data")
			return
		}
		action, err := game.ParseAction(data.Action)
		if err != nil {
			c.sendError("invalid_action", err.Error())
			return
		}
		if err := c.service.HandleDecision(data.LobbyID, c.PlayerID(), action); err != nil {
			c.sendServiceError(err)
		}

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAuth(data protocol.AuthData) {
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "player name required")
		return
	}

	// Identity is an opaque ID minted here; the display name travels
	// separately and never doubles as a key.
	playerID := uuid.NewV4().String()
	c.setIdentity(playerID, data.PlayerName)
	c.logger.Info("player authenticated", "player", data.PlayerName, "id", playerID)

	response, _ := protocol.NewMessage(protocol.TypeAuthResponse, protocol.AuthResponseData{
		Success:  true,
		PlayerID: playerID,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateLobby() {
	lobbyID, err := c.service.CreateLobby(c.PlayerID(), c.PlayerName())
	if err != nil {
		c.sendServiceError(err)
		return
	}
	c.logger.Info("lobby created", "lobby", lobbyID, "host", c.PlayerName())
}

// sendServiceError maps game and service errors onto wire error codes. All
// of these are recoverable: they are reported to the requester only and
// leave the game untouched.
func (c *Connection) sendServiceError(err error) {
	code := "internal_error"
	switch {
	case errors.Is(err, game.ErrAlreadyJoined):
		code = "already_joined"
	case errors.Is(err, game.ErrNotHost):
		code = "not_host"
	case errors.Is(err, game.ErrNotYourTurn):
		code = "not_your_turn"
	case errors.Is(err, game.ErrDecisionPending):
		code = "decision_pending"
	case errors.Is(err, game.ErrLobbyClosed):
		code = "lobby_closed"
	case errors.Is(err, ErrLobbyNotFound):
		code = "lobby_not_found"
	case errors.Is(err, ErrLobbyFull):
		code = "lobby_full"
	case errors.Is(err, ErrNoGameInProgress):
		code = "no_game"
	}
	c.sendError(code, err.Error())
}

func (c *Connection) sendError(code, message string) {
	errorMsg, err := protocol.NewMessage(protocol.TypeError, protocol.ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(errorMsg)
}
