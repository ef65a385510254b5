package client

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/izbuzz/blackjackd/internal/protocol"
)

// EventHandler handles one incoming server message.
type EventHandler func(*protocol.Message)

// Client is a WebSocket client for the blackjack server. Handlers registered
// with On run on their own goroutines as messages arrive.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	logger    *log.Logger
	mu        sync.RWMutex
	handlers  map[protocol.MessageType][]EventHandler
	connected bool
	stopChan  chan struct{}
}

// New creates a client for the given server URL.
func New(serverURL string, logger *log.Logger) *Client {
	return &Client{
		serverURL: serverURL,
		logger:    logger.WithPrefix("client"),
		handlers:  make(map[protocol.MessageType][]EventHandler),
		stopChan:  make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the reader.
func (c *Client) Connect() error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		u.Scheme = "ws"
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/ws"
	}

	c.logger.Debug("connecting to server", "url", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readMessages()
	return nil
}

// Disconnect closes the connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.connected = false
	close(c.stopChan)

	if c.conn != nil {
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return c.conn.Close()
	}
	return nil
}

// IsConnected reports whether the client holds a live connection.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage sends a message to the server.
func (c *Client) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("not connected")
	}
	return c.conn.WriteJSON(msg)
}

// On registers a handler for a message type.
func (c *Client) On(msgType protocol.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = append(c.handlers[msgType], handler)
}

func (c *Client) readMessages() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.stopChan:
			return
		default:
			var msg protocol.Message
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					c.logger.Error("websocket error", "error", err)
				}
				return
			}
			c.dispatch(&msg)
		}
	}
}

func (c *Client) dispatch(msg *protocol.Message) {
	c.mu.RLock()
	handlers := c.handlers[msg.Type]
	c.mu.RUnlock()

	for _, handler := range handlers {
		// Handlers must not block the reader.
		go handler(msg)
	}
}

// Auth sends the authentication message.
func (c *Client) Auth(playerName string) error {
	msg, err := protocol.NewMessage(protocol.TypeAuth, protocol.AuthData{
		PlayerName: playerName,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// CreateLobby asks the server to open a lobby with us as host.
func (c *Client) CreateLobby() error {
	msg, err := protocol.NewMessage(protocol.TypeCreateLobby, protocol.CreateLobbyData{})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// JoinLobby joins an existing lobby.
func (c *Client) JoinLobby(lobbyID string) error {
	msg, err := protocol.NewMessage(protocol.TypeJoinLobby, protocol.JoinLobbyData{
		LobbyID: lobbyID,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// StartGame starts the game. Only honored for the lobby host.
func (c *Client) StartGame(lobbyID string) error {
	msg, err := protocol.NewMessage(protocol.TypeStartGame, protocol.StartGameData{
		LobbyID: lobbyID,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// CancelGame cancels an open lobby. Only honored for the lobby host.
func (c *Client) CancelGame(lobbyID string) error {
	msg, err := protocol.NewMessage(protocol.TypeCancelGame, protocol.CancelGameData{
		LobbyID: lobbyID,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Decide sends a hit or stand decision.
func (c *Client) Decide(lobbyID, action string) error {
	msg, err := protocol.NewMessage(protocol.TypeDecision, protocol.DecisionData{
		LobbyID: lobbyID,
		Action:  action,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}
