package protocol

import (
	"encoding/json"
	"time"
)

// MessageType identifies a WebSocket message with type safety.
type MessageType string

const (
	// Client to server messages
	TypeAuth        MessageType = "auth"
	TypeCreateLobby MessageType = "create_lobby"
	TypeJoinLobby   MessageType = "join_lobby"
	TypeStartGame   MessageType = "start_game"
	TypeCancelGame  MessageType = "cancel_game"
	TypeDecision    MessageType = "decision"

	// Server to client messages
	TypeAuthResponse   MessageType = "auth_response"
	TypeLobbyCreated   MessageType = "lobby_created"
	TypeLobbyUpdate    MessageType = "lobby_update"
	TypeGameState      MessageType = "game_state"
	TypeActionRequired MessageType = "action_required"
	TypePlayerTimeout  MessageType = "player_timeout"
	TypeOutcome        MessageType = "outcome"
	TypeError          MessageType = "error"
)

// String returns the string representation of the message type.
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the JSON envelope for every WebSocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the envelope payload into out.
func (m *Message) Decode(out interface{}) error {
	return json.Unmarshal(m.Data, out)
}

// Client → Server payloads

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type CreateLobbyData struct{}

type JoinLobbyData struct {
	LobbyID string `json:"lobbyId"`
}

type StartGameData struct {
	LobbyID string `json:"lobbyId"`
}

type CancelGameData struct {
	LobbyID string `json:"lobbyId"`
}

type DecisionData struct {
	LobbyID string `json:"lobbyId"`
	Action  string `json:"action"` // hit or stand
}

// Server → Client payloads

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LobbyPlayer struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type LobbyCreatedData struct {
	LobbyID string      `json:"lobbyId"`
	Host    LobbyPlayer `json:"host"`
}

type LobbyUpdateData struct {
	LobbyID string        `json:"lobbyId"`
	Host    LobbyPlayer   `json:"host"`
	Players []LobbyPlayer `json:"players"`
	Status  string        `json:"status"`
}

// HandInfo is the wire form of one participant's hand. For the dealer,
// while the hole card is hidden, Cards holds only the visible cards and
// Score covers those alone.
type HandInfo struct {
	PlayerID   string   `json:"playerId"`
	Name       string   `json:"name"`
	Dealer     bool     `json:"dealer,omitempty"`
	Cards      []string `json:"cards"`
	Score      int      `json:"score"`
	Busted     bool     `json:"busted,omitempty"`
	HoleHidden bool     `json:"holeHidden,omitempty"`
}

type GameStateData struct {
	LobbyID        string     `json:"lobbyId"`
	Hands          []HandInfo `json:"hands"`
	Turn           string     `json:"turn,omitempty"` // player ID on turn
	TimeoutSeconds int        `json:"timeoutSeconds,omitempty"`
}

type ActionRequiredData struct {
	LobbyID        string   `json:"lobbyId"`
	PlayerID       string   `json:"playerId"`
	Actions        []string `json:"actions"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
}

type PlayerTimeoutData struct {
	LobbyID  string `json:"lobbyId"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

type OutcomeData struct {
	LobbyID string     `json:"lobbyId"`
	Winner  string     `json:"winner,omitempty"` // winner's player ID, empty when everyone busted
	Name    string     `json:"name,omitempty"`
	Hands   []HandInfo `json:"hands"`
}
