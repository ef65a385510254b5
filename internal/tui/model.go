package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/izbuzz/blackjackd/internal/client"
	"github.com/izbuzz/blackjackd/internal/protocol"
)

type phase int

const (
	phaseName phase = iota
	phaseLobby
	phaseJoining
	phaseGame
	phaseOutcome
)

// serverMsg wraps one server message for the Bubble Tea update loop.
type serverMsg struct {
	msg *protocol.Message
}

// Model is the Bubble Tea model for the interactive blackjack client. All
// game state arrives over the wire; the model only renders and forwards
// keypresses.
type Model struct {
	client *client.Client
	logger *log.Logger

	input  textinput.Model
	events chan *protocol.Message

	phase    phase
	playerID string
	lobbyID  string
	hosting  bool

	players []protocol.LobbyPlayer
	host    protocol.LobbyPlayer
	state   *protocol.GameStateData
	outcome *protocol.OutcomeData

	status   string
	errLine  string
	quitting bool
}

// NewModel creates the TUI model around an unconnected client.
func NewModel(c *client.Client, logger *log.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "your name"
	ti.Focus()
	ti.CharLimit = 32
	ti.Width = 32
	ti.Prompt = "> "

	return &Model{
		client: c,
		logger: logger.WithPrefix("tui"),
		input:  ti,
		events: make(chan *protocol.Message, 64),
		phase:  phaseName,
	}
}

// Start connects to the server and registers the message handlers. Call
// before handing the model to tea.NewProgram.
func (m *Model) Start() error {
	if err := m.client.Connect(); err != nil {
		return err
	}

	forward := func(msg *protocol.Message) { m.events <- msg }
	for _, t := range []protocol.MessageType{
		protocol.TypeAuthResponse,
		protocol.TypeLobbyCreated,
		protocol.TypeLobbyUpdate,
		protocol.TypeGameState,
		protocol.TypePlayerTimeout,
		protocol.TypeOutcome,
		protocol.TypeError,
	} {
		m.client.On(t, forward)
	}
	return nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// listen delivers the next server message as a tea.Msg.
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		return serverMsg{msg: <-m.events}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case serverMsg:
		m.handleServer(msg.msg)
		return m, m.listen()

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		_ = m.client.Disconnect()
		return tea.Quit, true
	}

	switch m.phase {
	case phaseName:
		if msg.String() == "enter" {
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				return nil, true
			}
			if err := m.client.Auth(name); err != nil {
				m.errLine = err.Error()
			}
			return nil, true
		}

	case phaseJoining:
		switch msg.String() {
		case "enter":
			lobbyID := strings.TrimSpace(m.input.Value())
			if lobbyID == "" {
				return nil, true
			}
			m.lobbyID = lobbyID
			if err := m.client.JoinLobby(lobbyID); err != nil {
				m.errLine = err.Error()
			}
			m.input.SetValue("")
			m.phase = phaseLobby
			return nil, true
		case "esc":
			m.phase = phaseLobby
			return nil, true
		}

	case phaseLobby:
		switch msg.String() {
		case "c":
			if m.lobbyID == "" {
				if err := m.client.CreateLobby(); err != nil {
					m.errLine = err.Error()
				}
			}
			return nil, true
		case "j":
			if m.lobbyID == "" {
				m.input.Placeholder = "lobby id"
				m.input.SetValue("")
				m.input.Focus()
				m.phase = phaseJoining
			}
			return nil, true
		case "g":
			if m.hosting {
				if err := m.client.StartGame(m.lobbyID); err != nil {
					m.errLine = err.Error()
				}
			}
			return nil, true
		case "x":
			if m.hosting {
				if err := m.client.CancelGame(m.lobbyID); err != nil {
					m.errLine = err.Error()
				}
			}
			return nil, true
		case "q":
			m.quitting = true
			_ = m.client.Disconnect()
			return tea.Quit, true
		}

	case phaseGame:
		switch msg.String() {
		case "h":
			if m.myTurn() {
				if err := m.client.Decide(m.lobbyID, "hit"); err != nil {
					m.errLine = err.Error()
				}
			}
			return nil, true
		case "s":
			if m.myTurn() {
				if err := m.client.Decide(m.lobbyID, "stand"); err != nil {
					m.errLine = err.Error()
				}
			}
			return nil, true
		}

	case phaseOutcome:
		switch msg.String() {
		case "q", "enter":
			m.quitting = true
			_ = m.client.Disconnect()
			return tea.Quit, true
		}
	}
	return nil, false
}

func (m *Model) handleServer(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeAuthResponse:
		var data protocol.AuthResponseData
		if msg.Decode(&data) != nil {
			return
		}
		if !data.Success {
			m.errLine = "authentication failed: " + data.Error
			return
		}
		m.playerID = data.PlayerID
		m.phase = phaseLobby
		m.status = "authenticated"

	case protocol.TypeLobbyCreated:
		var data protocol.LobbyCreatedData
		if msg.Decode(&data) != nil {
			return
		}
		m.lobbyID = data.LobbyID
		m.hosting = true
		m.status = "lobby created, waiting for players"

	case protocol.TypeLobbyUpdate:
		var data protocol.LobbyUpdateData
		if msg.Decode(&data) != nil {
			return
		}
		m.lobbyID = data.LobbyID
		m.host = data.Host
		m.players = data.Players
		if data.Status == "cancelled" {
			m.status = "lobby cancelled"
			m.lobbyID = ""
			m.hosting = false
			m.players = nil
		}

	case protocol.TypeGameState:
		var data protocol.GameStateData
		if msg.Decode(&data) != nil {
			return
		}
		m.state = &data
		m.phase = phaseGame
		m.errLine = ""

	case protocol.TypePlayerTimeout:
		var data protocol.PlayerTimeoutData
		if msg.Decode(&data) != nil {
			return
		}
		m.status = data.Name + " timed out and stands"

	case protocol.TypeOutcome:
		var data protocol.OutcomeData
		if msg.Decode(&data) != nil {
			return
		}
		m.outcome = &data
		m.phase = phaseOutcome

	case protocol.TypeError:
		var data protocol.ErrorData
		if msg.Decode(&data) != nil {
			return
		}
		m.errLine = data.Message
	}
}

func (m *Model) myTurn() bool {
	return m.state != nil && m.state.Turn == m.playerID
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("blackjackd"))
	b.WriteString("\n")

	switch m.phase {
	case phaseName:
		b.WriteString("What is your name?\n\n")
		b.WriteString(m.input.View())

	case phaseJoining:
		b.WriteString("Which lobby?\n\n")
		b.WriteString(m.input.View())
		b.WriteString(helpStyle.Render("\nenter: join  esc: back"))

	case phaseLobby:
		b.WriteString(m.viewLobby())

	case phaseGame:
		b.WriteString(m.viewTable(m.state.Hands, m.state.Turn))
		if m.myTurn() {
			b.WriteString(helpStyle.Render("\nyour turn  h: hit  s: stand"))
		}

	case phaseOutcome:
		b.WriteString(m.viewTable(m.outcome.Hands, ""))
		b.WriteString("\n")
		if m.outcome.Winner == "" {
			b.WriteString(winnerStyle.Render("Nobody wins."))
		} else {
			b.WriteString(winnerStyle.Render(m.outcome.Name + " wins!"))
		}
		b.WriteString(helpStyle.Render("\nq: quit"))
	}

	if m.status != "" {
		b.WriteString(statusStyle.Render("\n" + m.status))
	}
	if m.errLine != "" {
		b.WriteString(errorStyle.Render("\n" + m.errLine))
	}
	return b.String()
}

func (m *Model) viewLobby() string {
	var b strings.Builder
	if m.lobbyID == "" {
		b.WriteString("Not in a lobby.\n")
		b.WriteString(helpStyle.Render("\nc: create lobby  j: join lobby  q: quit"))
		return b.String()
	}

	b.WriteString("Lobby " + m.lobbyID + "\n\n")
	for _, p := range m.players {
		line := "  " + p.Name
		if p.PlayerID == m.host.PlayerID {
			line += " (host)"
		}
		if p.PlayerID == m.playerID {
			line += " (you)"
		}
		b.WriteString(line + "\n")
	}
	if m.hosting {
		b.WriteString(helpStyle.Render("\ng: start game  x: cancel  q: quit"))
	} else {
		b.WriteString(helpStyle.Render("\nwaiting for the host to start  q: quit"))
	}
	return b.String()
}

func (m *Model) viewTable(hands []protocol.HandInfo, turn string) string {
	var rows []string
	for _, h := range hands {
		rows = append(rows, m.renderHand(h, turn))
	}
	return tableStyle.Render(strings.Join(rows, "\n"))
}

func (m *Model) renderHand(h protocol.HandInfo, turn string) string {
	name := h.Name
	if h.PlayerID == m.playerID {
		name += " (you)"
	}

	cards := make([]string, len(h.Cards))
	copy(cards, h.Cards)
	score := fmt.Sprintf("%d", h.Score)
	if h.HoleHidden {
		// The dealer's first card stays face down until the dealer plays.
		cards = append([]string{"??"}, cards...)
		score = "?"
	}

	line := fmt.Sprintf("%-20s %s  (%s)", name, strings.Join(cards, " "), score)
	switch {
	case h.Busted:
		return bustedStyle.Render(line + "  BUST")
	case turn != "" && h.PlayerID == turn:
		return turnStyle.Render(line + "  <- to act")
	case h.Dealer:
		return dealerStyle.Render(line)
	}
	return line
}
