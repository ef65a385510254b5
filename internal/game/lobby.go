package game

import "sync"

// LobbyStatus tracks the lobby lifecycle. Started and Cancelled are
// terminal; no lobby operation is valid after either.
type LobbyStatus int

const (
	LobbyOpen LobbyStatus = iota
	LobbyStarted
	LobbyCancelled
)

// String returns the lowercase name of the status for logs and wire use.
func (s LobbyStatus) String() string {
	switch s {
	case LobbyOpen:
		return "open"
	case LobbyStarted:
		return "started"
	case LobbyCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Lobby tracks who has joined before the host starts or cancels the game.
// Joins race with each other and with the host's start and cancel, so every
// mutation goes through one mutex: the lobby is single-writer and
// participant-set updates are never lost.
type Lobby struct {
	ID string

	mu           sync.Mutex
	host         Participant
	participants []Participant // join order
	joined       map[ParticipantID]struct{}
	status       LobbyStatus
}

// NewLobby opens a lobby with the host as its first participant.
func NewLobby(id string, host Participant) *Lobby {
	l := &Lobby{
		ID:     id,
		host:   host,
		joined: make(map[ParticipantID]struct{}),
	}
	l.participants = append(l.participants, host)
	l.joined[host.ID] = struct{}{}
	return l
}

// Host returns the participant who opened the lobby.
func (l *Lobby) Host() Participant {
	return l.host
}

// Join adds a participant and returns the updated join-order list. A second
// join by the same identity returns ErrAlreadyJoined and changes nothing;
// callers surface it to the requester as an informational result.
func (l *Lobby) Join(p Participant) ([]Participant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != LobbyOpen {
		return nil, ErrLobbyClosed
	}
	if _, ok := l.joined[p.ID]; ok {
		return nil, ErrAlreadyJoined
	}
	l.joined[p.ID] = struct{}{}
	l.participants = append(l.participants, p)
	return l.snapshot(), nil
}

// Start transitions the lobby to started and returns the finalized
// participant list in join order. Only the host may start; later joins are
// rejected with ErrLobbyClosed.
func (l *Lobby) Start(actor ParticipantID) ([]Participant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != LobbyOpen {
		return nil, ErrLobbyClosed
	}
	if actor != l.host.ID {
		return nil, ErrNotHost
	}
	l.status = LobbyStarted
	return l.snapshot(), nil
}

// Cancel terminates the lobby. Only the host may cancel, and only before
// the game has started.
func (l *Lobby) Cancel(actor ParticipantID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != LobbyOpen {
		return ErrLobbyClosed
	}
	if actor != l.host.ID {
		return ErrNotHost
	}
	l.status = LobbyCancelled
	return nil
}

// Status returns the current lobby status.
func (l *Lobby) Status() LobbyStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Participants returns a snapshot of the join-order participant list.
func (l *Lobby) Participants() []Participant {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

// snapshot copies the participant list; callers hold the mutex.
func (l *Lobby) snapshot() []Participant {
	out := make([]Participant, len(l.participants))
	copy(out, l.participants)
	return out
}
