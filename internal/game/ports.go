package game

import "fmt"

// Action is a player's decision for one turn.
type Action int

const (
	Hit Action = iota
	Stand
)

// String returns the lowercase action name used on the wire.
func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	default:
		return "unknown"
	}
}

// ParseAction converts a wire action string into an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "hit":
		return Hit, nil
	case "stand":
		return Stand, nil
	default:
		return 0, fmt.Errorf("invalid action: %q", s)
	}
}

// Presenter is the outbound port to whatever surface shows the game to
// players. The engine hands it derived snapshots and never lets it touch
// game state; implementations are pure consumers. Delivery retries and
// formatting are the transport's concern.
type Presenter interface {
	// AnnounceLobby is called once when a lobby opens.
	AnnounceLobby(host Participant, participants []Participant)

	// UpdateParticipants is called after every successful join.
	UpdateParticipants(participants []Participant)

	// RenderState is called whenever the table changes or a decision is
	// awaited. The view masks the dealer's hole card while the game runs.
	RenderState(view TableView)

	// NotifyTimeout is called when a participant's decision deadline
	// lapses and an implicit stand is applied.
	NotifyTimeout(p Participant)

	// AnnounceOutcome is called once when the game ends.
	AnnounceOutcome(outcome Outcome)
}
