package game

// ParticipantID is a stable opaque identity. It is distinct from the display
// name: names can change or collide, identities cannot.
type ParticipantID string

// DealerID identifies the automated house participant that is appended to
// every game's turn order. Exactly one dealer exists per game.
const DealerID ParticipantID = "dealer"

// Participant is a seat in a game: a human player or the automated dealer.
type Participant struct {
	ID     ParticipantID
	Name   string
	Dealer bool
}

// NewDealer returns the house participant.
func NewDealer() Participant {
	return Participant{ID: DealerID, Name: "Dealer", Dealer: true}
}
