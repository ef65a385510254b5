package game

import "github.com/izbuzz/blackjackd/internal/deck"

// HandView is a display snapshot of one participant's hand. For the dealer,
// while the game is still running, Cards holds only the visible cards (the
// hole card is omitted) and Score is the score of those visible cards.
type HandView struct {
	Participant Participant
	Cards       []deck.Card
	Score       int
	Busted      bool
	HoleHidden  bool
}

// TableView is a derived snapshot of the whole table, handed to the
// Presenter. Hands are in turn order with the dealer last.
type TableView struct {
	Hands []HandView

	// Turn is the participant whose decision is currently awaited, nil
	// when no decision is pending.
	Turn *Participant

	// TimeoutSeconds is the decision deadline for the participant on turn.
	TimeoutSeconds int
}

// Outcome is the final result of a game. Winner is nil when every
// participant went bust. Equal top scores keep the earliest participant in
// turn order: the winner scan tracks a single running maximum and only a
// strictly higher score displaces it.
type Outcome struct {
	Winner *Participant
	Hands  []HandView
}
