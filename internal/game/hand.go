package game

import (
	"strings"

	"github.com/izbuzz/blackjackd/internal/deck"
)

// Hand is the ordered sequence of cards held by one participant. Hands only
// grow: two cards at the deal, one per hit.
type Hand []deck.Card

// Score returns the best blackjack total for the hand. Aces start at eleven
// and are converted to one, one at a time, only while the running total is
// over 21, so an ace is never counted as eleven and one at once. A result
// above 21 means the hand is bust.
func (h Hand) Score() int {
	total := 0
	softAces := 0
	for _, c := range h {
		total += c.Value()
		if c.IsAce() {
			softAces++
		}
	}
	for total > 21 && softAces > 0 {
		total -= 10
		softAces--
	}
	return total
}

// Busted reports whether the hand scores over 21.
func (h Hand) Busted() bool {
	return h.Score() > 21
}

// String renders the hand as comma-separated card faces (e.g. "A, 10, 6").
func (h Hand) String() string {
	faces := make([]string, len(h))
	for i, c := range h {
		faces[i] = c.String()
	}
	return strings.Join(faces, ", ")
}
