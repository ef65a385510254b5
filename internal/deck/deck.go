package deck

import (
	"errors"
	rand "math/rand/v2"
)

const (
	ranksPerDeck  = 13
	copiesPerRank = 4
)

// ErrExhausted is returned when a draw is attempted on an empty shoe. With
// the default two-deck shoe this is unreachable under normal play, so
// callers treat it as a fatal game error rather than a recoverable one.
var ErrExhausted = errors.New("deck exhausted")

// Deck is a shoe of one or more standard 52-card decks with suits ignored:
// each deck contributes four copies of every rank from 2 to ace.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New builds an unshuffled shoe of numDecks standard decks. The provided
// rng drives shuffling, so a game can be replayed from a seed.
func New(numDecks int, rng *rand.Rand) *Deck {
	cards := make([]Card, 0, numDecks*ranksPerDeck*copiesPerRank)
	for i := 0; i < numDecks*copiesPerRank; i++ {
		for rank := Card(2); rank <= Ace; rank++ {
			cards = append(cards, rank)
		}
	}
	return &Deck{cards: cards, rng: rng}
}

// Stacked builds a shoe that yields the given cards in order, first listed
// drawn first. Used for scripted scenarios and tests; Shuffle must not be
// called on a stacked shoe.
func Stacked(cards ...Card) *Deck {
	reversed := make([]Card, len(cards))
	for i, c := range cards {
		reversed[len(cards)-1-i] = c
	}
	return &Deck{cards: reversed}
}

// Shuffle permutes the shoe in place with a Fisher-Yates pass: every
// permutation of the shoe is equally likely.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card of the shoe.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return 0, ErrExhausted
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// Remaining returns the number of cards left in the shoe.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
