package deck

import "strconv"

// Card is a playing card rank. Suits never affect blackjack scoring, so a
// card is just its rank: 2-10 at face value, 11-13 for jack through king,
// 14 for the ace.
type Card int

const (
	Jack  Card = 11
	Queen Card = 12
	King  Card = 13
	Ace   Card = 14
)

// Value returns the card's blackjack value. Face cards count ten and aces
// count eleven; converting soft aces down to one is the scorer's business.
func (c Card) Value() int {
	switch {
	case c.IsFace():
		return 10
	case c == Ace:
		return 11
	default:
		return int(c)
	}
}

// IsAce returns true if the card is an ace.
func (c Card) IsAce() bool {
	return c == Ace
}

// IsFace returns true if the card is a jack, queen or king.
func (c Card) IsFace() bool {
	return c >= Jack && c <= King
}

// Valid reports whether the rank lies in the playable range [2, 14].
func (c Card) Valid() bool {
	return c >= 2 && c <= Ace
}

// String renders the rank the way it appears on the card face (e.g. "Q").
func (c Card) String() string {
	switch c {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return strconv.Itoa(int(c))
	}
}
