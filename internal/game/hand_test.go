package game

import (
	"testing"

	"github.com/izbuzz/blackjackd/internal/deck"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		hand Hand
		want int
	}{
		{"two aces and a nine", Hand{deck.Ace, deck.Ace, 9}, 21},
		{"soft seventeen", Hand{deck.Ace, 6}, 17},
		{"all face cards bust", Hand{10, deck.Jack, deck.King}, 30},
		{"five aces", Hand{deck.Ace, deck.Ace, deck.Ace, deck.Ace, deck.Ace}, 15},
		{"natural", Hand{deck.Ace, deck.King}, 21},
		{"empty hand", Hand{}, 0},
		{"hard twenty", Hand{deck.Queen, 10}, 20},
		{"ace converts after hit", Hand{deck.Ace, 10, 10}, 21},
		{"bust with no aces", Hand{10, 9, 8}, 27},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hand.Score(); got != tt.want {
				t.Errorf("Score(%v) = %d, want %d", tt.hand, got, tt.want)
			}
		})
	}
}

// Aces convert from eleven to one only while the total is over 21 and one
// at a time, so a hand's score never drops by more than necessary.
func TestScoreConvertsAcesOneAtATime(t *testing.T) {
	hand := Hand{deck.Ace, deck.Ace}
	if got := hand.Score(); got != 12 {
		t.Fatalf("two aces score %d, want 12 (one soft, one hard)", got)
	}

	hand = append(hand, 9)
	if got := hand.Score(); got != 21 {
		t.Fatalf("aces plus nine score %d, want 21", got)
	}
}

func TestBusted(t *testing.T) {
	if (Hand{10, 9, 2}).Busted() {
		t.Error("21 is not bust")
	}
	if !(Hand{10, 9, 3}).Busted() {
		t.Error("22 is bust")
	}
}

func TestHandString(t *testing.T) {
	hand := Hand{deck.Ace, 10, deck.Queen}
	if got := hand.String(); got != "A, 10, Q" {
		t.Errorf("String() = %q, want %q", got, "A, 10, Q")
	}
}
