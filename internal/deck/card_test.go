package deck

import "testing"

func TestCardValue(t *testing.T) {
	tests := []struct {
		card  Card
		value int
	}{
		{Card(2), 2},
		{Card(9), 9},
		{Card(10), 10},
		{Jack, 10},
		{Queen, 10},
		{King, 10},
		{Ace, 11},
	}

	for _, tt := range tests {
		if got := tt.card.Value(); got != tt.value {
			t.Errorf("Card(%d).Value() = %d, want %d", tt.card, got, tt.value)
		}
	}
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{Card(2), "2"},
		{Card(10), "10"},
		{Jack, "J"},
		{Queen, "Q"},
		{King, "K"},
		{Ace, "A"},
	}

	for _, tt := range tests {
		if got := tt.card.String(); got != tt.want {
			t.Errorf("Card(%d).String() = %q, want %q", tt.card, got, tt.want)
		}
	}
}

func TestCardPredicates(t *testing.T) {
	if !Ace.IsAce() || King.IsAce() {
		t.Error("IsAce misclassified a card")
	}
	for _, c := range []Card{Jack, Queen, King} {
		if !c.IsFace() {
			t.Errorf("%s should be a face card", c)
		}
	}
	if Card(10).IsFace() || Ace.IsFace() {
		t.Error("IsFace misclassified a card")
	}
	if Card(1).Valid() || Card(15).Valid() {
		t.Error("Valid accepted an out-of-range rank")
	}
	if !Card(2).Valid() || !Ace.Valid() {
		t.Error("Valid rejected an in-range rank")
	}
}
