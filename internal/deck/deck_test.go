package deck

import (
	"fmt"
	"testing"

	"github.com/izbuzz/blackjackd/internal/randutil"
)

func TestNewShoeComposition(t *testing.T) {
	d := New(2, randutil.New(1))

	if d.Remaining() != 104 {
		t.Fatalf("two-deck shoe has %d cards, want 104", d.Remaining())
	}

	counts := make(map[Card]int)
	for d.Remaining() > 0 {
		c, err := d.Draw()
		if err != nil {
			t.Fatalf("draw failed with cards remaining: %v", err)
		}
		if !c.Valid() {
			t.Fatalf("drew out-of-range card %d", c)
		}
		counts[c]++
	}

	for rank := Card(2); rank <= Ace; rank++ {
		if counts[rank] != 8 {
			t.Errorf("rank %s appears %d times, want 8", rank, counts[rank])
		}
	}
}

func TestDrawExhaustion(t *testing.T) {
	d := Stacked(10, Ace)

	if c, err := d.Draw(); err != nil || c != 10 {
		t.Fatalf("first draw = %v, %v, want 10, nil", c, err)
	}
	if c, err := d.Draw(); err != nil || c != Ace {
		t.Fatalf("second draw = %v, %v, want A, nil", c, err)
	}
	if _, err := d.Draw(); err != ErrExhausted {
		t.Fatalf("draw from empty shoe = %v, want ErrExhausted", err)
	}
}

func TestShufflePreservesMultiset(t *testing.T) {
	d := New(2, randutil.New(42))
	before := make(map[Card]int)
	for _, c := range d.cards {
		before[c]++
	}

	d.Shuffle()

	after := make(map[Card]int)
	for _, c := range d.cards {
		after[c]++
	}
	for rank := Card(2); rank <= Ace; rank++ {
		if before[rank] != after[rank] {
			t.Errorf("rank %s count changed from %d to %d", rank, before[rank], after[rank])
		}
	}
	if len(d.cards) != 104 {
		t.Errorf("shuffle changed shoe size to %d", len(d.cards))
	}
}

// TestShuffleUniformity shuffles a four-card deck repeatedly and runs a
// chi-square test over the 24 possible permutations. The critical value for
// 23 degrees of freedom at p=0.001 is 49.73; the seed is fixed so the test
// is deterministic, and the threshold carries headroom above that.
func TestShuffleUniformity(t *testing.T) {
	const trials = 24000
	const expected = trials / 24

	d := &Deck{cards: []Card{2, 3, 4, 5}, rng: randutil.New(7)}
	counts := make(map[string]int)

	for i := 0; i < trials; i++ {
		d.Shuffle()
		counts[fmt.Sprint(d.cards)]++
	}

	if len(counts) != 24 {
		t.Fatalf("observed %d permutations, want 24", len(counts))
	}

	var chi2 float64
	for _, observed := range counts {
		diff := float64(observed - expected)
		chi2 += diff * diff / float64(expected)
	}
	if chi2 > 55 {
		t.Errorf("chi-square statistic %.2f exceeds threshold; shuffle looks biased", chi2)
	}
}

func TestStackedDrawOrder(t *testing.T) {
	d := Stacked(2, 3, 4)
	for _, want := range []Card{2, 3, 4} {
		c, err := d.Draw()
		if err != nil {
			t.Fatal(err)
		}
		if c != want {
			t.Fatalf("drew %s, want %s", c, want)
		}
	}
}
