package bot

import "github.com/izbuzz/blackjackd/internal/game"

// Strategy decides a bot's action from its current hand score.
type Strategy interface {
	Action(score int) game.Action
}

// Threshold hits below a fixed score and stands at or above it. With
// HitBelow 17 it plays the same policy as the dealer.
type Threshold struct {
	HitBelow int
}

func (t Threshold) Action(score int) game.Action {
	if score < t.HitBelow {
		return game.Hit
	}
	return game.Stand
}

// AlwaysStand never takes a card.
type AlwaysStand struct{}

func (AlwaysStand) Action(score int) game.Action {
	return game.Stand
}

// DefaultStrategy mirrors the dealer's fixed policy.
func DefaultStrategy() Strategy {
	return Threshold{HitBelow: 17}
}
