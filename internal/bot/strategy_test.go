package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/izbuzz/blackjackd/internal/game"
)

func TestThresholdStrategy(t *testing.T) {
	strategy := Threshold{HitBelow: 17}

	require.Equal(t, game.Hit, strategy.Action(4))
	require.Equal(t, game.Hit, strategy.Action(16))
	require.Equal(t, game.Stand, strategy.Action(17))
	require.Equal(t, game.Stand, strategy.Action(21))
}

func TestAlwaysStand(t *testing.T) {
	strategy := AlwaysStand{}

	require.Equal(t, game.Stand, strategy.Action(2))
	require.Equal(t, game.Stand, strategy.Action(20))
}
