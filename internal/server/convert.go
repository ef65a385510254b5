package server

import (
	"github.com/izbuzz/blackjackd/internal/deck"
	"github.com/izbuzz/blackjackd/internal/game"
	"github.com/izbuzz/blackjackd/internal/protocol"
)

// Helpers converting engine snapshots into wire payloads.

func cardFaces(cards []deck.Card) []string {
	faces := make([]string, len(cards))
	for i, c := range cards {
		faces[i] = c.String()
	}
	return faces
}

func lobbyPlayerFromGame(p game.Participant) protocol.LobbyPlayer {
	return protocol.LobbyPlayer{
		PlayerID: string(p.ID),
		Name:     p.Name,
	}
}

func lobbyPlayersFromGame(ps []game.Participant) []protocol.LobbyPlayer {
	players := make([]protocol.LobbyPlayer, len(ps))
	for i, p := range ps {
		players[i] = lobbyPlayerFromGame(p)
	}
	return players
}

func handInfoFromView(v game.HandView) protocol.HandInfo {
	return protocol.HandInfo{
		PlayerID:   string(v.Participant.ID),
		Name:       v.Participant.Name,
		Dealer:     v.Participant.Dealer,
		Cards:      cardFaces(v.Cards),
		Score:      v.Score,
		Busted:     v.Busted,
		HoleHidden: v.HoleHidden,
	}
}

func handInfosFromViews(views []game.HandView) []protocol.HandInfo {
	hands := make([]protocol.HandInfo, len(views))
	for i, v := range views {
		hands[i] = handInfoFromView(v)
	}
	return hands
}
