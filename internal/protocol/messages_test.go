package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageEnvelope(t *testing.T) {
	msg, err := NewMessage(TypeDecision, DecisionData{LobbyID: "l1", Action: "hit"})
	require.NoError(t, err)
	require.Equal(t, TypeDecision, msg.Type)
	require.False(t, msg.Timestamp.IsZero())

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, TypeDecision, decoded.Type)

	var data DecisionData
	require.NoError(t, decoded.Decode(&data))
	require.Equal(t, "l1", data.LobbyID)
	require.Equal(t, "hit", data.Action)
}

func TestHandInfoOmitsHiddenFields(t *testing.T) {
	info := HandInfo{PlayerID: "p1", Name: "Alice", Cards: []string{"A", "10"}, Score: 21}
	raw, err := json.Marshal(info)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "holeHidden")
	require.NotContains(t, string(raw), "busted")
	require.NotContains(t, string(raw), "dealer")
}
