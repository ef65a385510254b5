package game

import "errors"

var (
	// ErrAlreadyJoined is informational: the join was a no-op because the
	// identity is already seated in the lobby.
	ErrAlreadyJoined = errors.New("already joined")

	// ErrNotHost rejects a privileged lobby action from anyone but the
	// host. Lobby state is unchanged.
	ErrNotHost = errors.New("only the host can do that")

	// ErrLobbyClosed rejects operations on a started or cancelled lobby.
	ErrLobbyClosed = errors.New("lobby is no longer open")

	// ErrNotYourTurn rejects a decision from a participant who is not on
	// turn. The pending turn's deadline is unaffected.
	ErrNotYourTurn = errors.New("not your turn")

	// ErrDecisionPending rejects a second decision for the same turn before
	// the first has been consumed.
	ErrDecisionPending = errors.New("decision already submitted")
)
