package game

import (
	"context"
	"fmt"
)

const dealerStandsAt = 17

// pendingTurn is the waiting slot for exactly one decision. The channel has
// capacity one so the first valid decision claims the turn; anything after
// that is rejected without touching the deadline.
type pendingTurn struct {
	participant ParticipantID
	decision    chan Action
}

// SubmitDecision delivers a decision from the transport, tagged with the
// acting participant's identity. Decisions from anyone other than the
// participant on turn get ErrNotYourTurn and leave the waiting slot and its
// deadline untouched. A duplicate decision for the same turn gets
// ErrDecisionPending. A decision racing the deadline timer resolves in
// favor of whichever the turn loop observes first; the loser is a no-op.
func (e *Engine) SubmitDecision(id ParticipantID, action Action) error {
	e.mu.Lock()
	turn := e.turn
	e.mu.Unlock()

	if turn == nil || turn.participant != id {
		return ErrNotYourTurn
	}
	select {
	case turn.decision <- action:
		return nil
	default:
		return ErrDecisionPending
	}
}

// playTurn runs one human participant's decision round. Each iteration the
// current table is rendered and one decision awaited: a hit draws a card
// and loops unless the hand busts, a stand ends the round, and a lapsed
// deadline is an implicit stand, not an error.
func (e *Engine) playTurn(ctx context.Context, p Participant) error {
	for {
		action, timedOut, err := e.awaitDecision(ctx, p)
		if err != nil {
			return err
		}
		if timedOut {
			e.logger.Warn("decision timed out, standing", "participant", p.Name)
			e.presenter.NotifyTimeout(p)
			return nil
		}

		if action == Stand {
			e.logger.Debug("stands", "participant", p.Name, "score", e.hands[p.ID].Score())
			return nil
		}

		card, err := e.shoe.Draw()
		if err != nil {
			return fmt.Errorf("hit for %s: %w", p.Name, err)
		}
		e.hands[p.ID] = append(e.hands[p.ID], card)
		score := e.hands[p.ID].Score()
		e.logger.Debug("hits", "participant", p.Name, "card", card, "score", score)

		if score > 21 {
			e.busted[p.ID] = true
			e.logger.Debug("busted", "participant", p.Name, "score", score)
			e.presenter.RenderState(e.view(nil))
			return nil
		}
	}
}

// awaitDecision arms the deadline timer, opens the waiting slot for p, and
// blocks for a decision or the deadline. The timer is registered before the
// slot is published so that an observable pending turn always has a live
// deadline, and it is stopped the moment a decision wins the race.
func (e *Engine) awaitDecision(ctx context.Context, p Participant) (Action, bool, error) {
	turn := &pendingTurn{participant: p.ID, decision: make(chan Action, 1)}

	timedOut := make(chan struct{})
	timer := e.clock.AfterFunc(e.cfg.DecisionTimeout, func() {
		close(timedOut)
	})
	defer timer.Stop()

	e.mu.Lock()
	e.turn = turn
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.turn = nil
		e.mu.Unlock()
	}()

	e.presenter.RenderState(e.view(&p))

	select {
	case action := <-turn.decision:
		return action, false, nil
	case <-timedOut:
		return Stand, true, nil
	case <-ctx.Done():
		return Stand, false, fmt.Errorf("game aborted: %w", ctx.Err())
	}
}

// playDealer applies the fixed house policy with no external interaction:
// hit while the score is under 17, stand at 17 or better. The hole card is
// revealed when the dealer's turn begins.
func (e *Engine) playDealer(p Participant) error {
	e.dealerRevealed = true

	hand := e.hands[p.ID]
	for hand.Score() < dealerStandsAt {
		card, err := e.shoe.Draw()
		if err != nil {
			return fmt.Errorf("dealer hit: %w", err)
		}
		hand = append(hand, card)
		e.hands[p.ID] = hand
		e.logger.Debug("dealer hits", "card", card, "score", hand.Score())
	}

	if score := hand.Score(); score > 21 {
		e.busted[p.ID] = true
		e.logger.Debug("dealer busted", "score", score)
	} else {
		e.logger.Debug("dealer stands", "score", score)
	}

	e.presenter.RenderState(e.view(nil))
	return nil
}
