package game

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/izbuzz/blackjackd/internal/deck"
)

// recordingPresenter captures everything the engine pushes through the
// presentation port.
type recordingPresenter struct {
	mu       sync.Mutex
	views    []TableView
	timeouts []Participant
	outcomes []Outcome
}

func (r *recordingPresenter) AnnounceLobby(Participant, []Participant) {}
func (r *recordingPresenter) UpdateParticipants([]Participant)         {}

func (r *recordingPresenter) RenderState(view TableView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *recordingPresenter) NotifyTimeout(p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeouts = append(r.timeouts, p)
}

func (r *recordingPresenter) AnnounceOutcome(outcome Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingPresenter) timeoutCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timeouts)
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

type runResult struct {
	outcome Outcome
	err     error
}

func startGame(e *Engine) <-chan runResult {
	results := make(chan runResult, 1)
	go func() {
		outcome, err := e.Run(context.Background())
		results <- runResult{outcome, err}
	}()
	return results
}

func waitForTurn(t *testing.T, e *Engine, id ParticipantID) {
	t.Helper()
	require.Eventually(t, func() bool {
		current, ok := e.CurrentTurn()
		return ok && current == id
	}, 2*time.Second, time.Millisecond)
}

func mustOutcome(t *testing.T, results <-chan runResult) Outcome {
	t.Helper()
	select {
	case res := <-results:
		require.NoError(t, res.err)
		return res.outcome
	case <-time.After(5 * time.Second):
		t.Fatal("game did not finish")
		return Outcome{}
	}
}

// A dealer-only game terminates without interaction: the dealer hits until
// reaching at least 17 and either stands in [17, 21] or busts.
func TestDealerPolicy(t *testing.T) {
	presenter := &recordingPresenter{}
	// Dealer dealt 6 and 5, then draws until standing.
	e := New(nil, presenter, testLogger(), WithShoe(deck.Stacked(6, 5, 4, 3, 2)))

	outcome := mustOutcome(t, startGame(e))

	score := e.Hand(DealerID).Score()
	require.GreaterOrEqual(t, score, 17)
	require.LessOrEqual(t, score, 21)
	require.NotNil(t, outcome.Winner)
	require.Equal(t, DealerID, outcome.Winner.ID)
}

func TestDealerBustsMeansNoWinner(t *testing.T) {
	presenter := &recordingPresenter{}
	// Dealer dealt 10 and 6, forced to hit, draws a king: 26.
	e := New(nil, presenter, testLogger(), WithShoe(deck.Stacked(10, 6, deck.King)))

	outcome := mustOutcome(t, startGame(e))

	require.Nil(t, outcome.Winner)
	require.True(t, e.Hand(DealerID).Busted())
}

func TestStandingPlayerBeatsLowerDealer(t *testing.T) {
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	// Alice gets 10 + ace (21), dealer 10 + 9 (stands at 19).
	shoe := deck.Stacked(10, deck.Ace, 10, 9)
	e := New([]Participant{alice}, presenter, testLogger(), WithShoe(shoe))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)
	require.NoError(t, e.SubmitDecision(alice.ID, Stand))

	outcome := mustOutcome(t, results)
	require.NotNil(t, outcome.Winner)
	require.Equal(t, alice.ID, outcome.Winner.ID)
}

func TestBustedPlayerIsExcluded(t *testing.T) {
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	// Alice 10+10, hits a 5 (25, bust); dealer 10+6 hits a king (26, bust).
	shoe := deck.Stacked(10, 10, 10, 6, 5, deck.King)
	e := New([]Participant{alice}, presenter, testLogger(), WithShoe(shoe))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)
	require.NoError(t, e.SubmitDecision(alice.ID, Hit))

	outcome := mustOutcome(t, results)
	require.Nil(t, outcome.Winner, "all-bust game has no winner")
	require.True(t, e.Hand(alice.ID).Busted())
}

func TestHitThenStand(t *testing.T) {
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	// Alice 10+6 hits a 5 (21); dealer 10+8 stands at 18.
	shoe := deck.Stacked(10, 6, 10, 8, 5)
	e := New([]Participant{alice}, presenter, testLogger(), WithShoe(shoe))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)
	require.NoError(t, e.SubmitDecision(alice.ID, Hit))
	waitForTurn(t, e, alice.ID)
	require.NoError(t, e.SubmitDecision(alice.ID, Stand))

	outcome := mustOutcome(t, results)
	require.NotNil(t, outcome.Winner)
	require.Equal(t, alice.ID, outcome.Winner.ID)
	require.Equal(t, 21, e.Hand(alice.ID).Score())
}

// An out-of-turn decision is rejected, does not touch the acting hand, and
// does not consume the waiting slot of the participant on turn.
func TestOutOfTurnDecisionRejected(t *testing.T) {
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	shoe := deck.Stacked(10, 9, 10, 8, 2)
	e := New([]Participant{alice}, presenter, testLogger(), WithShoe(shoe))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)
	require.ErrorIs(t, e.SubmitDecision("mallory", Hit), ErrNotYourTurn)
	require.Len(t, e.Hand(alice.ID), 2, "rejected decision must not draw")

	current, ok := e.CurrentTurn()
	require.True(t, ok, "waiting slot must survive an out-of-turn decision")
	require.Equal(t, alice.ID, current)

	require.NoError(t, e.SubmitDecision(alice.ID, Stand))
	mustOutcome(t, results)
}

func TestSubmitDecisionWithoutPendingTurn(t *testing.T) {
	presenter := &recordingPresenter{}
	e := New(nil, presenter, testLogger(), WithShoe(deck.Stacked(10, 9)))
	require.ErrorIs(t, e.SubmitDecision("alice", Stand), ErrNotYourTurn)
}

// A lapsed deadline is an implicit stand, not an error: the game moves on
// and the participant keeps their dealt score.
func TestDecisionTimeoutStands(t *testing.T) {
	mClock := quartz.NewMock(t)
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	// Alice 10+10 (20); dealer 10+9 (19).
	shoe := deck.Stacked(10, 10, 10, 9)
	e := New([]Participant{alice}, presenter, testLogger(), WithShoe(shoe), WithClock(mClock))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mClock.Advance(DefaultDecisionTimeout).MustWait(ctx)

	outcome := mustOutcome(t, results)
	require.Equal(t, 1, presenter.timeoutCount())
	require.NotNil(t, outcome.Winner)
	require.Equal(t, alice.ID, outcome.Winner.ID, "timed-out 20 still beats dealer 19")
	require.Len(t, e.Hand(alice.ID), 2)
}

// Equal top scores keep the earliest participant in turn order.
func TestTieKeepsEarliestParticipant(t *testing.T) {
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	bob := Participant{ID: "bob", Name: "Bob"}
	// Alice 10+10, Bob 10+J (both 20), dealer 9+8 (17, stands).
	shoe := deck.Stacked(10, 10, 10, deck.Jack, 9, 8)
	e := New([]Participant{alice, bob}, presenter, testLogger(), WithShoe(shoe))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)
	require.NoError(t, e.SubmitDecision(alice.ID, Stand))
	waitForTurn(t, e, bob.ID)
	require.NoError(t, e.SubmitDecision(bob.ID, Stand))

	outcome := mustOutcome(t, results)
	require.NotNil(t, outcome.Winner)
	require.Equal(t, alice.ID, outcome.Winner.ID)
}

func TestExhaustedShoeAbortsGame(t *testing.T) {
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	// Four cards cover the deal; the dealer's forced hit finds nothing.
	shoe := deck.Stacked(10, 9, 10, 6)
	e := New([]Participant{alice}, presenter, testLogger(), WithShoe(shoe))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)
	require.NoError(t, e.SubmitDecision(alice.ID, Stand))

	select {
	case res := <-results:
		require.Error(t, res.err)
		require.True(t, errors.Is(res.err, deck.ErrExhausted))
	case <-time.After(5 * time.Second):
		t.Fatal("game did not finish")
	}
}

// The dealer's hole card stays hidden in rendered views until the dealer's
// turn, and the outcome reveals it.
func TestDealerHoleCardHiddenUntilReveal(t *testing.T) {
	presenter := &recordingPresenter{}
	alice := Participant{ID: "alice", Name: "Alice"}
	shoe := deck.Stacked(10, 9, 10, 8)
	e := New([]Participant{alice}, presenter, testLogger(), WithShoe(shoe))
	results := startGame(e)

	waitForTurn(t, e, alice.ID)

	presenter.mu.Lock()
	require.NotEmpty(t, presenter.views)
	first := presenter.views[0]
	presenter.mu.Unlock()

	dealerView := first.Hands[len(first.Hands)-1]
	require.True(t, dealerView.Participant.Dealer)
	require.True(t, dealerView.HoleHidden)
	require.Len(t, dealerView.Cards, 1, "only the up card is visible")

	require.NoError(t, e.SubmitDecision(alice.ID, Stand))
	outcome := mustOutcome(t, results)

	finalDealer := outcome.Hands[len(outcome.Hands)-1]
	require.False(t, finalDealer.HoleHidden)
	require.Len(t, finalDealer.Cards, 2)
}
