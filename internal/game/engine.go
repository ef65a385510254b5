package game

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/izbuzz/blackjackd/internal/deck"
	"github.com/izbuzz/blackjackd/internal/randutil"
)

const (
	DefaultNumDecks        = 2
	DefaultDecisionTimeout = 60 * time.Second
)

// Config holds the tunable rules of a single game.
type Config struct {
	NumDecks        int
	DecisionTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.NumDecks == 0 {
		c.NumDecks = DefaultNumDecks
	}
	if c.DecisionTimeout == 0 {
		c.DecisionTimeout = DefaultDecisionTimeout
	}
	return c
}

// Engine runs one complete blackjack game: shuffle, deal, one decision round
// per participant in join order with the dealer last, then the outcome. The
// engine owns all game state; the outside world sees derived snapshots via
// the Presenter and feeds decisions in through SubmitDecision.
type Engine struct {
	cfg       Config
	logger    *log.Logger
	clock     quartz.Clock
	presenter Presenter
	rng       *rand.Rand

	shoe           *deck.Deck
	order          []Participant
	hands          map[ParticipantID]Hand
	busted         map[ParticipantID]bool
	dealerRevealed bool

	mu   sync.Mutex
	turn *pendingTurn
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig overrides the default game configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg.withDefaults() }
}

// WithClock substitutes the clock used for decision deadlines. Tests pass a
// quartz mock to drive timeouts explicitly.
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRand substitutes the random source that shuffles the shoe.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithShoe substitutes a pre-built shoe. The engine will not shuffle it,
// which lets scripted decks drive deterministic games.
func WithShoe(shoe *deck.Deck) Option {
	return func(e *Engine) { e.shoe = shoe }
}

// New creates an engine for the given human participants, in join order.
// The dealer is appended as the last entry in the turn order.
func New(players []Participant, presenter Presenter, logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:       Config{}.withDefaults(),
		logger:    logger.WithPrefix("engine"),
		clock:     quartz.NewReal(),
		presenter: presenter,
		rng:       randutil.New(time.Now().UnixNano()),
		hands:     make(map[ParticipantID]Hand),
		busted:    make(map[ParticipantID]bool),
	}
	e.order = make([]Participant, 0, len(players)+1)
	e.order = append(e.order, players...)
	e.order = append(e.order, NewDealer())

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run plays the game to completion and returns the outcome. It blocks for
// the duration of all turns; decisions arrive concurrently through
// SubmitDecision. The context only aborts a stalled game during process
// shutdown; there is no cancellation path once a game has started. The only
// fatal game error is an exhausted shoe.
func (e *Engine) Run(ctx context.Context) (Outcome, error) {
	if e.shoe == nil {
		e.shoe = deck.New(e.cfg.NumDecks, e.rng)
		e.shoe.Shuffle()
	}

	if err := e.deal(); err != nil {
		return Outcome{}, err
	}
	e.presenter.RenderState(e.view(nil))

	for i := range e.order {
		p := e.order[i]
		var err error
		if p.Dealer {
			err = e.playDealer(p)
		} else {
			err = e.playTurn(ctx, p)
		}
		if err != nil {
			return Outcome{}, err
		}
	}

	outcome := e.outcome()
	if outcome.Winner != nil {
		e.logger.Info("game over", "winner", outcome.Winner.Name, "score", e.hands[outcome.Winner.ID].Score())
	} else {
		e.logger.Info("game over, everyone busted")
	}
	e.presenter.AnnounceOutcome(outcome)
	return outcome, nil
}

// deal gives every participant two cards, humans in join order and the
// dealer last.
func (e *Engine) deal() error {
	for _, p := range e.order {
		for i := 0; i < 2; i++ {
			card, err := e.shoe.Draw()
			if err != nil {
				return fmt.Errorf("dealing to %s: %w", p.Name, err)
			}
			e.hands[p.ID] = append(e.hands[p.ID], card)
		}
		e.logger.Debug("dealt hand", "participant", p.Name, "score", e.hands[p.ID].Score())
	}
	return nil
}

// CurrentTurn returns the participant whose decision is currently awaited.
func (e *Engine) CurrentTurn() (ParticipantID, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.turn == nil {
		return "", false
	}
	return e.turn.participant, true
}

// Hand returns a copy of a participant's current hand.
func (e *Engine) Hand(id ParticipantID) Hand {
	hand := make(Hand, len(e.hands[id]))
	copy(hand, e.hands[id])
	return hand
}

// view builds a display snapshot. The dealer's hole card stays hidden until
// the dealer's own turn reveals it.
func (e *Engine) view(turn *Participant) TableView {
	hands := make([]HandView, 0, len(e.order))
	for _, p := range e.order {
		hands = append(hands, e.handView(p))
	}
	return TableView{
		Hands:          hands,
		Turn:           turn,
		TimeoutSeconds: int(e.cfg.DecisionTimeout / time.Second),
	}
}

func (e *Engine) handView(p Participant) HandView {
	hand := e.hands[p.ID]
	if p.Dealer && !e.dealerRevealed {
		visible := make(Hand, len(hand)-1)
		copy(visible, hand[1:])
		return HandView{
			Participant: p,
			Cards:       visible,
			Score:       visible.Score(),
			HoleHidden:  true,
		}
	}
	cards := make([]deck.Card, len(hand))
	copy(cards, hand)
	return HandView{
		Participant: p,
		Cards:       cards,
		Score:       hand.Score(),
		Busted:      e.busted[p.ID],
	}
}

// outcome scans the non-busted participants in turn order for the strictly
// highest score. Ties keep the earliest participant seen; if everyone
// busted there is no winner.
func (e *Engine) outcome() Outcome {
	e.dealerRevealed = true

	var winner *Participant
	best := 0
	for i := range e.order {
		p := e.order[i]
		if e.busted[p.ID] {
			continue
		}
		if score := e.hands[p.ID].Score(); score > best {
			best = score
			winner = &e.order[i]
		}
	}

	hands := make([]HandView, 0, len(e.order))
	for _, p := range e.order {
		hands = append(hands, e.handView(p))
	}
	return Outcome{Winner: winner, Hands: hands}
}
