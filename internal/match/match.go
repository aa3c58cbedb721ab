// internal/match/match.go
//
// Match controller: one running two-player match.
// Responsibilities:
//   - Own the match State, field and seeded RNG; seat connections by stable id.
//   - Parse inbound payloads, run them through the rules engine, build replies.
//   - Serialize handling and delivery behind one mutex so every client sees
//     broadcasts in the order the moves were applied. Send never blocks.
//   - Restart on request, report finished matches, tear down exactly once.

package match

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/settlers/internal/game"
	"github.com/robalobadob/settlers/internal/history"
	"github.com/robalobadob/settlers/internal/seed"
	"github.com/robalobadob/settlers/internal/store"
)

// Conn is one client connection as seen by a match.
type Conn interface {
	// ID is stable for the lifetime of the connection.
	ID() string
	// UserID is the authenticated account, or "" for guests.
	UserID() string
	// Send queues v for delivery without blocking.
	Send(v any) error
	// Close is safe to call more than once.
	Close() error
}

// Recorder persists match results.
type Recorder interface {
	RecordResult(ctx context.Context, r history.Result) error
}

// Deps are the collaborators shared by every match.
type Deps struct {
	Rules    *game.Rules
	Salt     string
	Store    store.Store // optional
	Recorder Recorder    // optional
	Now      func() time.Time
}

// ErrWrongDataType is returned for binary frames.
var ErrWrongDataType = errors.New("Wrong data type")

// outbound is one queued delivery.
type outbound struct {
	to  Conn
	msg any
	typ string
}

// Match is a single running match.
type Match struct {
	id   string
	deps Deps
	log  zerolog.Logger

	closeOnce sync.Once

	mu         sync.Mutex
	seats      [2]Conn // indexed by game.Color.Index()
	state      *game.State
	rng        *rand.Rand
	seed       int64
	generation int
	startedAt  time.Time
	closed     bool
}

// New seats white and blue, generates the first field and registers the
// match in the live store. Call Start to notify the players.
func New(id string, white, blue Conn, deps Deps) *Match {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	m := &Match{
		id:    id,
		deps:  deps,
		log:   log.With().Str("match", id).Logger(),
		seats: [2]Conn{white, blue},
	}
	m.reset(0)
	if deps.Store != nil {
		if err := deps.Store.Save(context.Background(), m); err != nil {
			m.log.Warn().Err(err).Msg("register live match")
		}
	}
	return m
}

// ID implements store.Match.
func (m *Match) ID() string { return m.id }

// Snapshot implements store.Match.
func (m *Match) Snapshot() store.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return store.Snapshot{
		ID:         m.id,
		Generation: m.generation,
		StartedAt:  m.startedAt,
		Turn:       string(m.state.Turn),
		Phase:      string(m.state.Phase),
		Status:     string(m.state.Status),
		Points:     [2]int{m.state.Players[0].Points, m.state.Players[1].Points},
	}
}

// Start sends gameStarted to both seats.
func (m *Match) Start() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.deliver(m.startMessages())
	m.log.Info().Int64("seed", m.seed).Str("white", m.seats[0].ID()).Str("blue", m.seats[1].ID()).Msg("match started")
	m.mu.Unlock()
}

// Handle processes one inbound payload from connID.
func (m *Match) Handle(connID string, text bool, payload []byte) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	color, ok := m.colorOf(connID)
	if !ok {
		m.mu.Unlock()
		m.log.Warn().Str("conn", connID).Msg("message from unseated connection")
		return
	}
	out, res := m.handle(color, text, payload)
	m.deliver(out)
	m.mu.Unlock()

	if res != nil {
		m.record(*res)
	}
}

// Close aborts the match. Only the first call has any effect.
func (m *Match) Close(reason string) {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		var res *history.Result
		if m.state.Status == game.StatusPlaying {
			r := m.result(history.ReasonAborted, game.Outcome{})
			res = &r
		}
		seats := m.seats
		for _, c := range seats {
			if err := c.Send(GameAborted{Type: TypeGameAborted}); err != nil {
				m.log.Debug().Err(err).Str("conn", c.ID()).Msg("gameAborted not delivered")
			}
		}
		m.mu.Unlock()

		for _, c := range seats {
			_ = c.Close()
		}
		if m.deps.Store != nil {
			_ = m.deps.Store.Delete(context.Background(), m.id)
		}
		if res != nil {
			m.record(*res)
		}
		m.log.Info().Str("reason", reason).Msg("match closed")
	})
}

// ------------------------------ handling -----------------------------------

func (m *Match) handle(color game.Color, text bool, payload []byte) ([]outbound, *history.Result) {
	sender := m.seat(color)
	reject := func(msg string) []outbound {
		return []outbound{{to: sender, msg: IncorrectRequest(msg), typ: TypeIncorrectRequest}}
	}

	if !text {
		return reject(ErrWrongDataType.Error()), nil
	}
	var in inbound
	if err := json.Unmarshal(payload, &in); err != nil {
		return reject("Can't parse JSON data: " + err.Error()), nil
	}

	switch in.Type {
	case TypePlayerMove:
		return m.onMove(color, in.Action)
	case TypeRepeatGame:
		m.reset(m.generation + 1)
		m.log.Info().Str("color", string(color)).Int("generation", m.generation).Msg("match restarted")
		return m.startMessages(), nil
	case TypeIncorrectRequest:
		return []outbound{{to: sender, msg: IncorrectRequest(in.Message), typ: TypeIncorrectRequest}}, nil
	case TypeIncorrectResponse:
		m.log.Error().Str("color", string(color)).Str("client_message", in.Message).Msg("incorrect response reported by client")
		return nil, nil
	}
	return reject(`Unknown message type: "` + in.Type + `"`), nil
}

func (m *Match) onMove(color game.Color, a *action) ([]outbound, *history.Result) {
	sender := m.seat(color)
	reject := func(msg string) []outbound {
		return []outbound{{to: sender, msg: IncorrectRequest(msg), typ: TypeIncorrectRequest}}
	}
	if a == nil {
		return reject("Missing action"), nil
	}

	r := m.deps.Rules
	var err error
	switch a.Name {
	case ActionBuild:
		err = r.Build(m.state, color, a.Place, a.Building)
	case ActionDiceRoll:
		var roll int
		roll, err = r.RollDice(m.state, color, m.rng)
		if err == nil {
			m.log.Debug().Str("color", string(color)).Int("dice", roll).Msg("dice rolled")
		}
	case ActionEndTurn:
		err = r.EndTurn(m.state, color)
	case ActionTrade:
		err = r.Trade(m.state, color, a.From, a.To, a.Coefficient)
	case ActionGiveUp:
		err = r.GiveUp(m.state, color)
	default:
		return reject(`Unknown action: "` + a.Name + `"`), nil
	}
	if err != nil {
		return reject(err.Error()), nil
	}

	outcome := r.CheckWin(m.state)
	snap := m.state.Clone()
	out := make([]outbound, 0, 4)
	for _, c := range []game.Color{game.White, game.Blue} {
		out = append(out, outbound{
			to:  m.seat(c),
			msg: ChangePlayer{Type: TypeChangePlayer, GameState: snap, Color: c},
			typ: TypeChangePlayer,
		})
	}
	if !outcome.Decided {
		return out, nil
	}
	for _, c := range []game.Color{game.White, game.Blue} {
		out = append(out, outbound{
			to:  m.seat(c),
			msg: GameResult{Type: TypeGameResult, Win: outcome.Won(c)},
			typ: TypeGameResult,
		})
	}
	reason := history.ReasonWin
	if outcome.Draw {
		reason = history.ReasonDraw
	}
	res := m.result(reason, outcome)
	m.log.Info().Str("reason", reason).Str("winner", res.Winner).Msg("match decided")
	return out, &res
}

// ------------------------------- helpers -----------------------------------

// reset regenerates field and state for generation. Caller holds mu (or owns m exclusively).
func (m *Match) reset(generation int) {
	m.generation = generation
	m.rng, m.seed = seed.NewRand(m.deps.Salt, m.id, generation)
	field := m.deps.Rules.Layout().GenerateField(m.rng)
	m.state = game.NewState(field)
	m.startedAt = m.deps.Now()
}

func (m *Match) startMessages() []outbound {
	snap := m.state.Clone()
	out := make([]outbound, 0, 2)
	for _, c := range []game.Color{game.White, game.Blue} {
		out = append(out, outbound{
			to:  m.seat(c),
			msg: GameStarted{Type: TypeGameStarted, GameState: snap, Field: snap.Field, Color: c},
			typ: TypeGameStarted,
		})
	}
	return out
}

func (m *Match) seat(c game.Color) Conn { return m.seats[c.Index()] }

func (m *Match) colorOf(connID string) (game.Color, bool) {
	switch connID {
	case m.seats[0].ID():
		return game.White, true
	case m.seats[1].ID():
		return game.Blue, true
	}
	return "", false
}

func (m *Match) result(reason string, o game.Outcome) history.Result {
	r := history.Result{
		MatchID:     m.id,
		Generation:  m.generation,
		Seed:        m.seed,
		WhiteUser:   m.seats[0].UserID(),
		BlueUser:    m.seats[1].UserID(),
		Reason:      reason,
		WhitePoints: m.state.Players[0].Points,
		BluePoints:  m.state.Players[1].Points,
		FinishedAt:  m.deps.Now().UTC().Format(time.RFC3339),
	}
	if o.Decided && !o.Draw {
		r.Winner = string(o.Winner)
	}
	return r
}

// deliver sends each message in order. Caller holds mu. Failures are logged
// and never retried.
func (m *Match) deliver(out []outbound) {
	for _, o := range out {
		if err := o.to.Send(o.msg); err != nil {
			m.log.Warn().Err(err).Str("conn", o.to.ID()).Str("type", o.typ).Msg("delivery failed")
		}
	}
}

func (m *Match) record(r history.Result) {
	if m.deps.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.deps.Recorder.RecordResult(ctx, r); err != nil {
		m.log.Warn().Err(err).Str("reason", r.Reason).Msg("record result")
	}
}
