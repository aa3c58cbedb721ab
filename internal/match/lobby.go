// internal/match/lobby.go
//
// Lobby pairs connections into matches in arrival order and routes their
// traffic. The first connection of a pair plays white.

package match

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MsgWaiting is the rejection for a connection that speaks before it has an opponent.
const MsgWaiting = "waiting for opponent"

// Lobby owns the waiting connection and the conn → match routing table.
type Lobby struct {
	deps  Deps
	newID func() string

	mu      sync.Mutex
	waiting Conn
	byConn  map[string]*Match
}

// NewLobby returns an empty lobby whose matches share deps.
func NewLobby(deps Deps) *Lobby {
	return &Lobby{
		deps:   deps,
		newID:  uuid.NewString,
		byConn: make(map[string]*Match),
	}
}

// Open seats c: it either waits or completes a pair and starts a match.
func (l *Lobby) Open(c Conn) {
	l.mu.Lock()
	if l.waiting == nil {
		l.waiting = c
		l.mu.Unlock()
		log.Debug().Str("conn", c.ID()).Msg("waiting for opponent")
		return
	}
	white := l.waiting
	l.waiting = nil
	m := New(l.newID(), white, c, l.deps)
	l.byConn[white.ID()] = m
	l.byConn[c.ID()] = m
	l.mu.Unlock()

	m.Start()
}

// Message routes a payload from c to its match.
func (l *Lobby) Message(c Conn, text bool, payload []byte) {
	l.mu.Lock()
	m := l.byConn[c.ID()]
	l.mu.Unlock()

	if m == nil {
		if err := c.Send(IncorrectRequest(MsgWaiting)); err != nil {
			log.Warn().Err(err).Str("conn", c.ID()).Msg("delivery failed")
		}
		return
	}
	m.Handle(c.ID(), text, payload)
}

// Close forgets c and tears down its match, if any.
func (l *Lobby) Close(c Conn) {
	l.mu.Lock()
	if l.waiting != nil && l.waiting.ID() == c.ID() {
		l.waiting = nil
	}
	m := l.byConn[c.ID()]
	if m != nil {
		for _, s := range m.seats {
			delete(l.byConn, s.ID())
		}
	}
	l.mu.Unlock()

	if m != nil {
		m.Close("disconnect")
	}
}

// Waiting reports whether a connection is waiting for an opponent.
func (l *Lobby) Waiting() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waiting != nil
}
