// internal/game/types.go
//
// Core type definitions for a single two-player match.
// Defines:
//   - Color: the two seats (white moves first).
//   - TurnPhase: where the current turn stands; replaces a loose flag bundle.
//   - State: authoritative mutable match data, serialized as the wire gameState.

package game

import (
	"github.com/robalobadob/settlers/internal/board"
)

// WinPoints is the victory threshold.
const WinPoints = 8

// Color identifies a seat.
type Color string

const (
	White Color = "white"
	Blue  Color = "blue"
)

// Index maps white to 0 and blue to 1.
func (c Color) Index() int {
	if c == Blue {
		return 1
	}
	return 0
}

// Other returns the opposing seat.
func (c Color) Other() Color {
	if c == White {
		return Blue
	}
	return White
}

// Valid reports whether c is a seat color.
func (c Color) Valid() bool { return c == White || c == Blue }

// TurnPhase is the position inside the current turn.
//
// Setup turns move setup → setup_road|setup_village → setup_done.
// Active turns move awaiting_roll → rolled.
type TurnPhase string

const (
	PhaseSetup        TurnPhase = "setup"
	PhaseSetupRoad    TurnPhase = "setup_road"
	PhaseSetupVillage TurnPhase = "setup_village"
	PhaseSetupDone    TurnPhase = "setup_done"
	PhaseAwaitingRoll TurnPhase = "awaiting_roll"
	PhaseRolled       TurnPhase = "rolled"
)

// IsSetup reports whether the match is still in free placement.
func (p TurnPhase) IsSetup() bool {
	switch p {
	case PhaseSetup, PhaseSetupRoad, PhaseSetupVillage, PhaseSetupDone:
		return true
	}
	return false
}

func (p TurnPhase) roadPlaced() bool    { return p == PhaseSetupRoad || p == PhaseSetupDone }
func (p TurnPhase) villagePlaced() bool { return p == PhaseSetupVillage || p == PhaseSetupDone }

// GameValues is the flag view of a TurnPhase.
type GameValues struct {
	IsRolled       bool `json:"is_rolled"`
	IsBuiltRoad    bool `json:"is_built_road"`
	IsBuiltVillage bool `json:"is_built_village"`
	IsStart        bool `json:"is_start"`
}

// Values derives the flags for p.
func (p TurnPhase) Values() GameValues {
	return GameValues{
		IsRolled:       p == PhaseRolled,
		IsBuiltRoad:    p.roadPlaced(),
		IsBuiltVillage: p.villagePlaced(),
		IsStart:        p.IsSetup(),
	}
}

// Status is the match lifecycle.
type Status string

const (
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// BuildState is one occupied node or path.
type BuildState struct {
	ID    int   `json:"id"`
	Color Color `json:"color"`
}

// PlayerState holds one seat's score and hand.
type PlayerState struct {
	Points    int             `json:"points"`
	Resources board.Resources `json:"resources"`
	Color     Color           `json:"color"`
}

// State is the authoritative data for one match.
type State struct {
	Players  [2]PlayerState `json:"players"`
	Dice     int            `json:"dice"`
	Roads    []BuildState   `json:"roads"`
	Villages []BuildState   `json:"villages"`
	Cities   []BuildState   `json:"cities"`
	Turn     Color          `json:"color"`
	Phase    TurnPhase      `json:"phase"`
	Values   GameValues     `json:"values"`
	Status   Status         `json:"status"`

	Field board.Field `json:"-"`
}

// NewState returns a fresh setup-phase state over field.
func NewState(field board.Field) *State {
	return &State{
		Players: [2]PlayerState{
			{Color: White},
			{Color: Blue},
		},
		Roads:    []BuildState{},
		Villages: []BuildState{},
		Cities:   []BuildState{},
		Turn:     White,
		Phase:    PhaseSetup,
		Values:   PhaseSetup.Values(),
		Status:   StatusPlaying,
		Field:    field,
	}
}

// Player returns the mutable state for color.
func (s *State) Player(c Color) *PlayerState {
	return &s.Players[c.Index()]
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *State) Clone() *State {
	out := *s
	out.Roads = append([]BuildState{}, s.Roads...)
	out.Villages = append([]BuildState{}, s.Villages...)
	out.Cities = append([]BuildState{}, s.Cities...)
	out.Field = append(board.Field(nil), s.Field...)
	return &out
}

func (s *State) setPhase(p TurnPhase) {
	s.Phase = p
	s.Values = p.Values()
}

func ownerOf(list []BuildState, id int) (Color, bool) {
	for _, b := range list {
		if b.ID == id {
			return b.Color, true
		}
	}
	return "", false
}

func ownedBy(list []BuildState, id int, c Color) bool {
	owner, ok := ownerOf(list, id)
	return ok && owner == c
}

// buildingAt returns the owner of a village or city at node.
func (s *State) buildingAt(node int) (Color, bool) {
	if c, ok := ownerOf(s.Villages, node); ok {
		return c, true
	}
	return ownerOf(s.Cities, node)
}

func (s *State) ownsBuildingAt(node int, c Color) bool {
	return ownedBy(s.Villages, node, c) || ownedBy(s.Cities, node, c)
}
