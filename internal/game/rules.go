// internal/game/rules.go
//
// Rules engine: validation and mutation of a State against the board.
// Responsibilities:
//   - Build roads, villages and cities (occupancy, connectivity, distance rule, cost).
//   - Roll dice and distribute production.
//   - Bank and port trades.
//   - End turn, give up, and win detection.
//
// Every operation validates completely before it mutates, so a returned
// error always leaves the State exactly as it was.

package game

import (
	"github.com/robalobadob/settlers/internal/board"
)

// Dice is the randomness source for rolls. *rand.Rand satisfies it.
type Dice interface {
	Intn(n int) int
}

// setupRoads is the number of roads placed before the match becomes active:
// two per player.
const setupRoads = 4

// Rules binds the static board and cost table.
type Rules struct {
	layout *board.Layout
	costs  board.Costs
}

// NewRules constructs a rules engine for layout and costs.
func NewRules(layout *board.Layout, costs board.Costs) *Rules {
	return &Rules{layout: layout, costs: costs}
}

// Layout exposes the board graph.
func (r *Rules) Layout() *board.Layout { return r.layout }

func checkTurn(s *State, c Color) error {
	if s.Status != StatusPlaying {
		return ErrGameOver
	}
	if s.Turn != c {
		return ErrNotYourTurn
	}
	return nil
}

// ------------------------------- BUILD -------------------------------------

// Build places kind at place for color.
func (r *Rules) Build(s *State, c Color, place int, kind board.Building) error {
	if err := checkTurn(s, c); err != nil {
		return err
	}
	if !s.Phase.IsSetup() && s.Phase != PhaseRolled {
		return ErrRollFirst
	}
	switch kind {
	case board.Road:
		return r.buildRoad(s, c, place)
	case board.Village:
		return r.buildVillage(s, c, place)
	case board.City:
		return r.buildCity(s, c, place)
	}
	return ErrUnknownBuilding
}

func (r *Rules) buildRoad(s *State, c Color, pathID int) error {
	path, ok := r.layout.Path(pathID)
	if !ok {
		return ErrUnknownPlace
	}
	if _, taken := ownerOf(s.Roads, pathID); taken {
		return ErrPlaceTaken
	}
	setup := s.Phase.IsSetup()
	if !setup && !r.roadConnected(s, c, path) {
		return ErrNoBuildingsAround
	}
	if setup && s.Phase.roadPlaced() {
		return ErrSetupRoadUsed
	}
	if err := r.pay(s, c, board.Road); err != nil {
		return err
	}

	s.Roads = append(s.Roads, BuildState{ID: pathID, Color: c})
	if setup {
		if s.Phase.villagePlaced() {
			s.setPhase(PhaseSetupDone)
		} else {
			s.setPhase(PhaseSetupRoad)
		}
	}
	return nil
}

// roadConnected reports whether c owns a building at either end of path or
// a road sharing one of its nodes.
func (r *Rules) roadConnected(s *State, c Color, path board.Path) bool {
	for _, n := range path.Nodes {
		if s.ownsBuildingAt(n, c) {
			return true
		}
	}
	for _, p := range r.layout.PathNeighbors(path.ID) {
		if ownedBy(s.Roads, p, c) {
			return true
		}
	}
	return false
}

func (r *Rules) buildVillage(s *State, c Color, nodeID int) error {
	node, ok := r.layout.Node(nodeID)
	if !ok {
		return ErrUnknownPlace
	}
	if _, taken := s.buildingAt(nodeID); taken {
		return ErrPlaceTaken
	}
	setup := s.Phase.IsSetup()
	if !setup && !roadAt(s, c, node) {
		return ErrRoadNotJoined
	}
	for _, n := range r.layout.NodeNeighbors(nodeID) {
		if _, taken := s.buildingAt(n); taken {
			return ErrDistanceRule
		}
	}
	if setup && s.Phase.villagePlaced() {
		return ErrSetupVillageUsed
	}
	if err := r.pay(s, c, board.Village); err != nil {
		return err
	}

	s.Villages = append(s.Villages, BuildState{ID: nodeID, Color: c})
	s.Player(c).Points++
	if setup {
		if s.Phase.roadPlaced() {
			s.setPhase(PhaseSetupDone)
		} else {
			s.setPhase(PhaseSetupVillage)
		}
	}
	return nil
}

func roadAt(s *State, c Color, node board.Node) bool {
	for _, p := range node.Paths {
		if ownedBy(s.Roads, p, c) {
			return true
		}
	}
	return false
}

func (r *Rules) buildCity(s *State, c Color, nodeID int) error {
	if s.Phase.IsSetup() {
		return ErrSetupOnly
	}
	if !r.layout.HasNode(nodeID) {
		return ErrUnknownPlace
	}
	if _, taken := ownerOf(s.Cities, nodeID); taken {
		return ErrPlaceTaken
	}
	owner, ok := ownerOf(s.Villages, nodeID)
	if !ok {
		return ErrNeedVillage
	}
	if owner != c {
		return ErrPlaceTaken
	}
	if err := r.pay(s, c, board.City); err != nil {
		return err
	}

	s.Villages = removeAt(s.Villages, nodeID)
	s.Cities = append(s.Cities, BuildState{ID: nodeID, Color: c})
	s.Player(c).Points++
	return nil
}

func removeAt(list []BuildState, id int) []BuildState {
	out := list[:0]
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// pay deducts the cost of kind, all or nothing. Setup placements are free.
func (r *Rules) pay(s *State, c Color, kind board.Building) error {
	if s.Phase.IsSetup() {
		return nil
	}
	cost := r.costs[kind]
	p := s.Player(c)
	if !p.Resources.Covers(cost) {
		return ErrNotEnoughResources
	}
	p.Resources.Sub(cost)
	return nil
}

// -------------------------------- DICE -------------------------------------

// RollDice draws a value uniformly from [2,12] and distributes production.
// The range is sampled flat, not as the sum of two dice.
func (r *Rules) RollDice(s *State, c Color, dice Dice) (int, error) {
	if err := checkTurn(s, c); err != nil {
		return 0, err
	}
	if s.Phase == PhaseRolled {
		return 0, ErrAlreadyRolled
	}
	if s.Phase.IsSetup() {
		return 0, ErrSetupOnly
	}

	roll := dice.Intn(11) + 2
	s.Dice = roll
	s.setPhase(PhaseRolled)
	r.Produce(s, roll)
	return roll, nil
}

// Produce credits every building adjacent to a hex whose token equals roll:
// two units per city, one per village. All credits are computed before any
// is applied.
func (r *Rules) Produce(s *State, roll int) {
	var gains [2]board.Resources
	for _, h := range r.layout.HexesWithToken(roll) {
		kind := s.Field.ResourceOf(h.ID)
		if !kind.Valid() {
			continue
		}
		for _, n := range h.Nodes {
			if c, ok := ownerOf(s.Cities, n); ok {
				gains[c.Index()].Add(kind, 2)
			}
			if c, ok := ownerOf(s.Villages, n); ok {
				gains[c.Index()].Add(kind, 1)
			}
		}
	}
	for i := range s.Players {
		for _, k := range board.Kinds {
			s.Players[i].Resources.Add(k, gains[i].Get(k))
		}
	}
}

// ------------------------------- TRADE -------------------------------------

// Trade exchanges coefficient units of from for one unit of to.
// 4 is always available, 3 needs a generic port, 2 needs a port for to.
func (r *Rules) Trade(s *State, c Color, from, to board.Resource, coefficient int) error {
	if err := checkTurn(s, c); err != nil {
		return err
	}
	if !from.Valid() || !to.Valid() {
		return ErrUnknownResource
	}
	if from == to {
		return ErrSameResource
	}
	switch coefficient {
	case 4:
	case 3:
		if !r.ownsPort(s, c, board.PortGeneric) {
			return ErrNoPort
		}
	case 2:
		if !r.ownsPort(s, c, board.PortKind(to)) {
			return ErrNoPort
		}
	default:
		return ErrBadCoefficient
	}

	p := s.Player(c)
	if p.Resources.Get(from) < coefficient {
		return ErrNotEnoughResources
	}
	p.Resources.Add(from, -coefficient)
	p.Resources.Add(to, 1)
	return nil
}

func (r *Rules) ownsPort(s *State, c Color, kind board.PortKind) bool {
	for _, n := range r.layout.PortNodes(kind) {
		if s.ownsBuildingAt(n, c) {
			return true
		}
	}
	return false
}

// ------------------------------ END TURN -----------------------------------

// EndTurn hands the turn to the other player.
//
// During setup the turn must contain one road and one village. The second
// setup turn of each player grants one unit of every resource adjacent to
// their second village. Once four roads are down the match becomes active.
func (r *Rules) EndTurn(s *State, c Color) error {
	if err := checkTurn(s, c); err != nil {
		return err
	}
	if !s.Phase.IsSetup() {
		if s.Phase != PhaseRolled {
			return ErrMustRoll
		}
		s.setPhase(PhaseAwaitingRoll)
		s.Turn = c.Other()
		return nil
	}

	if !s.Phase.villagePlaced() {
		return ErrMustBuildVillage
	}
	if !s.Phase.roadPlaced() {
		return ErrMustBuildRoad
	}
	if len(s.Villages) > 2 {
		r.grantStartingResources(s, c)
	}
	if len(s.Roads) >= setupRoads {
		s.setPhase(PhaseAwaitingRoll)
	} else {
		s.setPhase(PhaseSetup)
	}
	s.Turn = c.Other()
	return nil
}

func (r *Rules) grantStartingResources(s *State, c Color) {
	node := 0
	for _, v := range s.Villages {
		if v.Color == c {
			node = v.ID
		}
	}
	if node == 0 {
		return
	}
	p := s.Player(c)
	for _, hexID := range r.layout.HexesAt(node) {
		p.Resources.Add(s.Field.ResourceOf(hexID), 1)
	}
}

// ------------------------------- GIVE UP -----------------------------------

// GiveUp concedes for c: the opponent receives WinPoints. Legal on any turn.
func (r *Rules) GiveUp(s *State, c Color) error {
	if s.Status != StatusPlaying {
		return ErrGameOver
	}
	s.Player(c.Other()).Points += WinPoints
	return nil
}

// -------------------------------- WIN --------------------------------------

// Outcome is the result of a win check.
type Outcome struct {
	Decided bool
	Draw    bool
	Winner  Color
}

// Won reports whether c is the declared winner.
func (o Outcome) Won(c Color) bool {
	return o.Decided && !o.Draw && o.Winner == c
}

// CheckWin decides the match once either player reaches WinPoints.
// The strictly larger total wins; equal totals are a draw. A decided match
// is marked finished.
func (r *Rules) CheckWin(s *State) Outcome {
	white := s.Player(White).Points
	blue := s.Player(Blue).Points
	if white < WinPoints && blue < WinPoints {
		return Outcome{}
	}
	s.Status = StatusFinished
	switch {
	case white > blue:
		return Outcome{Decided: true, Winner: White}
	case blue > white:
		return Outcome{Decided: true, Winner: Blue}
	}
	return Outcome{Decided: true, Draw: true}
}
