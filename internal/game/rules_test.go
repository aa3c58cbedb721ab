package game

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/robalobadob/settlers/assets"
	"github.com/robalobadob/settlers/internal/board"
)

// testField assigns resources to hexes 1..18 in a fixed order that respects
// the default tile counts.
func testField() board.Field {
	kinds := []board.Resource{
		board.Wood, board.Clay, board.Grain, board.Fur, board.Wood, board.Mountain,
		board.Grain, board.Fur, board.Clay, board.Wood, board.Mountain, board.Grain,
		board.Fur, board.Wood, board.Clay, board.Grain, board.Fur, board.Mountain,
	}
	f := make(board.Field, len(kinds))
	for i, k := range kinds {
		f[i] = board.Tile{HexID: i + 1, Resource: k}
	}
	return f
}

func newRules(t *testing.T) *Rules {
	t.Helper()
	l, err := assets.DefaultLayout()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	c, err := assets.DefaultCosts()
	if err != nil {
		t.Fatalf("costs: %v", err)
	}
	return NewRules(l, c)
}

// activeState returns a state past setup where white has rolled.
func activeState() *State {
	s := NewState(testField())
	s.setPhase(PhaseRolled)
	return s
}

type fixedDice int

func (d fixedDice) Intn(int) int { return int(d) }

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetupScenario(t *testing.T) {
	r := newRules(t)
	s := NewState(testField())

	mustOK(t, r.Build(s, White, 1, board.Road))
	mustOK(t, r.Build(s, White, 5, board.Village))
	mustOK(t, r.EndTurn(s, White))

	if s.Turn != Blue {
		t.Fatalf("turn = %s, want blue", s.Turn)
	}
	if err := r.Build(s, White, 2, board.Road); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("white out of turn: err = %v", err)
	}

	mustOK(t, r.Build(s, Blue, 36, board.Road))
	mustOK(t, r.Build(s, Blue, 30, board.Village))
	mustOK(t, r.EndTurn(s, Blue))

	mustOK(t, r.Build(s, White, 9, board.Road))
	mustOK(t, r.Build(s, White, 10, board.Village))
	mustOK(t, r.EndTurn(s, White))

	if got, want := s.Player(White).Resources, (board.Resources{Clay: 1, Field: 1, Wood: 1}); got != want {
		t.Fatalf("white windfall = %+v, want %+v", got, want)
	}
	if !s.Phase.IsSetup() {
		t.Fatalf("phase = %s after 3 roads, want setup", s.Phase)
	}

	mustOK(t, r.Build(s, Blue, 57, board.Road))
	mustOK(t, r.Build(s, Blue, 45, board.Village))
	mustOK(t, r.EndTurn(s, Blue))

	if got, want := s.Player(Blue).Resources, (board.Resources{Fur: 2, Clay: 1}); got != want {
		t.Fatalf("blue windfall = %+v, want %+v", got, want)
	}
	if s.Phase != PhaseAwaitingRoll {
		t.Fatalf("phase = %s after 4 roads, want awaiting_roll", s.Phase)
	}
	if s.Turn != White {
		t.Fatalf("turn = %s, want white", s.Turn)
	}
	if s.Player(White).Points != 2 || s.Player(Blue).Points != 2 {
		t.Fatalf("points = %d/%d, want 2/2", s.Player(White).Points, s.Player(Blue).Points)
	}
	if s.Values.IsStart {
		t.Fatalf("values still report setup")
	}
}

func TestSetupTurnRules(t *testing.T) {
	r := newRules(t)

	tests := []struct {
		name string
		run  func(t *testing.T, s *State) error
		want error
	}{
		{
			name: "end turn without village",
			run:  func(t *testing.T, s *State) error { return r.EndTurn(s, White) },
			want: ErrMustBuildVillage,
		},
		{
			name: "end turn without road",
			run: func(t *testing.T, s *State) error {
				mustOK(t, r.Build(s, White, 5, board.Village))
				return r.EndTurn(s, White)
			},
			want: ErrMustBuildRoad,
		},
		{
			name: "second free road",
			run: func(t *testing.T, s *State) error {
				mustOK(t, r.Build(s, White, 1, board.Road))
				return r.Build(s, White, 2, board.Road)
			},
			want: ErrSetupRoadUsed,
		},
		{
			name: "second free village",
			run: func(t *testing.T, s *State) error {
				mustOK(t, r.Build(s, White, 5, board.Village))
				return r.Build(s, White, 30, board.Village)
			},
			want: ErrSetupVillageUsed,
		},
		{
			name: "city during setup",
			run:  func(t *testing.T, s *State) error { return r.Build(s, White, 5, board.City) },
			want: ErrSetupOnly,
		},
		{
			name: "dice during setup",
			run: func(t *testing.T, s *State) error {
				_, err := r.RollDice(s, White, fixedDice(0))
				return err
			},
			want: ErrSetupOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState(testField())
			if err := tt.run(t, s); !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFailedBuildLeavesStateUnchanged(t *testing.T) {
	r := newRules(t)

	base := func() *State {
		s := activeState()
		s.Villages = append(s.Villages, BuildState{ID: 5, Color: White}, BuildState{ID: 30, Color: Blue})
		s.Roads = append(s.Roads, BuildState{ID: 2, Color: White}, BuildState{ID: 36, Color: Blue})
		s.Player(White).Resources = board.Resources{Wood: 1, Clay: 1, Fur: 1}
		return s
	}

	tests := []struct {
		name  string
		place int
		kind  board.Building
		prep  func(s *State)
		want  error
	}{
		{name: "road taken", place: 36, kind: board.Road, want: ErrPlaceTaken},
		{name: "road unknown path", place: 999, kind: board.Road, want: ErrUnknownPlace},
		{name: "road disconnected", place: 60, kind: board.Road, want: ErrNoBuildingsAround},
		{name: "road too expensive", place: 8, kind: board.Road, prep: func(s *State) {
			s.Player(White).Resources = board.Resources{Wood: 1}
		}, want: ErrNotEnoughResources},
		{name: "village taken", place: 30, kind: board.Village, want: ErrPlaceTaken},
		{name: "village without road", place: 45, kind: board.Village, want: ErrRoadNotJoined},
		{name: "village distance", place: 1, kind: board.Village, want: ErrDistanceRule},
		{name: "village unaffordable", place: 14, kind: board.Village, prep: func(s *State) {
			s.Roads = append(s.Roads, BuildState{ID: 14, Color: White})
		}, want: ErrNotEnoughResources},
		{name: "city without village", place: 14, kind: board.City, want: ErrNeedVillage},
		{name: "city on rival village", place: 30, kind: board.City, want: ErrPlaceTaken},
		{name: "city unaffordable", place: 5, kind: board.City, want: ErrNotEnoughResources},
		{name: "unknown building", place: 5, kind: board.Building("castle"), want: ErrUnknownBuilding},
		{name: "before roll", place: 8, kind: board.Road, prep: func(s *State) {
			s.setPhase(PhaseAwaitingRoll)
		}, want: ErrRollFirst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			if tt.prep != nil {
				tt.prep(s)
			}
			before := s.Clone()
			err := r.Build(s, White, tt.place, tt.kind)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !reflect.DeepEqual(before, s) {
				t.Fatalf("state mutated by rejected build:\nbefore %+v\nafter  %+v", before, s)
			}
		})
	}
}

func TestActiveBuilds(t *testing.T) {
	r := newRules(t)
	s := activeState()
	s.Villages = append(s.Villages, BuildState{ID: 5, Color: White})
	s.Player(White).Points = 1
	s.Player(White).Resources = board.Resources{Wood: 3, Clay: 3, Fur: 1, Field: 3, Mountain: 3}

	// road touching the village, then a road extending it
	mustOK(t, r.Build(s, White, 8, board.Road))
	mustOK(t, r.Build(s, White, 14, board.Road))

	// village at the end of the road network, outside distance of node 5
	mustOK(t, r.Build(s, White, 14, board.Village))
	if s.Player(White).Points != 2 {
		t.Fatalf("points after village = %d, want 2", s.Player(White).Points)
	}

	want := board.Resources{Wood: 0, Clay: 0, Fur: 0, Field: 2, Mountain: 3}
	if got := s.Player(White).Resources; got != want {
		t.Fatalf("resources = %+v, want %+v", got, want)
	}
}

func TestCityReplacesVillage(t *testing.T) {
	r := newRules(t)
	s := activeState()
	s.Villages = append(s.Villages, BuildState{ID: 5, Color: White}, BuildState{ID: 30, Color: Blue})
	s.Player(White).Points = 1
	s.Player(White).Resources = board.Resources{Field: 2, Mountain: 3}

	mustOK(t, r.Build(s, White, 5, board.City))

	if _, ok := ownerOf(s.Villages, 5); ok {
		t.Fatalf("village still present at node 5")
	}
	if c, ok := ownerOf(s.Cities, 5); !ok || c != White {
		t.Fatalf("city missing at node 5")
	}
	if len(s.Villages) != 1 || s.Villages[0].ID != 30 {
		t.Fatalf("other villages disturbed: %+v", s.Villages)
	}
	if s.Player(White).Points != 2 {
		t.Fatalf("points = %d, want 2", s.Player(White).Points)
	}
	if s.Player(White).Resources.Total() != 0 {
		t.Fatalf("city cost not deducted: %+v", s.Player(White).Resources)
	}
	if err := r.Build(s, White, 5, board.City); !errors.Is(err, ErrPlaceTaken) {
		t.Fatalf("second city err = %v", err)
	}
	if err := r.Build(s, White, 5, board.Village); !errors.Is(err, ErrPlaceTaken) {
		t.Fatalf("village on city err = %v", err)
	}
}

func TestDistanceRuleCountsCities(t *testing.T) {
	r := newRules(t)
	s := NewState(testField())
	s.Cities = append(s.Cities, BuildState{ID: 5, Color: Blue})

	for _, n := range r.Layout().NodeNeighbors(5) {
		if err := r.Build(s, White, n, board.Village); !errors.Is(err, ErrDistanceRule) {
			t.Fatalf("village at %d next to city: err = %v", n, err)
		}
	}
	mustOK(t, r.Build(s, White, 10, board.Village))
}

func TestRollDiceProducesForCityAndVillage(t *testing.T) {
	r := newRules(t)
	s := activeState()
	s.setPhase(PhaseAwaitingRoll)
	s.Cities = append(s.Cities, BuildState{ID: 21, Color: White})
	s.Villages = append(s.Villages, BuildState{ID: 38, Color: Blue})

	roll, err := r.RollDice(s, White, fixedDice(6))
	mustOK(t, err)
	if roll != 8 || s.Dice != 8 {
		t.Fatalf("roll = %d, dice = %d, want 8", roll, s.Dice)
	}
	if got := s.Player(White).Resources.Wood; got != 2 {
		t.Fatalf("white wood = %d, want 2", got)
	}
	if got := s.Player(Blue).Resources.Wood; got != 1 {
		t.Fatalf("blue wood = %d, want 1", got)
	}
	if s.Phase != PhaseRolled {
		t.Fatalf("phase = %s, want rolled", s.Phase)
	}
	if _, err := r.RollDice(s, White, fixedDice(6)); !errors.Is(err, ErrAlreadyRolled) {
		t.Fatalf("second roll err = %v", err)
	}
}

func TestCenterHexNeverProduces(t *testing.T) {
	r := newRules(t)
	s := activeState()
	center := r.Layout().Hexes[18]
	s.Villages = append(s.Villages, BuildState{ID: center.Nodes[0], Color: White})

	r.Produce(s, center.Token)
	if got := s.Player(White).Resources.Total(); got != 0 {
		t.Fatalf("center hex produced %d units", got)
	}
}

// The roll is flat over [2,12]: 7 is no more likely than 2.
func TestRollDiceUniform(t *testing.T) {
	r := newRules(t)
	rng := rand.New(rand.NewSource(42))
	const rolls = 110000

	counts := map[int]int{}
	for i := 0; i < rolls; i++ {
		s := activeState()
		s.setPhase(PhaseAwaitingRoll)
		v, err := r.RollDice(s, White, rng)
		mustOK(t, err)
		if v < 2 || v > 12 {
			t.Fatalf("roll %d out of range", v)
		}
		counts[v]++
	}
	for v := 2; v <= 12; v++ {
		share := float64(counts[v]) / rolls
		if share < 0.085 || share > 0.097 {
			t.Errorf("value %d share = %.4f, want ~1/11", v, share)
		}
	}
}

func TestTrade(t *testing.T) {
	r := newRules(t)

	tests := []struct {
		name     string
		village  int
		have     board.Resources
		from, to board.Resource
		coef     int
		want     error
		after    board.Resources
	}{
		{name: "bank", have: board.Resources{Wood: 4}, from: board.Wood, to: board.Clay, coef: 4,
			after: board.Resources{Clay: 1}},
		{name: "bank short", have: board.Resources{Wood: 3}, from: board.Wood, to: board.Clay, coef: 4,
			want: ErrNotEnoughResources, after: board.Resources{Wood: 3}},
		{name: "generic port", village: 7, have: board.Resources{Fur: 3}, from: board.Fur, to: board.Grain, coef: 3,
			after: board.Resources{Field: 1}},
		{name: "generic port missing", village: 5, have: board.Resources{Fur: 3}, from: board.Fur, to: board.Grain, coef: 3,
			want: ErrNoPort, after: board.Resources{Fur: 3}},
		{name: "specific port for target", village: 2, have: board.Resources{Wood: 2}, from: board.Wood, to: board.Mountain, coef: 2,
			after: board.Resources{Mountain: 1}},
		{name: "specific port wrong target", village: 2, have: board.Resources{Wood: 2}, from: board.Wood, to: board.Clay, coef: 2,
			want: ErrNoPort, after: board.Resources{Wood: 2}},
		{name: "same kind", have: board.Resources{Wood: 4}, from: board.Wood, to: board.Wood, coef: 4,
			want: ErrSameResource, after: board.Resources{Wood: 4}},
		{name: "none kind", have: board.Resources{Wood: 4}, from: board.Wood, to: board.None, coef: 4,
			want: ErrUnknownResource, after: board.Resources{Wood: 4}},
		{name: "odd coefficient", have: board.Resources{Wood: 5}, from: board.Wood, to: board.Clay, coef: 5,
			want: ErrBadCoefficient, after: board.Resources{Wood: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := activeState()
			if tt.village != 0 {
				s.Villages = append(s.Villages, BuildState{ID: tt.village, Color: White})
			}
			s.Player(White).Resources = tt.have
			err := r.Trade(s, White, tt.from, tt.to, tt.coef)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := s.Player(White).Resources; got != tt.after {
				t.Fatalf("resources = %+v, want %+v", got, tt.after)
			}
		})
	}
}

func TestTradeMessageForShortHand(t *testing.T) {
	r := newRules(t)
	s := activeState()
	s.Player(White).Resources = board.Resources{Wood: 3}

	err := r.Trade(s, White, board.Wood, board.Clay, 4)
	if err == nil || err.Error() != "not enough resources" {
		t.Fatalf("err = %v, want \"not enough resources\"", err)
	}
}

func TestEndTurnActive(t *testing.T) {
	r := newRules(t)
	s := activeState()
	s.setPhase(PhaseAwaitingRoll)

	if err := r.EndTurn(s, White); !errors.Is(err, ErrMustRoll) {
		t.Fatalf("end before roll err = %v", err)
	}
	_, err := r.RollDice(s, White, fixedDice(0))
	mustOK(t, err)
	mustOK(t, r.EndTurn(s, White))
	if s.Turn != Blue || s.Phase != PhaseAwaitingRoll {
		t.Fatalf("after end turn: turn=%s phase=%s", s.Turn, s.Phase)
	}
	if s.Values.IsRolled {
		t.Fatalf("rolled flag not reset")
	}
}

func TestGiveUpAndWin(t *testing.T) {
	r := newRules(t)
	s := activeState()
	s.Player(White).Points = 3
	s.Player(Blue).Points = 2

	// legal out of turn
	mustOK(t, r.GiveUp(s, Blue))
	if s.Player(White).Points != 3+WinPoints {
		t.Fatalf("white points = %d", s.Player(White).Points)
	}
	out := r.CheckWin(s)
	if !out.Won(White) || out.Won(Blue) {
		t.Fatalf("outcome = %+v, want white win", out)
	}
	if s.Status != StatusFinished {
		t.Fatalf("status = %s, want finished", s.Status)
	}
	if err := r.GiveUp(s, White); !errors.Is(err, ErrGameOver) {
		t.Fatalf("give up after finish err = %v", err)
	}
	if err := r.Build(s, White, 1, board.Road); !errors.Is(err, ErrGameOver) {
		t.Fatalf("build after finish err = %v", err)
	}
}

func TestCheckWin(t *testing.T) {
	r := newRules(t)

	tests := []struct {
		name        string
		white, blue int
		want        Outcome
	}{
		{name: "nobody", white: 7, blue: 7, want: Outcome{}},
		{name: "white", white: 8, blue: 3, want: Outcome{Decided: true, Winner: White}},
		{name: "blue", white: 2, blue: 9, want: Outcome{Decided: true, Winner: Blue}},
		{name: "draw", white: 8, blue: 8, want: Outcome{Decided: true, Draw: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := activeState()
			s.Player(White).Points = tt.white
			s.Player(Blue).Points = tt.blue
			if got := r.CheckWin(s); got != tt.want {
				t.Fatalf("CheckWin = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Random legal and illegal actions never drive a count negative.
func TestResourcesNeverNegative(t *testing.T) {
	r := newRules(t)
	rng := rand.New(rand.NewSource(5))
	s := activeState()
	s.setPhase(PhaseAwaitingRoll)
	s.Villages = append(s.Villages, BuildState{ID: 5, Color: White}, BuildState{ID: 30, Color: Blue})
	s.Roads = append(s.Roads, BuildState{ID: 2, Color: White}, BuildState{ID: 36, Color: Blue})

	kinds := board.Kinds
	builds := []board.Building{board.Road, board.Village, board.City}
	for i := 0; i < 5000; i++ {
		c := s.Turn
		switch rng.Intn(4) {
		case 0:
			_, _ = r.RollDice(s, c, rng)
		case 1:
			_ = r.Trade(s, c, kinds[rng.Intn(5)], kinds[rng.Intn(5)], 2+rng.Intn(3))
		case 2:
			place := 1 + rng.Intn(72)
			_ = r.Build(s, c, place, builds[rng.Intn(3)])
		case 3:
			_ = r.EndTurn(s, c)
		}
		for _, p := range s.Players {
			for _, k := range kinds {
				if p.Resources.Get(k) < 0 {
					t.Fatalf("step %d: %s has %d %s", i, p.Color, p.Resources.Get(k), k)
				}
			}
		}
		if s.Status != StatusPlaying {
			break
		}
		r.CheckWin(s)
	}
}
