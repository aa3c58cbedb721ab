// internal/game/errors.go
//
// Rule violations reported back to the acting player.

package game

// RuleError is a rejected action. Its message is shown to the player.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

func ruleErr(reason string) *RuleError { return &RuleError{Reason: reason} }

var (
	ErrNotYourTurn        = ruleErr("Not your turn")
	ErrGameOver           = ruleErr("game is over")
	ErrRollFirst          = ruleErr("dice roll first")
	ErrUnknownPlace       = ruleErr("unknown place")
	ErrUnknownBuilding    = ruleErr("unknown building type")
	ErrPlaceTaken         = ruleErr("place already taken")
	ErrNoBuildingsAround  = ruleErr("no buildings around")
	ErrRoadNotJoined      = ruleErr("your road need to be joined to this village")
	ErrDistanceRule       = ruleErr("distance rule ignored")
	ErrNeedVillage        = ruleErr("need village first")
	ErrNotEnoughResources = ruleErr("not enough resources")
	ErrSetupRoadUsed      = ruleErr("only one free road per setup turn")
	ErrSetupVillageUsed   = ruleErr("only one free village per setup turn")
	ErrSetupOnly          = ruleErr("first two moves only free road and village placement")
	ErrAlreadyRolled      = ruleErr("you already did this")
	ErrUnknownResource    = ruleErr("unknown resource")
	ErrSameResource       = ruleErr("trade objects are the same")
	ErrBadCoefficient     = ruleErr("unsupported trade coefficient")
	ErrNoPort             = ruleErr("you haven't special buildings in port for this type of change")
	ErrMustRoll           = ruleErr("have to roll first")
	ErrMustBuildVillage   = ruleErr("have to build village first")
	ErrMustBuildRoad      = ruleErr("have to build road first")
)
