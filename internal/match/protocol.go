// internal/match/protocol.go
//
// JSON wire protocol between a match and its two clients.
// Server → client: gameStarted, gameAborted, gameResult, changePlayer,
// incorrectRequest, incorrectResponse.
// Client → server: playerMove{action}, repeatGame, and the two error echoes.

package match

import (
	"github.com/robalobadob/settlers/internal/board"
	"github.com/robalobadob/settlers/internal/game"
)

// Message types.
const (
	TypeGameStarted       = "gameStarted"
	TypeGameAborted       = "gameAborted"
	TypeGameResult        = "gameResult"
	TypeChangePlayer      = "changePlayer"
	TypeIncorrectRequest  = "incorrectRequest"
	TypeIncorrectResponse = "incorrectResponse"
	TypePlayerMove        = "playerMove"
	TypeRepeatGame        = "repeatGame"
)

// Action names carried by playerMove.
const (
	ActionBuild    = "build"
	ActionDiceRoll = "diceRoll"
	ActionEndTurn  = "endTurn"
	ActionTrade    = "trade"
	ActionGiveUp   = "giveUp"
)

// ---------------------------- server → client ------------------------------

type GameStarted struct {
	Type      string      `json:"type"`
	GameState *game.State `json:"gameState"`
	Field     board.Field `json:"field"`
	Color     game.Color  `json:"color"`
}

type GameAborted struct {
	Type string `json:"type"`
}

type GameResult struct {
	Type string `json:"type"`
	Win  bool   `json:"win"`
}

type ChangePlayer struct {
	Type      string      `json:"type"`
	GameState *game.State `json:"gameState"`
	Color     game.Color  `json:"color"`
}

// Incorrect is both incorrectRequest and incorrectResponse.
type Incorrect struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// IncorrectRequest builds the rejection sent to the offending client.
func IncorrectRequest(msg string) Incorrect {
	return Incorrect{Type: TypeIncorrectRequest, Message: msg}
}

// ---------------------------- client → server ------------------------------

// inbound is the union of every client message.
type inbound struct {
	Type    string  `json:"type"`
	Action  *action `json:"action"`
	Message string  `json:"message"`
}

// action is the union of every playerMove action.
type action struct {
	Name        string         `json:"name"`
	Place       int            `json:"place"`
	Building    board.Building `json:"type"`
	Coefficient int            `json:"coefficient"`
	From        board.Resource `json:"from"`
	To          board.Resource `json:"to"`
	Color       game.Color     `json:"color"` // giveUp; ignored in favor of the sender's seat
}
