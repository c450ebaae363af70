package consts

import (
	"time"
)

const (
	Players   = 3
	HandSize  = 17
	KittySize = 3
	MaxLevel  = 3

	RobTimeout  = 20 * time.Second
	PlayTimeout = 40 * time.Second
	AuthTimeout = 3 * time.Second
)

// Bid modes.
const (
	BidModeQuick   = "quick"
	BidModeContest = "contest"
)

// Error codes, one per failure family.
const (
	CodeInvalidShape = 1
	CodeIllegalMove  = 2
	CodeProtocol     = 3
	CodeInvariant    = 4
)

var MnemonicSorted = []int{14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

type Error struct {
	Code int
	Msg  string
	Exit bool
}

func (e Error) Error() string {
	return e.Msg
}

func NewErr(code int, exit bool, msg string) Error {
	return Error{Code: code, Exit: exit, Msg: msg}
}

var (
	ErrorsInvalidShape = NewErr(CodeInvalidShape, false, "Poker does not comply with the rules. ")

	ErrorsShapeMismatch = NewErr(CodeIllegalMove, false, "Poker type does not match last shot. ")
	ErrorsMustExceed    = NewErr(CodeIllegalMove, false, "Poker small than last shot. ")
	ErrorsNotYourTurn   = NewErr(CodeIllegalMove, false, "Not your turn. ")
	ErrorsPokerNotExist = NewErr(CodeIllegalMove, false, "Poker does not exist. ")
	ErrorsHaveToPlay    = NewErr(CodeIllegalMove, false, "Have to play. ")
	ErrorsNothingToBeat = NewErr(CodeIllegalMove, false, "Last shot is not a valid poker type. ")

	ErrorsProtocol          = NewErr(CodeProtocol, false, "Protocol cannot be resolved. ")
	ErrorsUnknownOpcode     = NewErr(CodeProtocol, false, "Unknown opcode. ")
	ErrorsUnexpectedPhase   = NewErr(CodeProtocol, false, "Action not allowed in current state. ")
	ErrorsNotInRoom         = NewErr(CodeProtocol, false, "Not in a room. ")
	ErrorsAlreadyInRoom     = NewErr(CodeProtocol, false, "Already in a room. ")
	ErrorsRoomInvalid       = NewErr(CodeProtocol, false, "Room invalid. ")
	ErrorsRoomPlayersIsFull = NewErr(CodeProtocol, false, "Room players is full. ")
	ErrorsJoinFailRunning   = NewErr(CodeProtocol, false, "Join fail, room is running. ")
	ErrorsLevelInvalid      = NewErr(CodeProtocol, false, "Level invalid. ")
	ErrorsAuthFail          = NewErr(CodeProtocol, true, "Auth fail. ")

	ErrorsInvariantViolation = NewErr(CodeInvariant, true, "Invariant violation, match voided. ")
	ErrorsRoomHalted         = NewErr(CodeInvariant, true, "Room halted. ")
)
