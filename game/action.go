package game

import "github.com/ratel-online/landlord/poker"

// Action is a client request addressed to a room. The set is closed: every
// variant is declared here and switched over exhaustively.
type Action interface {
	action()
}

type JoinRoom struct {
	Room  int64
	Level int
}

type LeaveRoom struct{}

type Ready struct {
	Ready bool
}

type Bid struct {
	Rob bool
}

// Play with no cards is a pass.
type Play struct {
	Cards poker.Cards
}

type Pass struct{}

type Hint struct{}

type View struct{}

func (JoinRoom) action()  {}
func (LeaveRoom) action() {}
func (Ready) action()     {}
func (Bid) action()       {}
func (Play) action()      {}
func (Pass) action()      {}
func (Hint) action()      {}
func (View) action()      {}
