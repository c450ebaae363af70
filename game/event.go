package game

import (
	"github.com/ratel-online/landlord/poker"
	"github.com/ratel-online/landlord/rule"
)

// Everyone addresses an envelope to all seats.
const Everyone = -1

// Envelope is an event routed to one seat, or to every seat.
type Envelope struct {
	To    int
	Event Event
}

func broadcast(e Event) Envelope {
	return Envelope{To: Everyone, Event: e}
}

func unicast(seat int, e Event) Envelope {
	return Envelope{To: seat, Event: e}
}

// Event is an authoritative room update. Like Action the set is closed.
type Event interface {
	event()
}

type SeatInfo struct {
	Seat   int    `json:"seat"`
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Score  int64  `json:"score"`
	Ready  bool   `json:"ready"`
	Robot  bool   `json:"robot"`
	Absent bool   `json:"absent"`
}

type RoomJoined struct {
	Room  int64
	Seat  int
	Seats []SeatInfo
}

type SeatLeft struct {
	Seat int
}

type PlayerReady struct {
	Seat  int
	Ready bool
}

// HandsDealt carries the owner's hand; other seats appear only as sizes.
type HandsDealt struct {
	Turn  int
	Hand  poker.Cards
	Sizes [3]int
	Deal  int
}

type Redeal struct {
	Deal int
}

// BidResolved reports one bid answer. Landlord is -1 while bidding goes on.
type BidResolved struct {
	Seat     int
	Rob      bool
	Landlord int
	Kitty    poker.Cards
	Multiple int
	Turn     int
}

// CardsPlayed reports a play, or a pass when Cards is empty. Turn is -1 once
// the play ended the match.
type CardsPlayed struct {
	Seat     int
	Cards    poker.Cards
	Shape    rule.Shape
	Multiple int
	Left     int
	Turn     int
}

type GameOver struct {
	Winner     int
	Landlord   int
	Spring     bool
	AntiSpring bool
	Multiple   int
	Point      int
	Deltas     [3]int
	Hands      [3]poker.Cards
}

type MatchVoided struct {
	Reason string
}

type Suggestion struct {
	Cards poker.Cards
}

type SeatPresence struct {
	Seat   int
	Absent bool
}

// RoomSync is a personalized snapshot used for rejoins. Kitty is set once the
// landlord is known.
type RoomSync struct {
	Room     int64
	Phase    Phase
	Seat     int
	Seats    []SeatInfo
	Hand     poker.Cards
	Sizes    [3]int
	Turn     int
	Landlord int
	Last     poker.Cards
	LastSeat int
	Multiple int
	Kitty    poker.Cards
}

func (RoomJoined) event()   {}
func (SeatLeft) event()     {}
func (PlayerReady) event()  {}
func (HandsDealt) event()   {}
func (Redeal) event()       {}
func (BidResolved) event()  {}
func (CardsPlayed) event()  {}
func (GameOver) event()     {}
func (MatchVoided) event()  {}
func (Suggestion) event()   {}
func (SeatPresence) event() {}
func (RoomSync) event()     {}
