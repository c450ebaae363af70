package game

import (
	"math/rand"

	"github.com/ratel-online/landlord/poker"
)

// Pending returns the seat the room waits on, if any.
func Pending(r *Room) (int, bool) {
	if r.halted || r.Turn < 0 {
		return -1, false
	}
	if r.Phase != PhaseBidding && r.Phase != PhasePlaying {
		return -1, false
	}
	return r.Turn, true
}

// Autopilot decides for seat when the server has to: robots always, remote
// players only on timeout or while absent.
func Autopilot(r *Room, seat int, rng *rand.Rand) (Action, bool) {
	s := r.Seats[seat]
	if s == nil {
		return nil, false
	}
	switch s.Kind {
	case SeatRobot:
		return robot(r, seat, rng)
	case SeatRemote:
		return fallback(r, seat)
	}
	return nil, false
}

func robot(r *Room, seat int, rng *rand.Rand) (Action, bool) {
	switch r.Phase {
	case PhaseWaiting, PhaseFinished:
		if r.Phase == PhaseWaiting && r.Seats[seat].Ready {
			return nil, false
		}
		return Ready{Ready: true}, true
	case PhaseBidding:
		if seat != r.Turn {
			return nil, false
		}
		return Bid{Rob: rng.Intn(2) == 1}, true
	case PhasePlaying:
		if seat != r.Turn {
			return nil, false
		}
		if !r.Leading(seat) && r.IsTeammate(seat, r.LastSeat) {
			return Pass{}, true
		}
		cards := r.Suggest(seat)
		if len(cards) == 0 {
			return Pass{}, true
		}
		return Play{Cards: cards}, true
	}
	return nil, false
}

// fallback is the timeout move: decline the bid, lead the smallest card,
// pass when following.
func fallback(r *Room, seat int) (Action, bool) {
	if seat != r.Turn {
		return nil, false
	}
	switch r.Phase {
	case PhaseBidding:
		return Bid{Rob: false}, true
	case PhasePlaying:
		if r.Leading(seat) {
			hand := r.Seats[seat].Hand.Sorted()
			return Play{Cards: poker.Cards{hand[0]}}, true
		}
		return Pass{}, true
	}
	return nil, false
}
