package game_test

import (
	"math/rand"
	"testing"

	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/game"
	"github.com/ratel-online/landlord/poker"
	"github.com/stretchr/testify/require"
)

func TestFallback(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	r := dealtRoom(t, game.Options{Deck: stackedDeck})

	_, ok := game.Autopilot(r, 1, rng)
	require.False(t, ok, "nothing to decide out of turn")

	seat, ok := game.Pending(r)
	require.True(t, ok)
	require.Equal(t, 0, seat)
	action, ok := game.Autopilot(r, 0, rng)
	require.True(t, ok)
	require.Equal(t, game.Bid{Rob: false}, action)

	apply(t, r, 0, game.Bid{Rob: true})
	action, ok = game.Autopilot(r, 0, rng)
	require.True(t, ok)
	require.Equal(t, game.Play{Cards: poker.Cards{0}}, action, "leader plays its smallest card")

	apply(t, r, 0, action)
	action, ok = game.Autopilot(r, 1, rng)
	require.True(t, ok)
	require.Equal(t, game.Pass{}, action)
}

func TestRobotPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	r := landlordRoom(t, game.Options{}, game.SeatRemote, game.SeatRemote, game.SeatRobot)

	apply(t, r, 0, game.Play{Cards: poker.Cards{1}})
	apply(t, r, 1, game.Play{Cards: poker.Cards{12}})
	action, ok := game.Autopilot(r, 2, rng)
	require.True(t, ok)
	require.Equal(t, game.Pass{}, action, "robot does not beat its teammate")
	apply(t, r, 2, action)

	apply(t, r, 0, game.Play{Cards: poker.Cards{poker.SmallJoker}})
	apply(t, r, 1, game.Pass{})
	action, ok = game.Autopilot(r, 2, rng)
	require.True(t, ok)
	require.Equal(t, game.Pass{}, action, "nothing beats the small joker")
	apply(t, r, 2, action)

	apply(t, r, 0, game.Play{Cards: poker.Cards{2}})
	apply(t, r, 1, game.Pass{})
	action, ok = game.Autopilot(r, 2, rng)
	require.True(t, ok)
	require.Equal(t, game.Play{Cards: poker.Cards{42}}, action, "robot beats the landlord with the smallest single")
}

func TestRobotReady(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	r := newRoom(t, game.Options{}, game.SeatRobot, game.SeatRobot, game.SeatRobot)
	action, ok := game.Autopilot(r, 0, rng)
	require.True(t, ok)
	require.Equal(t, game.Ready{Ready: true}, action)
	apply(t, r, 0, action)
	_, ok = game.Autopilot(r, 0, rng)
	require.False(t, ok)
}

func TestRobotsFinishMatch(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		rng := rand.New(rand.NewSource(seed))
		r := newRoom(t, game.Options{BidMode: consts.BidModeContest}, game.SeatRobot, game.SeatRobot, game.SeatRobot)
		for i := 0; i < consts.Players; i++ {
			action, ok := game.Autopilot(r, i, rng)
			require.True(t, ok)
			apply(t, r, i, action)
		}
		for step := 0; step < 2000 && r.Phase != game.PhaseFinished; step++ {
			seat, ok := game.Pending(r)
			require.True(t, ok)
			action, ok := game.Autopilot(r, seat, rng)
			require.True(t, ok)
			apply(t, r, seat, action)
		}
		require.Equal(t, game.PhaseFinished, r.Phase)
		require.NotNil(t, r.Result)
		sum := 0
		for _, delta := range r.Result.Deltas {
			sum += delta
		}
		require.Zero(t, sum)
		_, ok := game.Pending(r)
		require.False(t, ok)
	}
}
