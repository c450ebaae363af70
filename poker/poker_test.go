package poker_test

import (
	"math/rand"
	"testing"

	"github.com/ratel-online/landlord/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankOf(t *testing.T) {
	scenarios := []struct {
		description  string
		card         poker.Card
		expectedRank poker.Rank
	}{
		{description: "first_card_is_three", card: 0, expectedRank: poker.Rank3},
		{description: "rank_repeats_per_suit", card: 13, expectedRank: poker.Rank3},
		{description: "ace_of_last_suit", card: 50, expectedRank: poker.RankA},
		{description: "two_is_above_ace", card: 12, expectedRank: poker.Rank2},
		{description: "small_joker", card: poker.SmallJoker, expectedRank: poker.RankSmallJoker},
		{description: "big_joker", card: poker.BigJoker, expectedRank: poker.RankBigJoker},
	}
	for _, scenario := range scenarios {
		t.Run(scenario.description, func(t *testing.T) {
			require.Equal(t, scenario.expectedRank, poker.RankOf(scenario.card))
		})
	}
}

func TestCompare(t *testing.T) {
	assert.Less(t, poker.Compare(11, 12), 0, "A below 2")
	assert.Less(t, poker.Compare(12, poker.SmallJoker), 0, "2 below small joker")
	assert.Less(t, poker.Compare(poker.SmallJoker, poker.BigJoker), 0)
	assert.Greater(t, poker.Compare(1, 13), 0, "4 above 3 of another suit")
	assert.Equal(t, 0, poker.Compare(5, 5))
}

func TestShuffledDeck(t *testing.T) {
	deck := poker.ShuffledDeck(rand.New(rand.NewSource(7)))
	require.Len(t, deck, poker.DeckSize)
	require.True(t, deck.Unique())
	require.NotEqual(t, poker.NewDeck(), deck)
}

func TestKey(t *testing.T) {
	cards := poker.Cards{poker.BigJoker, 1, 13, 0, 26, 12, poker.SmallJoker, 7}
	require.Equal(t, "333402wW", cards.Key())
}

func TestPick(t *testing.T) {
	hand := poker.Cards{26, 13, 0, 1, 40, poker.BigJoker}
	picked, ok := hand.Pick("333")
	require.True(t, ok)
	require.Equal(t, poker.Cards{0, 13, 26}, picked)

	_, ok = hand.Pick("3333")
	require.False(t, ok)

	picked, ok = hand.Pick("4W")
	require.True(t, ok)
	require.Equal(t, poker.Cards{1, poker.BigJoker}, picked)
}

func TestContainsAllAndRemove(t *testing.T) {
	hand := poker.Cards{0, 1, 2, 3}
	assert.True(t, hand.ContainsAll(poker.Cards{1, 3}))
	assert.False(t, hand.ContainsAll(poker.Cards{1, 1}), "duplicates are not held twice")
	assert.False(t, hand.ContainsAll(poker.Cards{9}))
	assert.Equal(t, poker.Cards{0, 2}, hand.Remove(poker.Cards{1, 3}))
	assert.Equal(t, poker.Cards{0, 1, 2, 3}, hand, "remove does not mutate")
}

func TestUnique(t *testing.T) {
	assert.True(t, poker.Cards{0, 53}.Unique())
	assert.False(t, poker.Cards{0, 0}.Unique())
	assert.False(t, poker.Cards{54}.Unique())
	assert.False(t, poker.Cards{-1}.Unique())
}
