package poker

import (
	"math/rand"
	"sort"
	"strings"
)

// Card is a deck identity in [0, 53]. Ids 0-51 are the four suits of 13 ranks,
// rank = id % 13 and suit = id / 13; 52 and 53 are the small and big joker.
type Card int

type Rank int

type Suit int

const (
	Rank3 Rank = iota
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
	Rank2
	RankSmallJoker
	RankBigJoker
)

const (
	SuitSpade Suit = iota
	SuitHeart
	SuitClub
	SuitDiamond
	SuitJoker
)

const (
	SmallJoker Card = 52
	BigJoker   Card = 53

	DeckSize = 54
	Ranks    = 15
)

// Alphabet holds one char per rank, low to high. Rank strings (keys) are
// written with it.
const Alphabet = "34567890JQKA2wW"

var rankDesc = []string{"3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A", "2", "SJ", "BJ"}

var suitDesc = []string{"♠", "♥", "♣", "♦", ""}

var charRanks = func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		table[Alphabet[i]] = int8(i)
	}
	return table
}()

func RankOf(c Card) Rank {
	switch c {
	case SmallJoker:
		return RankSmallJoker
	case BigJoker:
		return RankBigJoker
	}
	return Rank(int(c) % 13)
}

// RankOfChar maps a key char back to its rank.
func RankOfChar(ch byte) (Rank, bool) {
	r := charRanks[ch]
	return Rank(r), r >= 0
}

func (c Card) Rank() Rank {
	return RankOf(c)
}

func (c Card) Suit() Suit {
	if c >= SmallJoker {
		return SuitJoker
	}
	return Suit(int(c) / 13)
}

func (c Card) Valid() bool {
	return c >= 0 && c < DeckSize
}

func (c Card) String() string {
	return suitDesc[c.Suit()] + rankDesc[c.Rank()]
}

func (r Rank) Char() byte {
	return Alphabet[r]
}

func (r Rank) String() string {
	return rankDesc[r]
}

func (s Suit) String() string {
	return suitDesc[s]
}

// Red reports whether cards of the suit print in red.
func (s Suit) Red() bool {
	return s == SuitHeart || s == SuitDiamond
}

// Compare orders cards by rank; suit only breaks ties so the order is total.
func Compare(a, b Card) int {
	ra, rb := RankOf(a), RankOf(b)
	if ra != rb {
		return int(ra) - int(rb)
	}
	return int(a) - int(b)
}

type Cards []Card

func NewDeck() Cards {
	deck := make(Cards, DeckSize)
	for i := range deck {
		deck[i] = Card(i)
	}
	return deck
}

// ShuffledDeck returns a uniform permutation of the 54 cards.
func ShuffledDeck(rng *rand.Rand) Cards {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

func (cs Cards) Clone() Cards {
	return append(Cards{}, cs...)
}

func (cs Cards) Sort() {
	sort.Slice(cs, func(i, j int) bool {
		return Compare(cs[i], cs[j]) < 0
	})
}

func (cs Cards) Sorted() Cards {
	sorted := cs.Clone()
	sorted.Sort()
	return sorted
}

func (cs Cards) Counts() [Ranks]int {
	var counts [Ranks]int
	for _, c := range cs {
		counts[c.Rank()]++
	}
	return counts
}

// Key is the rank string of the multiset, sorted low to high.
func (cs Cards) Key() string {
	counts := cs.Counts()
	buf := make([]byte, 0, len(cs))
	for r, n := range counts {
		for i := 0; i < n; i++ {
			buf = append(buf, Alphabet[r])
		}
	}
	return string(buf)
}

func (cs Cards) Contains(c Card) bool {
	for _, v := range cs {
		if v == c {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every card of sub is held, each at most once.
func (cs Cards) ContainsAll(sub Cards) bool {
	held := map[Card]bool{}
	for _, c := range cs {
		held[c] = true
	}
	for _, c := range sub {
		if !held[c] {
			return false
		}
		delete(held, c)
	}
	return true
}

// Unique reports whether the cards are valid ids with no duplicates.
func (cs Cards) Unique() bool {
	var seen [DeckSize]bool
	for _, c := range cs {
		if !c.Valid() || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

// Remove returns a copy of cs without the cards of sub.
func (cs Cards) Remove(sub Cards) Cards {
	drop := map[Card]bool{}
	for _, c := range sub {
		drop[c] = true
	}
	left := make(Cards, 0, len(cs))
	for _, c := range cs {
		if !drop[c] {
			left = append(left, c)
		}
	}
	return left
}

// Pick selects cards from cs matching the rank string key, lowest ids first.
// It returns false when cs does not hold the key.
func (cs Cards) Pick(key string) (Cards, bool) {
	sorted := cs.Sorted()
	used := make([]bool, len(sorted))
	picked := make(Cards, 0, len(key))
	for i := 0; i < len(key); i++ {
		r, ok := RankOfChar(key[i])
		if !ok {
			return nil, false
		}
		found := false
		for j, c := range sorted {
			if !used[j] && c.Rank() == r {
				used[j] = true
				picked = append(picked, c)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return picked, true
}

func (cs Cards) String() string {
	descs := make([]string, 0, len(cs))
	for _, c := range cs {
		descs = append(descs, c.String())
	}
	return strings.Join(descs, " ")
}

func (cs Cards) Ints() []int {
	ints := make([]int, len(cs))
	for i, c := range cs {
		ints[i] = int(c)
	}
	return ints
}

func FromInts(ints []int) Cards {
	cards := make(Cards, len(ints))
	for i, v := range ints {
		cards[i] = Card(v)
	}
	return cards
}
