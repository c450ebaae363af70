package rule

import (
	"strconv"
)

// Shape names a family of legal card combinations. Straights of different
// lengths are different shapes and never beat each other.
type Shape string

const (
	Rocket     Shape = "rocket"
	Bomb       Shape = "bomb"
	Single     Shape = "single"
	Pair       Shape = "pair"
	Trio       Shape = "trio"
	TrioPair   Shape = "trio_pair"
	TrioSingle Shape = "trio_single"
	BombPair   Shape = "bomb_pair"
	BombSingle Shape = "bomb_single"
)

const (
	// BombBand lifts bomb values above every ordinary catalog index.
	BombBand = 1 << 20
	// RocketValue is above every bomb.
	RocketValue = 1 << 21
)

func SeqSingle(n int) Shape     { return Shape("seq_single" + strconv.Itoa(n)) }
func SeqPair(n int) Shape       { return Shape("seq_pair" + strconv.Itoa(n)) }
func SeqTrio(n int) Shape       { return Shape("seq_trio" + strconv.Itoa(n)) }
func SeqTrioPair(n int) Shape   { return Shape("seq_trio_pair" + strconv.Itoa(n)) }
func SeqTrioSingle(n int) Shape { return Shape("seq_trio_single" + strconv.Itoa(n)) }

// Shapes lists every shape in classification priority. When two shapes spell
// the same rank string, the earlier one owns it.
var Shapes []Shape

type family int

const (
	familyRocket family = iota
	familyBomb
	familySingle
	familyPair
	familyTrio
	familyTrioPair
	familyTrioSingle
	familySeqSingle
	familySeqPair
	familySeqTrio
	familySeqTrioPair
	familySeqTrioSingle
	familyBombPair
	familyBombSingle
)

type shapeInfo struct {
	family family
	chain  int
	size   int
}

var shapeInfos = map[Shape]shapeInfo{}

func init() {
	add := func(s Shape, f family, chain, size int) {
		Shapes = append(Shapes, s)
		shapeInfos[s] = shapeInfo{family: f, chain: chain, size: size}
	}
	add(Rocket, familyRocket, 1, 2)
	add(Bomb, familyBomb, 1, 4)
	add(Single, familySingle, 1, 1)
	add(Pair, familyPair, 1, 2)
	add(Trio, familyTrio, 1, 3)
	add(TrioPair, familyTrioPair, 1, 5)
	add(TrioSingle, familyTrioSingle, 1, 4)
	for n := 5; n <= 12; n++ {
		add(SeqSingle(n), familySeqSingle, n, n)
	}
	for n := 3; n <= 10; n++ {
		add(SeqPair(n), familySeqPair, n, 2*n)
	}
	for n := 2; n <= 6; n++ {
		add(SeqTrio(n), familySeqTrio, n, 3*n)
	}
	for n := 2; n <= 4; n++ {
		add(SeqTrioPair(n), familySeqTrioPair, n, 5*n)
	}
	for n := 2; n <= 5; n++ {
		add(SeqTrioSingle(n), familySeqTrioSingle, n, 4*n)
	}
	add(BombPair, familyBombPair, 1, 8)
	add(BombSingle, familyBombSingle, 1, 6)
}

// Len is the number of cards of every instance of the shape, 0 if unknown.
func (s Shape) Len() int {
	return shapeInfos[s].size
}

func (s Shape) Known() bool {
	_, ok := shapeInfos[s]
	return ok
}

// Doubling reports whether playing the shape doubles the room multiplier.
func (s Shape) Doubling() bool {
	return s == Bomb || s == Rocket
}

// Faces is a classified card multiset.
type Faces struct {
	Shape Shape  `json:"shape"`
	Value int    `json:"value"`
	Key   string `json:"key"`
}

// Bombing reports whether the faces sit in the bomb band (bomb or rocket).
func (f Faces) Bombing() bool {
	return f.Value >= BombBand
}

// Beats reports whether f may be played over last.
func (f Faces) Beats(last Faces) bool {
	if f.Shape != last.Shape && !f.Bombing() {
		return false
	}
	return f.Value > last.Value
}
