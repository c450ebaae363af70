package rule

import (
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/poker"
)

// Classify resolves cards to their shape and value. The rocket and bombs sit
// first in the catalog priority so they win over every ordinary reading.
// Card ids outside the deck never classify.
func (c *Catalog) Classify(cards poker.Cards) (Faces, bool) {
	if len(cards) == 0 {
		return Faces{}, false
	}
	for _, card := range cards {
		if !card.Valid() {
			return Faces{}, false
		}
	}
	return c.ClassifyKey(cards.Key())
}

func (c *Catalog) ClassifyKey(key string) (Faces, bool) {
	faces, ok := c.index[key]
	return faces, ok
}

// BestShot picks the opening play for hand: the longest ordinary shape the
// hand holds, lowest first on ties, then the lowest bomb, then the rocket.
func (c *Catalog) BestShot(hand poker.Cards) poker.Cards {
	held := countsOf(hand)
	for size := len(hand); size > 0; size-- {
		for _, s := range c.lengths[size] {
			for _, e := range c.specs[s] {
				if e.heldBy(held) {
					return pick(hand, e.key)
				}
			}
		}
	}
	return c.firstBomb(hand, held)
}

// CardsAbove returns the smallest play from hand that beats last, or nothing.
func (c *Catalog) CardsAbove(hand poker.Cards, last poker.Cards) poker.Cards {
	faces, ok := c.Classify(last)
	if !ok {
		return nil
	}
	return c.FacesAbove(hand, faces)
}

func (c *Catalog) FacesAbove(hand poker.Cards, last Faces) poker.Cards {
	if last.Shape == Rocket {
		return nil
	}
	held := countsOf(hand)
	for _, e := range c.specs[last.Shape] {
		faces := c.index[e.key]
		if faces.Value > last.Value && e.heldBy(held) {
			return pick(hand, e.key)
		}
	}
	if last.Shape == Bomb {
		return c.rocket(hand, held)
	}
	return c.firstBomb(hand, held)
}

// CanPlay checks whether proposed may follow last. An empty last means the
// player leads and any recognized shape goes.
func (c *Catalog) CanPlay(last, proposed poker.Cards) error {
	faces, ok := c.Classify(proposed)
	if !ok {
		return consts.ErrorsInvalidShape
	}
	if len(last) == 0 {
		return nil
	}
	lastFaces, ok := c.Classify(last)
	if !ok {
		return consts.ErrorsNothingToBeat
	}
	return CanBeat(lastFaces, faces)
}

func CanBeat(last, proposed Faces) error {
	if proposed.Shape != last.Shape && !proposed.Bombing() {
		return consts.ErrorsShapeMismatch
	}
	if proposed.Value <= last.Value {
		return consts.ErrorsMustExceed
	}
	return nil
}

func (c *Catalog) firstBomb(hand poker.Cards, held counts) poker.Cards {
	for _, e := range c.specs[Bomb] {
		if e.heldBy(held) {
			return pick(hand, e.key)
		}
	}
	return c.rocket(hand, held)
}

func (c *Catalog) rocket(hand poker.Cards, held counts) poker.Cards {
	if held[poker.RankSmallJoker] > 0 && held[poker.RankBigJoker] > 0 {
		return poker.Cards{poker.SmallJoker, poker.BigJoker}
	}
	return nil
}

func countsOf(hand poker.Cards) counts {
	var cs counts
	for _, card := range hand {
		cs[card.Rank()]++
	}
	return cs
}

func pick(hand poker.Cards, key string) poker.Cards {
	cards, _ := hand.Pick(key)
	return cards
}
