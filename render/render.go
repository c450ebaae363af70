package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/game"
	"github.com/ratel-online/landlord/poker"
)

var (
	red   = color.New(color.FgHiRed).SprintFunc()
	black = color.New(color.FgHiWhite).SprintFunc()
	gold  = color.New(color.FgHiYellow).SprintFunc()
)

// Card paints a card the way it reads on a real deck.
func Card(c poker.Card) string {
	switch {
	case c == poker.BigJoker:
		return red(c.String())
	case c == poker.SmallJoker:
		return black(c.String())
	case c.Suit().Red():
		return red(c.String())
	}
	return black(c.String())
}

func Cards(cs poker.Cards) string {
	descs := make([]string, 0, len(cs))
	for _, c := range cs {
		descs = append(descs, Card(c))
	}
	return strings.Join(descs, " ")
}

// View is the text answer to a VIEW request of seat: the table, the cards
// still out per rank, and the seat's own hand.
func View(room *game.Room, seat int) string {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("Room %d, level %d, %s, multiple %d\n", room.ID, room.Level, room.Phase, room.Multiple))
	buf.WriteString(fmt.Sprintf("%-20s%-10s%-10s%-10s\n", "Name", "Pokers", "Identity", "Score"))
	for i, s := range room.Seats {
		if s == nil {
			buf.WriteString(fmt.Sprintf("%-20s\n", "-"))
			continue
		}
		name := s.Name
		if i == seat {
			name += "*"
		}
		if s.Absent {
			name += "(away)"
		}
		if i == room.Turn && (room.Phase == game.PhaseBidding || room.Phase == game.PhasePlaying) {
			name = ">" + name
		}
		buf.WriteString(fmt.Sprintf("%-20s%-10d%-10s%-10d\n", name, len(s.Hand), room.Team(i), s.Score))
	}
	if room.Phase == game.PhaseWaiting || room.Phase == game.PhaseBidding {
		return buf.String()
	}
	counts := room.Seats[seat].Hand.Counts()
	buf.WriteString("Pokers  : ")
	for _, i := range consts.MnemonicSorted {
		buf.WriteString(fmt.Sprintf("%-4s", poker.Rank(i)))
	}
	buf.WriteString("\nSurplus : ")
	for _, i := range consts.MnemonicSorted {
		buf.WriteString(fmt.Sprintf("%-4s", strconv.Itoa(room.Mnemonic[i]-counts[i])))
	}
	buf.WriteString("\n")
	if len(room.Kitty) > 0 {
		buf.WriteString("Kitty   : " + Cards(room.Kitty) + "\n")
	}
	if room.LastSeat >= 0 && len(room.Last) > 0 {
		buf.WriteString(fmt.Sprintf("Last    : %s by %s\n", Cards(room.Last), gold(room.Seats[room.LastSeat].Name)))
	}
	buf.WriteString("Hand    : " + Cards(room.Seats[seat].Hand.Sorted()) + "\n")
	return buf.String()
}
