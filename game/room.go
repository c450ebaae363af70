package game

import (
	"fmt"
	"math/rand"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/poker"
	"github.com/ratel-online/landlord/rule"
)

type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseBidding
	PhasePlaying
	PhaseFinished
)

var phaseDesc = []string{"waiting", "bidding", "playing", "finished"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseDesc) {
		return "unknown"
	}
	return phaseDesc[p]
}

// SeatKind selects who decides for a seat when the server has to.
type SeatKind int

const (
	SeatRemote SeatKind = iota
	SeatRobot
)

type Player struct {
	ID    int64
	Name  string
	Score int64
	Kind  SeatKind
}

type Seat struct {
	Player

	Hand     poker.Cards
	Ready    bool
	Landlord bool
	Robbed   bool
	Absent   bool
	Shots    int
}

type Options struct {
	BidMode        string
	BaseScore      int
	SpringMultiple int
	KittyBonus     bool
	// Deck stacks the deck of every deal. Nil shuffles.
	Deck func() poker.Cards
}

func (o Options) withDefaults() Options {
	if o.BidMode == "" {
		o.BidMode = consts.BidModeQuick
	}
	if o.BaseScore <= 0 {
		o.BaseScore = 10
	}
	if o.SpringMultiple <= 0 {
		o.SpringMultiple = 3
	}
	return o
}

// Room is the authoritative state of one table. It is not safe for concurrent
// use; the owner serializes every call.
type Room struct {
	ID    int64
	Level int
	Seats [consts.Players]*Seat
	Phase Phase

	Turn      int
	Landlord  int
	Last      poker.Cards
	LastFaces rule.Faces
	LastSeat  int
	Multiple  int
	Kitty     poker.Cards
	Table     poker.Cards
	Mnemonic  [poker.Ranks]int
	Deals     int
	Dealer    int

	// BombMultiple is what every bomb or rocket multiplies by.
	BombMultiple int

	FirstRob int
	LastRob  int
	FinalRob bool
	answers  int

	Result *GameOver
	halted bool

	opts    Options
	rng     *rand.Rand
	catalog *rule.Catalog
}

func NewRoom(id int64, level int, catalog *rule.Catalog, rng *rand.Rand, opts Options) *Room {
	if level <= 0 {
		level = 1
	}
	return &Room{
		ID:           id,
		Level:        level,
		Phase:        PhaseWaiting,
		Turn:         -1,
		Landlord:     -1,
		LastSeat:     -1,
		FirstRob:     -1,
		LastRob:      -1,
		Multiple:     1,
		BombMultiple: 2,
		opts:         opts.withDefaults(),
		rng:          rng,
		catalog:      catalog,
	}
}

func (r *Room) Options() Options {
	return r.opts
}

func (r *Room) Catalog() *rule.Catalog {
	return r.catalog
}

func (r *Room) Halted() bool {
	return r.halted
}

// SeatOf returns the seat held by player id, or -1.
func (r *Room) SeatOf(id int64) int {
	for i, s := range r.Seats {
		if s != nil && s.ID == id {
			return i
		}
	}
	return -1
}

func (r *Room) Players() int {
	n := 0
	for _, s := range r.Seats {
		if s != nil {
			n++
		}
	}
	return n
}

func (r *Room) Full() bool {
	return r.Players() == consts.Players
}

// Online counts seated remote players that are not absent.
func (r *Room) Online() int {
	n := 0
	for _, s := range r.Seats {
		if s != nil && s.Kind == SeatRemote && !s.Absent {
			n++
		}
	}
	return n
}

func (r *Room) Next(seat int) int {
	return (seat + 1) % consts.Players
}

func (r *Room) IsTeammate(a, b int) bool {
	return (a == r.Landlord) == (b == r.Landlord)
}

func (r *Room) Team(seat int) string {
	if r.Landlord < 0 {
		return "-"
	}
	if seat == r.Landlord {
		return "landlord"
	}
	return "peasant"
}

// Leading reports whether seat opens a new trick.
func (r *Room) Leading(seat int) bool {
	return r.LastSeat < 0 || r.LastSeat == seat
}

// Join seats a player, or brings an absent player back to its seat.
func (r *Room) Join(p Player) (int, []Envelope, error) {
	if r.halted {
		return -1, nil, consts.ErrorsRoomHalted
	}
	if seat := r.SeatOf(p.ID); seat >= 0 {
		return seat, r.rejoin(seat), nil
	}
	var envs []Envelope
	if r.Phase == PhaseFinished {
		envs = r.reset()
	}
	if r.Phase != PhaseWaiting {
		return -1, nil, consts.ErrorsJoinFailRunning
	}
	seat := -1
	for i, s := range r.Seats {
		if s == nil {
			seat = i
			break
		}
	}
	if seat < 0 {
		return -1, nil, consts.ErrorsRoomPlayersIsFull
	}
	r.Seats[seat] = &Seat{Player: p}
	log.Infof("player %s[%d] joined room %d at seat %d\n", p.Name, p.ID, r.ID, seat)
	envs = append(envs, broadcast(RoomJoined{Room: r.ID, Seat: seat, Seats: r.seatInfos()}))
	return seat, envs, nil
}

func (r *Room) rejoin(seat int) []Envelope {
	s := r.Seats[seat]
	if !s.Absent {
		return []Envelope{unicast(seat, r.Sync(seat))}
	}
	s.Absent = false
	log.Infof("player %s[%d] rejoined room %d\n", s.Name, s.ID, r.ID)
	return []Envelope{
		broadcast(SeatPresence{Seat: seat, Absent: false}),
		unicast(seat, r.Sync(seat)),
	}
}

// Leave frees the seat between matches. During a match the seat is only
// marked absent and stays in turn order.
func (r *Room) Leave(seat int) []Envelope {
	if seat < 0 || seat >= consts.Players || r.Seats[seat] == nil {
		return nil
	}
	var envs []Envelope
	if r.Phase == PhaseFinished {
		envs = r.reset()
		if r.Seats[seat] == nil {
			return envs
		}
	}
	if r.Phase == PhaseWaiting {
		s := r.Seats[seat]
		r.Seats[seat] = nil
		log.Infof("player %s[%d] left room %d\n", s.Name, s.ID, r.ID)
		return append(envs, broadcast(SeatLeft{Seat: seat}))
	}
	return append(envs, r.SetAbsent(seat, true)...)
}

func (r *Room) SetAbsent(seat int, absent bool) []Envelope {
	s := r.Seats[seat]
	if s == nil || s.Absent == absent {
		return nil
	}
	s.Absent = absent
	return []Envelope{broadcast(SeatPresence{Seat: seat, Absent: absent})}
}

// Apply runs one action of seat to completion. A rejected action leaves the
// room untouched and returns no envelope.
func (r *Room) Apply(seat int, a Action) ([]Envelope, error) {
	if r.halted {
		return nil, consts.ErrorsRoomHalted
	}
	if seat < 0 || seat >= consts.Players || r.Seats[seat] == nil {
		return nil, consts.ErrorsNotInRoom
	}
	var (
		envs []Envelope
		err  error
	)
	switch a := a.(type) {
	case Ready:
		envs, err = r.ready(seat, a.Ready)
	case Bid:
		envs, err = r.bid(seat, a.Rob)
	case Play:
		if len(a.Cards) == 0 {
			envs, err = r.pass(seat)
		} else {
			envs, err = r.play(seat, a.Cards)
		}
	case Pass:
		envs, err = r.pass(seat)
	case Hint:
		return r.hint(seat)
	case View:
		return []Envelope{unicast(seat, r.Sync(seat))}, nil
	case LeaveRoom:
		envs = r.Leave(seat)
	case JoinRoom:
		return nil, consts.ErrorsAlreadyInRoom
	default:
		return nil, consts.ErrorsProtocol
	}
	if err != nil {
		return nil, err
	}
	if err := r.Check(); err != nil {
		r.halted = true
		log.Errorf("room %d halted: %v\n", r.ID, err)
		return append(envs, broadcast(MatchVoided{Reason: err.Error()})), consts.ErrorsInvariantViolation
	}
	return envs, nil
}

func (r *Room) ready(seat int, ready bool) ([]Envelope, error) {
	var envs []Envelope
	if r.Phase == PhaseFinished {
		envs = r.reset()
		if r.Seats[seat] == nil {
			return envs, nil
		}
	}
	if r.Phase != PhaseWaiting {
		return nil, consts.ErrorsUnexpectedPhase
	}
	r.Seats[seat].Ready = ready
	envs = append(envs, broadcast(PlayerReady{Seat: seat, Ready: ready}))
	for _, s := range r.Seats {
		if s == nil || !s.Ready {
			return envs, nil
		}
	}
	return append(envs, r.deal()...), nil
}

// reset closes a finished match: absent players lose their seats and the
// rest wait for the next ready.
func (r *Room) reset() []Envelope {
	var envs []Envelope
	for i, s := range r.Seats {
		if s == nil {
			continue
		}
		if s.Absent {
			r.Seats[i] = nil
			envs = append(envs, broadcast(SeatLeft{Seat: i}))
			continue
		}
		s.Ready = false
		s.Hand = nil
		s.Landlord = false
		s.Robbed = false
		s.Shots = 0
	}
	r.Phase = PhaseWaiting
	r.Turn = -1
	r.Landlord = -1
	r.Last = nil
	r.LastFaces = rule.Faces{}
	r.LastSeat = -1
	r.Kitty = nil
	r.Table = nil
	r.Multiple = 1
	r.BombMultiple = 2
	r.Result = nil
	return envs
}

func (r *Room) deck() poker.Cards {
	if r.opts.Deck != nil {
		return r.opts.Deck()
	}
	return poker.ShuffledDeck(r.rng)
}

func (r *Room) deal() []Envelope {
	deck := r.deck()
	for i, s := range r.Seats {
		s.Hand = deck[i*consts.HandSize : (i+1)*consts.HandSize].Sorted()
		s.Landlord = false
		s.Robbed = false
		s.Shots = 0
	}
	r.Kitty = deck[consts.Players*consts.HandSize:].Sorted()
	r.Table = nil
	r.Last = nil
	r.LastFaces = rule.Faces{}
	r.LastSeat = -1
	r.Multiple = 1
	r.BombMultiple = 2
	r.Landlord = -1
	r.FirstRob = -1
	r.LastRob = -1
	r.FinalRob = false
	r.answers = 0
	r.Result = nil
	for i := range r.Mnemonic {
		r.Mnemonic[i] = 4
	}
	r.Mnemonic[poker.RankSmallJoker] = 1
	r.Mnemonic[poker.RankBigJoker] = 1

	r.Deals++
	r.Turn = r.Dealer
	r.Dealer = r.Next(r.Dealer)
	r.Phase = PhaseBidding
	log.Infof("room %d deal %d, seat %d bids first\n", r.ID, r.Deals, r.Turn)

	sizes := r.sizes()
	envs := make([]Envelope, 0, consts.Players)
	for i, s := range r.Seats {
		envs = append(envs, unicast(i, HandsDealt{
			Turn:  r.Turn,
			Hand:  s.Hand.Clone(),
			Sizes: sizes,
			Deal:  r.Deals,
		}))
	}
	return envs
}

func (r *Room) bid(seat int, rob bool) ([]Envelope, error) {
	if r.Phase != PhaseBidding {
		return nil, consts.ErrorsUnexpectedPhase
	}
	if seat != r.Turn {
		return nil, consts.ErrorsNotYourTurn
	}
	if rob {
		r.Multiple *= 2
		r.Seats[seat].Robbed = true
	}
	if r.opts.BidMode == consts.BidModeContest {
		return r.contest(seat, rob), nil
	}
	if rob {
		return r.award(seat, seat, rob), nil
	}
	r.answers++
	if r.answers == consts.Players {
		return r.redeal(seat), nil
	}
	r.Turn = r.Next(seat)
	return []Envelope{r.bidAnswer(seat, rob)}, nil
}

// contest lets every seat answer once; when more than one seat robbed the
// first robber answers again and takes it on a second rob.
func (r *Room) contest(seat int, rob bool) []Envelope {
	if r.FinalRob {
		if rob {
			return r.award(seat, seat, rob)
		}
		return r.award(r.LastRob, seat, rob)
	}
	if rob {
		if r.FirstRob < 0 {
			r.FirstRob = seat
		}
		r.LastRob = seat
	}
	r.answers++
	if r.answers < consts.Players {
		r.Turn = r.Next(seat)
		return []Envelope{r.bidAnswer(seat, rob)}
	}
	switch {
	case r.FirstRob < 0:
		return r.redeal(seat)
	case r.FirstRob == r.LastRob:
		return r.award(r.FirstRob, seat, rob)
	}
	r.FinalRob = true
	r.Turn = r.FirstRob
	return []Envelope{r.bidAnswer(seat, rob)}
}

func (r *Room) bidAnswer(seat int, rob bool) Envelope {
	return broadcast(BidResolved{
		Seat:     seat,
		Rob:      rob,
		Landlord: -1,
		Multiple: r.Multiple,
		Turn:     r.Turn,
	})
}

func (r *Room) redeal(seat int) []Envelope {
	envs := []Envelope{
		broadcast(BidResolved{Seat: seat, Landlord: -1, Multiple: r.Multiple, Turn: -1}),
		broadcast(Redeal{Deal: r.Deals}),
	}
	log.Infof("room %d: all players have give up the landlord, restarting\n", r.ID)
	r.Phase = PhaseWaiting
	return append(envs, r.deal()...)
}

func (r *Room) award(landlord, bidder int, rob bool) []Envelope {
	s := r.Seats[landlord]
	s.Landlord = true
	s.Hand = append(s.Hand, r.Kitty...).Sorted()
	if r.opts.KittyBonus {
		r.Multiple *= KittyMultiple(r.Kitty)
		r.BombMultiple = BombMultiple(r.Kitty)
	}
	r.Landlord = landlord
	r.Turn = landlord
	r.LastSeat = -1
	r.Phase = PhasePlaying
	log.Infof("room %d: %s became landlord, got pokers: %s\n", r.ID, s.Name, r.Kitty.String())
	return []Envelope{broadcast(BidResolved{
		Seat:     bidder,
		Rob:      rob,
		Landlord: landlord,
		Kitty:    r.Kitty.Clone(),
		Multiple: r.Multiple,
		Turn:     r.Turn,
	})}
}

// BombMultiple is the bomb factor after the kitty bonus: a single-suit kitty
// without jokers makes every bomb count four.
func BombMultiple(kitty poker.Cards) int {
	if KittyMultiple(kitty) == 2 && !kitty.Contains(poker.SmallJoker) && !kitty.Contains(poker.BigJoker) {
		return 4
	}
	return 2
}

// KittyMultiple is the bonus for the revealed kitty: twice the number of
// jokers, or double for a single-suit kitty.
func KittyMultiple(kitty poker.Cards) int {
	jokers := 0
	for _, c := range kitty {
		if c.Suit() == poker.SuitJoker {
			jokers++
		}
	}
	if jokers > 0 {
		return 2 * jokers
	}
	for _, c := range kitty[1:] {
		if c.Suit() != kitty[0].Suit() {
			return 1
		}
	}
	return 2
}

func (r *Room) play(seat int, cards poker.Cards) ([]Envelope, error) {
	if r.Phase != PhasePlaying {
		return nil, consts.ErrorsUnexpectedPhase
	}
	if seat != r.Turn {
		return nil, consts.ErrorsNotYourTurn
	}
	s := r.Seats[seat]
	if !cards.Unique() || !s.Hand.ContainsAll(cards) {
		return nil, consts.ErrorsPokerNotExist
	}
	var last poker.Cards
	if !r.Leading(seat) {
		last = r.Last
	}
	if err := r.catalog.CanPlay(last, cards); err != nil {
		return nil, err
	}
	faces, _ := r.catalog.Classify(cards)
	sells := cards.Sorted()
	s.Hand = s.Hand.Remove(sells)
	s.Shots++
	r.Table = append(r.Table, sells...)
	for _, c := range sells {
		r.Mnemonic[c.Rank()]--
	}
	r.Last = sells
	r.LastFaces = faces
	r.LastSeat = seat
	if faces.Shape.Doubling() {
		r.Multiple *= r.BombMultiple
	}
	if len(s.Hand) == 0 {
		r.Turn = -1
		envs := []Envelope{r.played(seat, sells, faces.Shape)}
		return append(envs, r.finish(seat)), nil
	}
	r.Turn = r.Next(seat)
	return []Envelope{r.played(seat, sells, faces.Shape)}, nil
}

func (r *Room) pass(seat int) ([]Envelope, error) {
	if r.Phase != PhasePlaying {
		return nil, consts.ErrorsUnexpectedPhase
	}
	if seat != r.Turn {
		return nil, consts.ErrorsNotYourTurn
	}
	if r.Leading(seat) {
		return nil, consts.ErrorsHaveToPlay
	}
	r.Turn = r.Next(seat)
	return []Envelope{r.played(seat, nil, "")}, nil
}

func (r *Room) played(seat int, cards poker.Cards, shape rule.Shape) Envelope {
	return broadcast(CardsPlayed{
		Seat:     seat,
		Cards:    cards,
		Shape:    shape,
		Multiple: r.Multiple,
		Left:     len(r.Seats[seat].Hand),
		Turn:     r.Turn,
	})
}

// Suggest returns the play the engine proposes for seat.
func (r *Room) Suggest(seat int) poker.Cards {
	hand := r.Seats[seat].Hand
	if r.Leading(seat) {
		return r.catalog.BestShot(hand)
	}
	return r.catalog.FacesAbove(hand, r.LastFaces)
}

func (r *Room) hint(seat int) ([]Envelope, error) {
	if r.Phase != PhasePlaying {
		return nil, consts.ErrorsUnexpectedPhase
	}
	return []Envelope{unicast(seat, Suggestion{Cards: r.Suggest(seat)})}, nil
}

func (r *Room) finish(winner int) Envelope {
	landlordWon := winner == r.Landlord
	result := GameOver{
		Winner:   winner,
		Landlord: r.Landlord,
	}
	peasantShots := 0
	for i, s := range r.Seats {
		if i != r.Landlord {
			peasantShots += s.Shots
		}
		result.Hands[i] = s.Hand.Clone()
	}
	if landlordWon {
		result.Spring = peasantShots == 0
	} else {
		result.AntiSpring = r.Seats[r.Landlord].Shots == 1
	}
	if result.Spring || result.AntiSpring {
		r.Multiple *= r.opts.SpringMultiple
	}
	result.Multiple = r.Multiple
	result.Point = r.opts.BaseScore * r.Level * r.Multiple
	for i, s := range r.Seats {
		delta := result.Point
		if i == r.Landlord {
			delta *= 2
		}
		if (i == r.Landlord) != landlordWon {
			delta = -delta
		}
		result.Deltas[i] = delta
		s.Score += int64(delta)
	}
	r.Phase = PhaseFinished
	r.Result = &result
	log.Infof("room %d: %s won the game, %s wins, multiple %d, point %d\n",
		r.ID, r.Seats[winner].Name, r.Team(winner), r.Multiple, result.Point)
	return broadcast(result)
}

// Check verifies card conservation: hands, table and the kitty still in
// play hold every card of the deck exactly once.
func (r *Room) Check() error {
	if r.Phase == PhaseWaiting {
		return nil
	}
	all := r.Table.Clone()
	for i, s := range r.Seats {
		if s == nil {
			return fmt.Errorf("seat %d empty during %s", i, r.Phase)
		}
		all = append(all, s.Hand...)
	}
	if r.Phase == PhaseBidding {
		all = append(all, r.Kitty...)
	}
	if len(all) != poker.DeckSize {
		return fmt.Errorf("%d cards in play, want %d", len(all), poker.DeckSize)
	}
	if !all.Unique() {
		return fmt.Errorf("duplicated card in play")
	}
	return nil
}

func (r *Room) sizes() [3]int {
	var sizes [3]int
	for i, s := range r.Seats {
		if s != nil {
			sizes[i] = len(s.Hand)
		}
	}
	return sizes
}

func (r *Room) seatInfos() []SeatInfo {
	infos := make([]SeatInfo, 0, consts.Players)
	for i, s := range r.Seats {
		if s == nil {
			continue
		}
		infos = append(infos, SeatInfo{
			Seat:   i,
			ID:     s.ID,
			Name:   s.Name,
			Score:  s.Score,
			Ready:  s.Ready,
			Robot:  s.Kind == SeatRobot,
			Absent: s.Absent,
		})
	}
	return infos
}

// Sync snapshots the room as seen from seat.
func (r *Room) Sync(seat int) RoomSync {
	sync := RoomSync{
		Room:     r.ID,
		Phase:    r.Phase,
		Seat:     seat,
		Seats:    r.seatInfos(),
		Sizes:    r.sizes(),
		Turn:     r.Turn,
		Landlord: r.Landlord,
		Last:     r.Last.Clone(),
		LastSeat: r.LastSeat,
		Multiple: r.Multiple,
	}
	if s := r.Seats[seat]; s != nil {
		sync.Hand = s.Hand.Clone()
	}
	if r.Landlord >= 0 {
		sync.Kitty = r.Kitty.Clone()
	}
	return sync
}
