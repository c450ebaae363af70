package database

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/game"
	modelx "github.com/ratel-online/landlord/model"
	"github.com/ratel-online/landlord/render"
)

const inboxSize = 32

type request struct {
	player  int64
	action  game.Action
	offline bool
	join    *Player
	reply   chan error
}

// due identifies what the armed timer was computed for. Any change re-arms it.
type due struct {
	phase   game.Phase
	moves   int
	players int
	online  int
}

// Room owns one game.Room and is the only goroutine touching it.
type Room struct {
	ID    int64
	Level int

	conf  Settings
	rng   *rand.Rand
	state *game.Room
	inbox chan request
	done  chan struct{}
	once  sync.Once

	moves   int
	timer   *time.Timer
	timeout <-chan time.Time
	task    func()
	armed   due

	players    int32
	online     int32
	phase      int32
	activeTime int64
}

func newRoom(id int64, level int, conf Settings) *Room {
	rng := newRand()
	room := &Room{
		ID:         id,
		Level:      level,
		conf:       conf,
		rng:        rng,
		state:      game.NewRoom(id, level, conf.Catalog, rng, conf.Game),
		inbox:      make(chan request, inboxSize),
		done:       make(chan struct{}),
		activeTime: time.Now().UnixNano(),
	}
	async.Async(room.loop)
	return room
}

func (r *Room) Players() int {
	return int(atomic.LoadInt32(&r.players))
}

func (r *Room) Online() int {
	return int(atomic.LoadInt32(&r.online))
}

func (r *Room) Phase() game.Phase {
	return game.Phase(atomic.LoadInt32(&r.phase))
}

func (r *Room) Closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// Joinable reports whether a quick join of the level may be seated here.
func (r *Room) Joinable(level int) bool {
	return !r.Closed() && r.Level == level && r.Phase() == game.PhaseWaiting && r.Players() < consts.Players
}

func (r *Room) post(req request) error {
	select {
	case <-r.done:
		return consts.ErrorsRoomInvalid
	default:
	}
	select {
	case r.inbox <- req:
		return nil
	case <-r.done:
		return consts.ErrorsRoomInvalid
	}
}

func (r *Room) join(player *Player) error {
	reply := make(chan error, 1)
	if err := r.post(request{player: player.ID, join: player, reply: reply}); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return consts.ErrorsRoomInvalid
	}
}

// cancel closes the room once nobody is online or it has been idle too long.
func (r *Room) cancel() {
	idle := time.Since(time.Unix(0, atomic.LoadInt64(&r.activeTime)))
	if r.Online() == 0 || (r.conf.IdleTimeout > 0 && idle > r.conf.IdleTimeout) {
		log.Infof("room %d is idle, closing\n", r.ID)
		r.close()
	}
}

func (r *Room) close() {
	r.once.Do(func() {
		close(r.done)
		deleteRoom(r)
	})
}

func (r *Room) loop() {
	defer r.disarm()
	for {
		select {
		case req := <-r.inbox:
			atomic.StoreInt64(&r.activeTime, time.Now().UnixNano())
			r.handle(req)
		case <-r.timeout:
			task := r.task
			r.timeout, r.task = nil, nil
			if task != nil {
				task()
			}
		case <-r.done:
			r.release()
			return
		}
		r.snapshot()
		if r.Closed() {
			r.release()
			return
		}
		if r.state.Online() == 0 && (r.state.Phase == game.PhaseWaiting || r.state.Phase == game.PhaseFinished) {
			log.Infof("room %d has no player left, closing\n", r.ID)
			r.close()
			r.release()
			return
		}
		r.schedule()
	}
}

func (r *Room) snapshot() {
	atomic.StoreInt32(&r.players, int32(r.state.Players()))
	atomic.StoreInt32(&r.online, int32(r.state.Online()))
	atomic.StoreInt32(&r.phase, int32(r.state.Phase))
}

// release frees the seated players of a closed room.
func (r *Room) release() {
	for _, s := range r.state.Seats {
		if s == nil || s.Kind != game.SeatRemote {
			continue
		}
		if p := getPlayer(s.ID); p != nil && p.Room() == r.ID {
			p.setRoom(0)
		}
	}
}

func (r *Room) handle(req request) {
	switch {
	case req.join != nil:
		r.handleJoin(req.join, req.reply)
	case req.offline:
		seat := r.state.SeatOf(req.player)
		if seat < 0 {
			return
		}
		r.deliver(r.state.Leave(seat))
	default:
		r.handleAction(req.player, req.action)
	}
}

func (r *Room) handleJoin(player *Player, reply chan error) {
	_, envs, err := r.state.Join(player.Model())
	if err != nil {
		reply <- err
		return
	}
	player.setRoom(r.ID)
	reply <- nil
	r.deliver(envs)
}

func (r *Room) handleAction(id int64, action game.Action) {
	player := getPlayer(id)
	seat := r.state.SeatOf(id)
	if player == nil {
		return
	}
	if seat < 0 {
		player.WriteError(consts.ErrorsNotInRoom)
		return
	}
	switch action.(type) {
	case game.View:
		player.Write(modelx.EncodeView(render.View(r.state, seat)))
		return
	case game.LeaveRoom:
		envs, err := r.state.Apply(seat, action)
		if err != nil {
			player.WriteError(err)
			return
		}
		player.setRoom(0)
		player.Write(encode(game.SeatLeft{Seat: seat}))
		r.moves++
		r.deliver(envs)
		return
	}
	r.apply(seat, action, player)
}

// apply runs action for seat. actor is nil when the server decided for the seat.
func (r *Room) apply(seat int, action game.Action, actor *Player) {
	envs, err := r.state.Apply(seat, action)
	r.deliver(envs)
	if err != nil {
		switch {
		case errors.Is(err, consts.ErrorsInvariantViolation), errors.Is(err, consts.ErrorsRoomHalted):
			r.close()
		case actor != nil:
			actor.WriteError(err)
		default:
			log.Errorf("room %d seat %d autopilot %T: %v\n", r.ID, seat, action, err)
		}
		return
	}
	if _, ok := action.(game.Hint); !ok {
		r.moves++
	}
	for _, env := range envs {
		if over, ok := env.Event.(game.GameOver); ok {
			r.settle(over)
		}
	}
}

func (r *Room) settle(over game.GameOver) {
	log.Infof("room %d game over, winner seat %d, point %d\n", r.ID, over.Winner, over.Point)
	for _, s := range r.state.Seats {
		if s == nil || s.Kind != game.SeatRemote {
			continue
		}
		if p := getPlayer(s.ID); p != nil {
			p.setScore(s.Score)
		}
	}
}

func (r *Room) deliver(envs []game.Envelope) {
	for _, env := range envs {
		body := encode(env.Event)
		if body == nil {
			continue
		}
		if env.To != game.Everyone {
			r.send(env.To, body)
			continue
		}
		for seat := range r.state.Seats {
			r.send(seat, body)
		}
	}
}

func (r *Room) send(seat int, body []byte) {
	if seat < 0 || seat >= consts.Players {
		return
	}
	s := r.state.Seats[seat]
	if s == nil || s.Kind != game.SeatRemote {
		return
	}
	if p := getPlayer(s.ID); p != nil && p.Room() == r.ID {
		p.Write(body)
	}
}

func encode(event game.Event) []byte {
	body, err := modelx.Encode(event)
	if err != nil {
		log.Error(err)
		return nil
	}
	return body
}

// schedule arms the single room timer for whatever the server decides next:
// robots joining, robots readying, robot moves and turn timeouts.
func (r *Room) schedule() {
	key := due{phase: r.state.Phase, moves: r.moves, players: r.state.Players(), online: r.state.Online()}
	if r.task != nil && key == r.armed {
		return
	}
	r.disarm()
	r.armed = key
	if r.state.Halted() {
		return
	}
	switch r.state.Phase {
	case game.PhaseWaiting, game.PhaseFinished:
		if r.state.Phase == game.PhaseWaiting && r.conf.Robots && !r.state.Full() && r.state.Online() > 0 {
			r.arm(r.conf.RobotJoinDelay, r.fillRobots)
			return
		}
		for seat, s := range r.state.Seats {
			if s == nil || s.Kind != game.SeatRobot {
				continue
			}
			if action, ok := game.Autopilot(r.state, seat, r.rng); ok {
				seat := seat
				r.arm(r.conf.RobotThinkDelay, func() { r.apply(seat, action, nil) })
				return
			}
		}
	case game.PhaseBidding, game.PhasePlaying:
		seat, ok := game.Pending(r.state)
		if !ok {
			return
		}
		r.arm(r.delay(seat), func() {
			if action, ok := game.Autopilot(r.state, seat, r.rng); ok {
				r.apply(seat, action, nil)
			}
		})
	}
}

func (r *Room) delay(seat int) time.Duration {
	s := r.state.Seats[seat]
	switch {
	case s.Kind == game.SeatRobot:
		return r.conf.RobotThinkDelay
	case s.Absent:
		return r.conf.AbsentDelay
	case r.state.Phase == game.PhaseBidding:
		return r.conf.RobTimeout
	default:
		return r.conf.PlayTimeout
	}
}

func (r *Room) arm(d time.Duration, task func()) {
	r.timer = time.NewTimer(d)
	r.timeout = r.timer.C
	r.task = task
}

func (r *Room) disarm() {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer, r.timeout, r.task = nil, nil, nil
}

func (r *Room) fillRobots() {
	for !r.state.Full() {
		id := -atomic.AddInt64(&robotIds, 1)
		robot := game.Player{ID: id, Name: fmt.Sprintf("robot-%d", -id), Kind: game.SeatRobot}
		_, envs, err := r.state.Join(robot)
		if err != nil {
			log.Errorf("room %d add robot: %v\n", r.ID, err)
			return
		}
		r.moves++
		r.deliver(envs)
	}
}
