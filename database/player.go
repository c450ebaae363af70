package database

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/model"
	"github.com/ratel-online/core/protocol"
	"github.com/ratel-online/core/util/async"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/game"
	modelx "github.com/ratel-online/landlord/model"
)

const sendQueue = 64

// Conn is the packet stream of a connected client.
type Conn interface {
	Read() (*protocol.Packet, error)
	Write(packet protocol.Packet) error
	Close() error
}

type Player struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int64  `json:"score"`

	roomID int64
	online int32
	conn   Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// Connected registers an authenticated connection. A player that connects
// again keeps its room so it can rejoin.
func Connected(conn Conn, info *model.AuthInfo) *Player {
	player := &Player{
		ID:     info.ID,
		Name:   info.Name,
		Score:  info.Score,
		conn:   conn,
		send:   make(chan []byte, sendQueue),
		online: 1,
	}
	if prev := getPlayer(info.ID); prev != nil {
		player.roomID = prev.Room()
		player.Score = prev.score()
		prev.close()
	}
	players.Set(player.ID, player)
	async.Async(player.writing)
	return player
}

func (p *Player) Room() int64 {
	return atomic.LoadInt64(&p.roomID)
}

func (p *Player) setRoom(roomId int64) {
	atomic.StoreInt64(&p.roomID, roomId)
}

func (p *Player) Online() bool {
	return atomic.LoadInt32(&p.online) == 1
}

func (p *Player) Model() game.Player {
	return game.Player{ID: p.ID, Name: p.Name, Score: p.score(), Kind: game.SeatRemote}
}

func (p *Player) score() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Score
}

func (p *Player) setScore(score int64) {
	p.mu.Lock()
	p.Score = score
	p.mu.Unlock()
}

// Write queues body for the client. It never blocks: a client that does not
// drain its queue is disconnected.
func (p *Player) Write(body []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.send <- body:
	default:
		log.Errorf("player %s send queue is full, disconnecting\n", p)
		p.closeLocked()
	}
}

func (p *Player) WriteError(err error) {
	p.Write(modelx.EncodeError(err))
}

func (p *Player) writing() {
	for body := range p.send {
		if err := p.conn.Write(protocol.Packet{Body: body}); err != nil {
			log.Error(err)
			p.close()
		}
	}
}

// Listening reads client packets until the connection breaks.
func (p *Player) Listening() error {
	for {
		pack, err := p.conn.Read()
		if err != nil {
			return err
		}
		p.handle(pack.Body)
	}
}

func (p *Player) handle(body []byte) {
	action, err := modelx.Decode(body)
	if err != nil {
		p.WriteError(err)
		return
	}
	switch a := action.(type) {
	case game.JoinRoom:
		err = Join(p, a.Room, a.Level)
	default:
		room := getRoom(p.Room())
		if room == nil {
			err = consts.ErrorsNotInRoom
			break
		}
		err = room.post(request{player: p.ID, action: action})
	}
	if err != nil {
		p.WriteError(err)
	}
}

// Offline frees the connection and tells the room the player is gone.
func (p *Player) Offline() {
	p.close()
	if v, ok := players.Get(p.ID); !ok || v.(*Player) != p {
		return
	}
	if room := getRoom(p.Room()); room != nil {
		_ = room.post(request{player: p.ID, offline: true})
	}
}

func (p *Player) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Player) closeLocked() {
	if p.closed {
		return
	}
	p.closed = true
	atomic.StoreInt32(&p.online, 0)
	close(p.send)
	_ = p.conn.Close()
}

func (p *Player) String() string {
	return fmt.Sprintf("%s[%d]", p.Name, p.ID)
}
