package database_test

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/ratel-online/core/model"
	"github.com/ratel-online/core/protocol"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/database"
	modelx "github.com/ratel-online/landlord/model"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fakeConn struct {
	in     chan *protocol.Packet
	out    chan []byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan *protocol.Packet, 16),
		out:    make(chan []byte, 1024),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) Read() (*protocol.Packet, error) {
	select {
	case p := <-c.in:
		return p, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) Write(packet protocol.Packet) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	case c.out <- packet.Body:
		return nil
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) send(body string) {
	c.in <- &protocol.Packet{Body: []byte(body)}
}

func setup(robots bool, timeout time.Duration) {
	s := database.DefaultSettings()
	s.Robots = robots
	s.RobotJoinDelay = 5 * time.Millisecond
	s.RobotThinkDelay = time.Millisecond
	s.RobTimeout = timeout
	s.PlayTimeout = timeout
	s.AbsentDelay = timeout
	database.Setup(s)
}

func connect(id int64) (*database.Player, *fakeConn) {
	conn := newFakeConn()
	player := database.Connected(conn, &model.AuthInfo{ID: id, Name: fmt.Sprintf("player-%d", id)})
	go func() {
		_ = player.Listening()
		player.Offline()
	}()
	return player, conn
}

// expect skips packets until one with opcode op arrives and unmarshal its
// payload into v.
func expect(t *testing.T, conn *fakeConn, op int, v interface{}) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case body := <-conn.out:
			var frame []jsoniter.RawMessage
			require.NoError(t, json.Unmarshal(body, &frame))
			var got int
			require.NoError(t, json.Unmarshal(frame[0], &got))
			if got != op {
				continue
			}
			if v != nil {
				require.NoError(t, json.Unmarshal(frame[1], v))
			}
			return
		case <-deadline:
			t.Fatalf("no packet with opcode %d", op)
		}
	}
}

func TestQuickJoinWithRobots(t *testing.T) {
	setup(true, 20*time.Millisecond)
	player, conn := connect(101)
	defer conn.Close()

	conn.send(`[17, {"room": -1}]`)
	joined := modelx.JoinRsp{}
	expect(t, conn, modelx.OpRspJoinRoom, &joined)
	require.Equal(t, 0, joined.Seat)
	require.Equal(t, joined.Room, player.Room())

	conn.send(`[21, {"ready": true}]`)
	dealt := modelx.DealRsp{}
	expect(t, conn, modelx.OpRspDeal, &dealt)
	require.Len(t, dealt.Pokers, consts.HandSize)
	require.Equal(t, [3]int{17, 17, 17}, dealt.Sizes)

	over := modelx.OverRsp{}
	expect(t, conn, modelx.OpRspOver, &over)
	sum := 0
	for _, delta := range over.Deltas {
		sum += delta
	}
	require.Zero(t, sum)
	require.Eventually(t, func() bool {
		return player.Model().Score == int64(over.Deltas[joined.Seat])
	}, time.Second, 5*time.Millisecond)
}

func TestJoinRejects(t *testing.T) {
	setup(false, time.Minute)
	player, conn := connect(201)
	defer conn.Close()

	require.ErrorIs(t, database.Join(player, 0, consts.MaxLevel+1), consts.ErrorsLevelInvalid)
	require.ErrorIs(t, database.Join(player, 99999, 1), consts.ErrorsRoomInvalid)

	conn.send(`[21, {}]`)
	rsp := modelx.ErrorRsp{}
	expect(t, conn, modelx.OpError, &rsp)
	require.Equal(t, consts.ErrorsNotInRoom.Msg, rsp.Reason)

	conn.send(`[99]`)
	expect(t, conn, modelx.OpError, &rsp)
	require.Equal(t, consts.ErrorsUnknownOpcode.Code, rsp.Code)
}

func TestRejoinAfterDisconnect(t *testing.T) {
	setup(false, time.Minute)
	conns := make([]*fakeConn, consts.Players)
	for i := range conns {
		player, conn := connect(int64(301 + i))
		conns[i] = conn
		require.NoError(t, database.Join(player, 0, 2))
	}
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()
	for _, conn := range conns {
		conn.send(`[21, {}]`)
	}
	for _, conn := range conns {
		expect(t, conn, modelx.OpRspDeal, nil)
	}

	_ = conns[1].Close()
	presence := modelx.PresenceRsp{}
	expect(t, conns[0], modelx.OpRspPresence, &presence)
	require.Equal(t, modelx.PresenceRsp{Seat: 1, Absent: true}, presence)

	player, conn := connect(302)
	conns[1] = conn
	require.NotZero(t, player.Room())
	require.NoError(t, database.Join(player, player.Room(), 0))
	snapshot := modelx.SyncRsp{}
	expect(t, conn, modelx.OpRspSync, &snapshot)
	require.Equal(t, 1, snapshot.Seat)
	require.Equal(t, "bidding", snapshot.Phase)
	require.Len(t, snapshot.Pokers, consts.HandSize)
	expect(t, conns[0], modelx.OpRspPresence, &presence)
	require.Equal(t, modelx.PresenceRsp{Seat: 1, Absent: false}, presence)
}

func TestEmptyRoomCloses(t *testing.T) {
	setup(false, time.Minute)
	player, conn := connect(401)
	require.NoError(t, database.Join(player, 0, 3))
	roomId := player.Room()
	require.NotNil(t, database.GetRoom(roomId))

	_ = conn.Close()
	require.Eventually(t, func() bool {
		return database.GetRoom(roomId) == nil
	}, time.Second, 5*time.Millisecond)
}
