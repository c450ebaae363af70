package model

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/game"
	"github.com/ratel-online/landlord/poker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Opcodes of the [opcode, payload] wire format.
const (
	OpError       = 0
	OpReqJoinRoom = 17
	OpRspJoinRoom = 18
	OpReqLeave    = 19
	OpRspLeave    = 20
	OpReqReady    = 21
	OpRspReady    = 22
	OpReqView     = 23
	OpRspView     = 24
	OpRspRedeal   = 31
	OpRspDeal     = 32
	OpReqCall     = 33
	OpRspCall     = 34
	OpReqPass     = 35
	OpReqShot     = 37
	OpRspShot     = 38
	OpReqHint     = 39
	OpRspHint     = 40
	OpRspOver     = 42
	OpRspPresence = 43
	OpRspVoid     = 44
	OpRspSync     = 45
)

type JoinReq struct {
	Room  int64 `json:"room"`
	Level int   `json:"level"`
}

type ReadyReq struct {
	Ready *bool `json:"ready"`
}

type CallReq struct {
	Rob bool `json:"rob"`
}

type ShotReq struct {
	Pokers []int `json:"pokers"`
}

type ErrorRsp struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

type JoinRsp struct {
	Room  int64           `json:"room"`
	Seat  int             `json:"seat"`
	Seats []game.SeatInfo `json:"seats"`
}

type LeaveRsp struct {
	Seat int `json:"seat"`
}

type ReadyRsp struct {
	Seat  int  `json:"seat"`
	Ready bool `json:"ready"`
}

type ViewRsp struct {
	Text string `json:"text"`
}

type RedealRsp struct {
	Deal int `json:"deal"`
}

type DealRsp struct {
	Turn   int    `json:"turn"`
	Pokers []int  `json:"pokers"`
	Sizes  [3]int `json:"sizes"`
	Deal   int    `json:"deal"`
}

type CallRsp struct {
	Seat     int   `json:"seat"`
	Rob      bool  `json:"rob"`
	Landlord int   `json:"landlord"`
	Pokers   []int `json:"pokers"`
	Multiple int   `json:"multiple"`
	Turn     int   `json:"turn"`
}

type ShotRsp struct {
	Seat     int    `json:"seat"`
	Pokers   []int  `json:"pokers"`
	Shape    string `json:"shape"`
	Multiple int    `json:"multiple"`
	Left     int    `json:"left"`
	Turn     int    `json:"turn"`
}

type HintRsp struct {
	Pokers []int `json:"pokers"`
}

type OverRsp struct {
	Winner     int      `json:"winner"`
	Landlord   int      `json:"landlord"`
	Spring     bool     `json:"spring"`
	AntiSpring bool     `json:"antispring"`
	Multiple   int      `json:"multiple"`
	Point      int      `json:"point"`
	Deltas     [3]int   `json:"deltas"`
	Pokers     [3][]int `json:"pokers"`
}

type PresenceRsp struct {
	Seat   int  `json:"seat"`
	Absent bool `json:"absent"`
}

type VoidRsp struct {
	Reason string `json:"reason"`
}

type SyncRsp struct {
	Room     int64           `json:"room"`
	Phase    string          `json:"phase"`
	Seat     int             `json:"seat"`
	Seats    []game.SeatInfo `json:"seats"`
	Pokers   []int           `json:"pokers"`
	Sizes    [3]int          `json:"sizes"`
	Turn     int             `json:"turn"`
	Landlord int             `json:"landlord"`
	Last     []int           `json:"last"`
	LastSeat int             `json:"lastSeat"`
	Multiple int             `json:"multiple"`
	Kitty    []int           `json:"kitty"`
}

// Decode parses a client packet body into an action.
func Decode(body []byte) (game.Action, error) {
	var frame []jsoniter.RawMessage
	if err := json.Unmarshal(body, &frame); err != nil || len(frame) == 0 || len(frame) > 2 {
		return nil, consts.ErrorsProtocol
	}
	var op int
	if err := json.Unmarshal(frame[0], &op); err != nil {
		return nil, consts.ErrorsProtocol
	}
	payload := jsoniter.RawMessage("{}")
	if len(frame) == 2 && string(frame[1]) != "null" {
		payload = frame[1]
	}
	switch op {
	case OpReqJoinRoom:
		req := JoinReq{}
		if err := unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return game.JoinRoom{Room: req.Room, Level: req.Level}, nil
	case OpReqLeave:
		return game.LeaveRoom{}, nil
	case OpReqReady:
		req := ReadyReq{}
		if err := unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return game.Ready{Ready: req.Ready == nil || *req.Ready}, nil
	case OpReqView:
		return game.View{}, nil
	case OpReqCall:
		req := CallReq{}
		if err := unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return game.Bid{Rob: req.Rob}, nil
	case OpReqPass:
		return game.Pass{}, nil
	case OpReqShot:
		req := ShotReq{}
		if err := unmarshal(payload, &req); err != nil {
			return nil, err
		}
		return game.Play{Cards: poker.FromInts(req.Pokers)}, nil
	case OpReqHint:
		return game.Hint{}, nil
	}
	return nil, consts.ErrorsUnknownOpcode
}

func unmarshal(payload []byte, v interface{}) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return consts.ErrorsProtocol
	}
	return nil
}

// Encode renders an event as a packet body.
func Encode(e game.Event) ([]byte, error) {
	switch e := e.(type) {
	case game.RoomJoined:
		return frame(OpRspJoinRoom, JoinRsp{Room: e.Room, Seat: e.Seat, Seats: e.Seats})
	case game.SeatLeft:
		return frame(OpRspLeave, LeaveRsp{Seat: e.Seat})
	case game.PlayerReady:
		return frame(OpRspReady, ReadyRsp{Seat: e.Seat, Ready: e.Ready})
	case game.HandsDealt:
		return frame(OpRspDeal, DealRsp{Turn: e.Turn, Pokers: ints(e.Hand), Sizes: e.Sizes, Deal: e.Deal})
	case game.Redeal:
		return frame(OpRspRedeal, RedealRsp{Deal: e.Deal})
	case game.BidResolved:
		return frame(OpRspCall, CallRsp{
			Seat:     e.Seat,
			Rob:      e.Rob,
			Landlord: e.Landlord,
			Pokers:   ints(e.Kitty),
			Multiple: e.Multiple,
			Turn:     e.Turn,
		})
	case game.CardsPlayed:
		return frame(OpRspShot, ShotRsp{
			Seat:     e.Seat,
			Pokers:   ints(e.Cards),
			Shape:    string(e.Shape),
			Multiple: e.Multiple,
			Left:     e.Left,
			Turn:     e.Turn,
		})
	case game.GameOver:
		rsp := OverRsp{
			Winner:     e.Winner,
			Landlord:   e.Landlord,
			Spring:     e.Spring,
			AntiSpring: e.AntiSpring,
			Multiple:   e.Multiple,
			Point:      e.Point,
			Deltas:     e.Deltas,
		}
		for i, hand := range e.Hands {
			rsp.Pokers[i] = ints(hand)
		}
		return frame(OpRspOver, rsp)
	case game.MatchVoided:
		return frame(OpRspVoid, VoidRsp{Reason: e.Reason})
	case game.Suggestion:
		return frame(OpRspHint, HintRsp{Pokers: ints(e.Cards)})
	case game.SeatPresence:
		return frame(OpRspPresence, PresenceRsp{Seat: e.Seat, Absent: e.Absent})
	case game.RoomSync:
		return frame(OpRspSync, SyncRsp{
			Room:     e.Room,
			Phase:    e.Phase.String(),
			Seat:     e.Seat,
			Seats:    e.Seats,
			Pokers:   ints(e.Hand),
			Sizes:    e.Sizes,
			Turn:     e.Turn,
			Landlord: e.Landlord,
			Last:     ints(e.Last),
			LastSeat: e.LastSeat,
			Multiple: e.Multiple,
			Kitty:    ints(e.Kitty),
		})
	}
	return nil, fmt.Errorf("encode: unknown event %T", e)
}

// EncodeError renders err as an ERROR packet body.
func EncodeError(err error) []byte {
	rsp := ErrorRsp{Code: consts.CodeProtocol, Reason: err.Error()}
	var e consts.Error
	if errors.As(err, &e) {
		rsp.Code = e.Code
		rsp.Reason = e.Msg
	}
	body, _ := frame(OpError, rsp)
	return body
}

func EncodeView(text string) []byte {
	body, _ := frame(OpRspView, ViewRsp{Text: text})
	return body
}

func frame(op int, payload interface{}) ([]byte, error) {
	return json.Marshal([]interface{}{op, payload})
}

func ints(cards poker.Cards) []int {
	if cards == nil {
		return []int{}
	}
	return cards.Ints()
}
