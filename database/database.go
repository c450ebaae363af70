package database

import (
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/awesome-cap/hashmap"
	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"
	"github.com/ratel-online/landlord/consts"
	"github.com/ratel-online/landlord/game"
	"github.com/ratel-online/landlord/rule"
)

// Settings drives every room created after Setup.
type Settings struct {
	Game            game.Options
	Catalog         *rule.Catalog
	RobTimeout      time.Duration
	PlayTimeout     time.Duration
	AbsentDelay     time.Duration
	Robots          bool
	RobotJoinDelay  time.Duration
	RobotThinkDelay time.Duration
	IdleTimeout     time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		RobTimeout:      consts.RobTimeout,
		PlayTimeout:     consts.PlayTimeout,
		AbsentDelay:     time.Second,
		Robots:          true,
		RobotJoinDelay:  time.Second,
		RobotThinkDelay: 1500 * time.Millisecond,
		IdleTimeout:     24 * time.Hour,
	}
}

var (
	roomIds  int64 = 0
	robotIds int64 = 0

	players = hashmap.New()
	rooms   = hashmap.New()

	settingsMu sync.RWMutex
	settings   = DefaultSettings()

	joinLock sync.Mutex
	seeds    = rand.New(rand.NewSource(time.Now().UnixNano()))
	seedsMu  sync.Mutex
)

func Setup(s Settings) {
	if s.Catalog == nil {
		s.Catalog = rule.Default()
	}
	settingsMu.Lock()
	settings = s
	settingsMu.Unlock()
}

func current() Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	s := settings
	if s.Catalog == nil {
		s.Catalog = rule.Default()
	}
	return s
}

func newRand() *rand.Rand {
	seedsMu.Lock()
	defer seedsMu.Unlock()
	return rand.New(rand.NewSource(seeds.Int63()))
}

// Janitor removes rooms nobody plays in any more, every interval, until stop
// is closed.
func Janitor(interval time.Duration, stop <-chan struct{}) {
	async.Async(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, room := range GetRooms() {
					room.cancel()
				}
			case <-stop:
				return
			}
		}
	})
}

func createRoom(level int) *Room {
	room := newRoom(atomic.AddInt64(&roomIds, 1), level, current())
	rooms.Set(room.ID, room)
	log.Infof("room %d created, level %d\n", room.ID, level)
	return room
}

func deleteRoom(room *Room) {
	if room != nil {
		rooms.Del(room.ID)
	}
}

func GetRooms() []*Room {
	list := make([]*Room, 0)
	rooms.Foreach(func(e *hashmap.Entry) {
		list = append(list, e.Value().(*Room))
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return list
}

func GetRoom(roomId int64) *Room {
	return getRoom(roomId)
}

func getRoom(roomId int64) *Room {
	if v, ok := rooms.Get(roomId); ok {
		return v.(*Room)
	}
	return nil
}

func GetPlayer(playerId int64) *Player {
	return getPlayer(playerId)
}

func getPlayer(playerId int64) *Player {
	if v, ok := players.Get(playerId); ok {
		return v.(*Player)
	}
	return nil
}

// Join seats player in roomId, or in the first waiting room of the level
// when roomId is not positive, creating one when none has a free seat.
func Join(player *Player, roomId int64, level int) error {
	if level == 0 {
		level = 1
	}
	if level < 0 || level > consts.MaxLevel {
		return consts.ErrorsLevelInvalid
	}
	if curr := getRoom(player.Room()); curr != nil {
		if roomId > 0 && roomId != curr.ID {
			return consts.ErrorsAlreadyInRoom
		}
		return curr.join(player)
	}
	if roomId > 0 {
		room := getRoom(roomId)
		if room == nil {
			return consts.ErrorsRoomInvalid
		}
		return room.join(player)
	}
	joinLock.Lock()
	defer joinLock.Unlock()
	for _, room := range GetRooms() {
		if !room.Joinable(level) {
			continue
		}
		if err := room.join(player); err == nil {
			return nil
		}
	}
	return createRoom(level).join(player)
}
