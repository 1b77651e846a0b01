package model

// RoomID identifies a room. IDs are allocated monotonically and never reused
// within a server run.
type RoomID int

// RoomStatus is the room lifecycle state.
type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "waiting"
	RoomStatusPlaying RoomStatus = "playing"
)

// Room groups players for one instance of a specific game and version.
// Players is ordered by join time; the first remaining player inherits the
// host seat when the host leaves. ReadyPlayers is always a subset of Players.
type Room struct {
	ID           RoomID     `json:"id"`
	Host         string     `json:"host"`
	GameName     string     `json:"game_name"`
	Players      []string   `json:"players"`
	Status       RoomStatus `json:"status"`
	MinPlayers   int        `json:"min_players"`
	MaxPlayers   int        `json:"max_players"`
	Version      string     `json:"version"`
	ReadyPlayers []string   `json:"ready_players"`
}

// HasPlayer reports whether username is a member of the room.
func (r *Room) HasPlayer(username string) bool {
	for _, p := range r.Players {
		if p == username {
			return true
		}
	}
	return false
}

// IsReady reports whether username is in the room's ready set.
func (r *Room) IsReady(username string) bool {
	for _, p := range r.ReadyPlayers {
		if p == username {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out past the room manager's lock.
func (r *Room) Clone() Room {
	c := *r
	c.Players = append([]string(nil), r.Players...)
	c.ReadyPlayers = append([]string(nil), r.ReadyPlayers...)
	return c
}

// RoomTable is the persisted room store, keyed by room id.
type RoomTable map[RoomID]Room
