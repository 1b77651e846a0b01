package protocol

import (
	"encoding/json"

	"github.com/openarcade/lobby/internal/model"
)

// Role is the wire-level request namespace. It matches the account roles,
// plus "system" for the pre-login actions.
type Role string

const (
	RoleSystem    Role = "system"
	RolePlayer    Role = "player"
	RoleDeveloper Role = "developer"
)

// Action names one operation within a role namespace.
type Action string

// System actions
const (
	ActionRegister Action = "register"
	ActionLogin    Action = "login"
	ActionLogout   Action = "logout"
)

// Player actions
const (
	ActionListGames       Action = "list_games"
	ActionGameInfo        Action = "game_info"
	ActionListOnlineUsers Action = "list_online_users"
	ActionCreateRoom      Action = "create_room"
	ActionListRooms       Action = "list_rooms"
	ActionJoinRoom        Action = "join_room"
	ActionRoomInfo        Action = "room_info"
	ActionRoomPlayers     Action = "room_players"
	ActionWaitStart       Action = "wait_start"
	ActionStartGame       Action = "start_game"
	ActionLeaveRoom       Action = "leave_room"
	ActionResetRoom       Action = "reset_room"
	ActionMyHistory       Action = "my_history"
	ActionAddRating       Action = "add_rating"
	ActionGetGameRatings  Action = "get_game_ratings"
	ActionDownloadGame    Action = "download_game"
)

// Developer actions
const (
	ActionUploadGame  Action = "upload_game"
	ActionUpdateGame  Action = "update_game"
	ActionDeleteGame  Action = "delete_game"
	ActionListMyGames Action = "list_my_games"
)

// Request is the envelope for every client message. Payload is decoded into
// the typed struct for the (role, action) pair; unknown pairs are rejected.
type Request struct {
	Role    Role            `json:"role"`
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response status values. Clients branch on Status and Code, never on the
// human-readable message.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Header is the common prefix of every response. Action-specific responses
// embed it so their extra fields sit at the top level of the JSON object.
type Header struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// OK builds a success header.
func OK(message string) Header {
	return Header{Status: StatusOK, Message: message}
}

// Errorf builds an error header with a machine-readable code.
func Errorf(code, message string) Header {
	return Header{Status: StatusError, Code: code, Message: message}
}

// IsOK reports whether the response succeeded.
func (h Header) IsOK() bool { return h.Status == StatusOK }

// Request payloads

type RegisterRequest struct {
	Role     model.Role `json:"role"`
	Username string     `json:"username"`
	Password string     `json:"password"`
}

type LoginRequest struct {
	Role     model.Role `json:"role"`
	Username string     `json:"username"`
	Password string     `json:"password"`
}

type CreateRoomRequest struct {
	GameName string `json:"game_name"`
}

type ListRoomsRequest struct {
	GameName string `json:"game_name,omitempty"`
}

type RoomRequest struct {
	RoomID model.RoomID `json:"room_id"`
}

type GameRequest struct {
	GameName string `json:"game_name"`
}

type AddRatingRequest struct {
	GameName string `json:"game_name"`
	Score    int    `json:"score"`
	Comment  string `json:"comment"`
}

// UploadRequest is the header of the two-phase upload/update exchange.
// Exactly ArchiveSize raw bytes follow it on the wire.
type UploadRequest struct {
	GameName    string         `json:"game_name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Type        model.GameType `json:"type"`
	ArchiveSize int64          `json:"archive_size"`
	MinPlayers  int            `json:"min_players,omitempty"`
	MaxPlayers  int            `json:"max_players,omitempty"`
}

// Response payloads

type LoginResponse struct {
	Header
	Role     model.Role `json:"role,omitempty"`
	Username string     `json:"username,omitempty"`
}

type CreateRoomResponse struct {
	Header
	RoomID   model.RoomID `json:"room_id"`
	GameName string       `json:"game_name"`
}

type RoomListResponse struct {
	Header
	Rooms []model.Room `json:"rooms"`
}

type RoomInfoResponse struct {
	Header
	Room model.Room `json:"room"`
}

type RoomIDResponse struct {
	Header
	RoomID model.RoomID `json:"room_id"`
}

type RoomPlayersResponse struct {
	Header
	Players []string `json:"players"`
}

// StartGameResponse answers both start_game and wait_start: the membership
// snapshot the game server was launched with.
type StartGameResponse struct {
	Header
	RoomID   model.RoomID `json:"room_id"`
	GameName string       `json:"game_name"`
	Version  string       `json:"version"`
	Players  []string     `json:"players"`
}

type GameListResponse struct {
	Header
	Games model.GameTable `json:"games"`
}

type GameInfoResponse struct {
	Header
	GameName string     `json:"game_name"`
	Info     model.Game `json:"info"`
}

type OnlineUsersResponse struct {
	Header
	Players    []string `json:"players"`
	Developers []string `json:"developers"`
}

type HistoryResponse struct {
	Header
	History map[string]int `json:"history"`
}

type RatingsResponse struct {
	Header
	GameName string         `json:"game_name"`
	AvgScore *float64       `json:"avg_score"`
	Count    int            `json:"count"`
	Ratings  []model.Rating `json:"ratings"`
}

type GameNameResponse struct {
	Header
	GameName string `json:"game_name"`
}

type UploadResponse struct {
	Header
	GameName string `json:"game_name"`
	Version  string `json:"version"`
}

// DownloadResponse is the header of the download exchange. Exactly
// ArchiveSize raw bytes follow it on the wire; the receiver must drain that
// count before parsing any further message.
type DownloadResponse struct {
	Header
	GameName    string `json:"game_name"`
	Version     string `json:"version"`
	ArchiveSize int64  `json:"archive_size"`
}
