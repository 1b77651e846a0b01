package protocol

// Machine-readable error codes carried in the response header. Clients
// branch on these, never on message text.
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeAuthRequired        = "AUTH_REQUIRED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeAlreadyLoggedIn     = "ALREADY_LOGGED_IN"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomNotJoinable     = "ROOM_NOT_JOINABLE"
	CodeRoomFull            = "ROOM_FULL"
	CodeAlreadyInRoom       = "ALREADY_IN_ROOM"
	CodeNotInRoom           = "NOT_IN_ROOM"
	CodeNotHost             = "NOT_HOST"
	CodeRoomAlreadyStarted  = "ROOM_ALREADY_STARTED"
	CodeRoomClosed          = "ROOM_CLOSED"
	CodePlayersNotReady     = "PLAYERS_NOT_READY"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodeNotOwner            = "NOT_OWNER"
	CodeBundleNotFound      = "BUNDLE_NOT_FOUND"
	CodeGameNotPlayed       = "GAME_NOT_PLAYED"
	CodeProtocolError       = "PROTOCOL_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)
