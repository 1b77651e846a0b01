package model

import "errors"

// Common errors used across the application
var (
	// ErrInvalidArgument marks request validation failures; wrap it with the
	// field-specific detail.
	ErrInvalidArgument = errors.New("invalid argument")

	// Account errors
	ErrUsernameExists     = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAlreadyLoggedIn    = errors.New("user already logged in")
	ErrNotLoggedIn        = errors.New("not logged in")

	// Room errors
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomNotJoinable     = errors.New("room not joinable")
	ErrRoomFull            = errors.New("room full")
	ErrAlreadyInRoom       = errors.New("already in room")
	ErrNotInRoom           = errors.New("not in room")
	ErrNotHost             = errors.New("only the host can do that")
	ErrRoomAlreadyStarted  = errors.New("room already started")
	ErrRoomClosed          = errors.New("room closed")
	ErrPlayersNotReady     = errors.New("players not ready")
	ErrInsufficientPlayers = errors.New("not enough players to start")

	// Catalog errors
	ErrGameNotFound   = errors.New("game not found")
	ErrNotOwner       = errors.New("permission denied: not owner")
	ErrBundleNotFound = errors.New("game bundle not found")

	// Rating errors
	ErrGameNotPlayed = errors.New("game has not been played by this player")

	// Launcher errors
	ErrNoEntryPoint = errors.New("no game server entry point found")
)
