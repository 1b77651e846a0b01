package server

import (
	"errors"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

// errorHeader converts a service error into a structured error response at
// the dispatch boundary. Unknown errors collapse to an internal error so no
// wrapped detail leaks to clients.
func errorHeader(err error) protocol.Header {
	code := protocol.CodeInternalError
	message := "internal server error"

	switch {
	case errors.Is(err, model.ErrInvalidArgument):
		code, message = protocol.CodeInvalidRequest, err.Error()
	case errors.Is(err, model.ErrNotLoggedIn):
		code, message = protocol.CodeAuthRequired, "please login first"
	case errors.Is(err, model.ErrInvalidCredentials):
		code, message = protocol.CodeInvalidCredentials, err.Error()
	case errors.Is(err, model.ErrAlreadyLoggedIn):
		code, message = protocol.CodeAlreadyLoggedIn, err.Error()
	case errors.Is(err, model.ErrUsernameExists):
		code, message = protocol.CodeUsernameExists, err.Error()
	case errors.Is(err, model.ErrRoomNotFound):
		code, message = protocol.CodeRoomNotFound, err.Error()
	case errors.Is(err, model.ErrRoomNotJoinable):
		code, message = protocol.CodeRoomNotJoinable, err.Error()
	case errors.Is(err, model.ErrRoomFull):
		code, message = protocol.CodeRoomFull, err.Error()
	case errors.Is(err, model.ErrAlreadyInRoom):
		code, message = protocol.CodeAlreadyInRoom, err.Error()
	case errors.Is(err, model.ErrNotInRoom):
		code, message = protocol.CodeNotInRoom, err.Error()
	case errors.Is(err, model.ErrNotHost):
		code, message = protocol.CodeNotHost, err.Error()
	case errors.Is(err, model.ErrRoomAlreadyStarted):
		code, message = protocol.CodeRoomAlreadyStarted, err.Error()
	case errors.Is(err, model.ErrRoomClosed):
		code, message = protocol.CodeRoomClosed, err.Error()
	case errors.Is(err, model.ErrPlayersNotReady):
		code, message = protocol.CodePlayersNotReady, err.Error()
	case errors.Is(err, model.ErrInsufficientPlayers):
		code, message = protocol.CodeInsufficientPlayers, err.Error()
	case errors.Is(err, model.ErrGameNotFound):
		code, message = protocol.CodeGameNotFound, err.Error()
	case errors.Is(err, model.ErrNotOwner):
		code, message = protocol.CodeNotOwner, err.Error()
	case errors.Is(err, model.ErrBundleNotFound):
		code, message = protocol.CodeBundleNotFound, "game file not found on server"
	case errors.Is(err, model.ErrGameNotPlayed):
		code, message = protocol.CodeGameNotPlayed, "you must play this game before rating"
	case errors.Is(err, protocol.ErrMalformed):
		code, message = protocol.CodeProtocolError, "malformed message"
	}

	return protocol.Errorf(code, message)
}
