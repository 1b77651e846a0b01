package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

// conn is one client connection: its codec (which owns the read buffer, so
// a burst carrying several messages or a raw payload is never torn) and the
// session identity bound by login.
type conn struct {
	nc     net.Conn
	codec  *protocol.Codec
	deps   Deps
	logger *slog.Logger

	role     model.Role
	username string
}

func newConn(nc net.Conn, deps Deps, logger *slog.Logger) *conn {
	return &conn{
		nc:     nc,
		codec:  protocol.NewCodec(nc),
		deps:   deps,
		logger: logger.With(slog.String("remote", nc.RemoteAddr().String())),
	}
}

// run is the per-connection dispatch loop. Malformed messages get an error
// response and the loop continues; only end-of-stream or genuine I/O failure
// ends the worker, and session cleanup runs on every exit path.
func (c *conn) run(ctx context.Context) {
	c.logger.Debug("connection opened")
	defer func() {
		c.endSession(ctx)
		_ = c.nc.Close()
		c.logger.Debug("connection closed")
	}()

	for {
		var req protocol.Request
		err := c.codec.ReadMessage(&req)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return
		case errors.Is(err, protocol.ErrMalformed):
			if c.send(protocol.Errorf(protocol.CodeProtocolError, "invalid message format")) != nil {
				return
			}
			continue
		default:
			c.logger.Warn("connection read failed", slog.String("error", err.Error()))
			return
		}

		if err := c.dispatch(ctx, req); err != nil {
			c.logger.Warn("connection failed", slog.String("error", err.Error()))
			return
		}
	}
}

// endSession is the single cleanup routine for both explicit logout and
// abrupt disconnect: it evicts the user from every room and releases the
// online-set entry. The identity guard makes a second invocation a no-op,
// so no exit path can double-release or leak.
func (c *conn) endSession(ctx context.Context) {
	if c.username == "" {
		return
	}
	c.deps.Rooms.EvictUser(ctx, c.username)
	c.deps.Accounts.Logout(c.role, c.username)
	c.role, c.username = "", ""
}

// send writes one response message.
func (c *conn) send(v any) error {
	if err := c.codec.WriteMessage(v); err != nil {
		return fmt.Errorf("send response: %w", err)
	}
	return nil
}

// decode unmarshals the request payload into the typed struct for its
// (role, action) pair. A missing payload decodes to the zero value.
func decode[T any](req protocol.Request) (T, error) {
	var payload T
	if len(req.Payload) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(req.Payload, &payload); err != nil {
		return payload, fmt.Errorf("%w: bad payload: %v", model.ErrInvalidArgument, err)
	}
	return payload, nil
}

// dispatch routes one request. A returned error means the connection is no
// longer usable; every application-level failure has already been answered
// with a structured error response.
func (c *conn) dispatch(ctx context.Context, req protocol.Request) error {
	if req.Role == protocol.RoleSystem {
		return c.handleSystem(ctx, req)
	}

	// Everything past register/login requires a session.
	if c.username == "" {
		return c.send(errorHeader(model.ErrNotLoggedIn))
	}

	switch {
	case req.Role == protocol.RolePlayer && c.role == model.RolePlayer:
		return c.handlePlayer(ctx, req)
	case req.Role == protocol.RoleDeveloper && c.role == model.RoleDeveloper:
		return c.handleDeveloper(ctx, req)
	}
	return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "role mismatch or unknown role"))
}

func (c *conn) handleSystem(ctx context.Context, req protocol.Request) error {
	switch req.Action {
	case protocol.ActionRegister:
		p, err := decode[protocol.RegisterRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if !p.Role.Valid() {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "invalid role"))
		}
		if p.Username == "" || p.Password == "" {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "username/password required"))
		}
		if err := c.deps.Accounts.Register(ctx, p.Role, p.Username, p.Password); err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.OK("registered successfully"))

	case protocol.ActionLogin:
		p, err := decode[protocol.LoginRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if !p.Role.Valid() {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "invalid role"))
		}
		if p.Username == "" || p.Password == "" {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "username/password required"))
		}
		if c.username != "" {
			return c.send(errorHeader(model.ErrAlreadyLoggedIn))
		}
		if err := c.deps.Accounts.Login(ctx, p.Role, p.Username, p.Password); err != nil {
			return c.send(errorHeader(err))
		}
		c.role, c.username = p.Role, p.Username
		return c.send(protocol.LoginResponse{
			Header:   protocol.OK("login success"),
			Role:     p.Role,
			Username: p.Username,
		})

	case protocol.ActionLogout:
		c.endSession(ctx)
		return c.send(protocol.OK("logout success"))
	}
	return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "unknown system action"))
}
