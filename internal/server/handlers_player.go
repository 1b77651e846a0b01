package server

import (
	"context"
	"io"
	"os"

	"github.com/openarcade/lobby/internal/protocol"
	"github.com/openarcade/lobby/internal/services/room"
)

func (c *conn) handlePlayer(ctx context.Context, req protocol.Request) error {
	switch req.Action {
	case protocol.ActionListGames:
		return c.send(protocol.GameListResponse{
			Header: protocol.OK("game list"),
			Games:  c.deps.Catalog.List(),
		})

	case protocol.ActionGameInfo:
		p, err := decode[protocol.GameRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if p.GameName == "" {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "missing game_name"))
		}
		game, err := c.deps.Catalog.Get(p.GameName)
		if err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.GameInfoResponse{
			Header:   protocol.OK("game info"),
			GameName: p.GameName,
			Info:     game,
		})

	case protocol.ActionListOnlineUsers:
		players, developers := c.deps.Accounts.OnlineUsers()
		return c.send(protocol.OnlineUsersResponse{
			Header:     protocol.OK("online users"),
			Players:    players,
			Developers: developers,
		})

	case protocol.ActionCreateRoom:
		p, err := decode[protocol.CreateRoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if p.GameName == "" {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "missing game_name"))
		}
		created, err := c.deps.Rooms.Create(ctx, c.username, p.GameName)
		if err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.CreateRoomResponse{
			Header:   protocol.OK("room created"),
			RoomID:   created.ID,
			GameName: created.GameName,
		})

	case protocol.ActionListRooms:
		p, err := decode[protocol.ListRoomsRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.RoomListResponse{
			Header: protocol.OK("room list"),
			Rooms:  c.deps.Rooms.List(p.GameName),
		})

	case protocol.ActionJoinRoom:
		p, err := decode[protocol.RoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if err := c.deps.Rooms.Join(ctx, c.username, p.RoomID); err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.RoomIDResponse{
			Header: protocol.OK("join room success"),
			RoomID: p.RoomID,
		})

	case protocol.ActionRoomInfo:
		p, err := decode[protocol.RoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		info, err := c.deps.Rooms.Info(p.RoomID)
		if err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.RoomInfoResponse{
			Header: protocol.OK("room info"),
			Room:   info,
		})

	case protocol.ActionRoomPlayers:
		p, err := decode[protocol.RoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		players, err := c.deps.Rooms.Players(p.RoomID)
		if err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.RoomPlayersResponse{
			Header:  protocol.OK("room players"),
			Players: players,
		})

	case protocol.ActionWaitStart:
		p, err := decode[protocol.RoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		result, err := c.deps.Rooms.WaitStart(ctx, c.username, p.RoomID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return c.send(errorHeader(err))
		}
		return c.sendStart(result)

	case protocol.ActionStartGame:
		p, err := decode[protocol.RoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		result, err := c.deps.Rooms.Start(ctx, c.username, p.RoomID)
		if err != nil {
			return c.send(errorHeader(err))
		}
		return c.sendStart(result)

	case protocol.ActionLeaveRoom:
		p, err := decode[protocol.RoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		deleted, err := c.deps.Rooms.Leave(ctx, c.username, p.RoomID)
		if err != nil {
			return c.send(errorHeader(err))
		}
		message := "left room"
		if deleted {
			message = "left room and room closed"
		}
		return c.send(protocol.RoomIDResponse{
			Header: protocol.OK(message),
			RoomID: p.RoomID,
		})

	case protocol.ActionResetRoom:
		p, err := decode[protocol.RoomRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if err := c.deps.Rooms.Reset(ctx, c.username, p.RoomID); err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.RoomIDResponse{
			Header: protocol.OK("room reset"),
			RoomID: p.RoomID,
		})

	case protocol.ActionMyHistory:
		return c.send(protocol.HistoryResponse{
			Header:  protocol.OK("history"),
			History: c.deps.Ratings.PlayerHistory(c.username),
		})

	case protocol.ActionAddRating:
		p, err := decode[protocol.AddRatingRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if p.GameName == "" {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "missing game_name"))
		}
		if err := c.deps.Ratings.AddRating(ctx, c.username, p.GameName, p.Score, p.Comment); err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.GameNameResponse{
			Header:   protocol.OK("rating added"),
			GameName: p.GameName,
		})

	case protocol.ActionGetGameRatings:
		p, err := decode[protocol.GameRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if p.GameName == "" {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "missing game_name"))
		}
		summary := c.deps.Ratings.GameRatings(p.GameName)
		message := "game ratings"
		if summary.Count == 0 {
			message = "no ratings yet"
		}
		return c.send(protocol.RatingsResponse{
			Header:   protocol.OK(message),
			GameName: p.GameName,
			AvgScore: summary.AvgScore,
			Count:    summary.Count,
			Ratings:  summary.Latest,
		})

	case protocol.ActionDownloadGame:
		return c.handleDownload(req)
	}
	return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "unknown player action"))
}

func (c *conn) sendStart(result room.StartResult) error {
	return c.send(protocol.StartGameResponse{
		Header:   protocol.OK("game started"),
		RoomID:   result.RoomID,
		GameName: result.GameName,
		Version:  result.Version,
		Players:  result.Players,
	})
}

// handleDownload answers with the archive metadata, then streams exactly the
// announced byte count. A failure mid-stream is fatal to the connection;
// there is no way to re-frame it.
func (c *conn) handleDownload(req protocol.Request) error {
	p, err := decode[protocol.GameRequest](req)
	if err != nil {
		return c.send(errorHeader(err))
	}
	if p.GameName == "" {
		return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "missing game_name"))
	}
	info, err := c.deps.Catalog.Download(p.GameName)
	if err != nil {
		return c.send(errorHeader(err))
	}

	f, err := os.Open(info.Path)
	if err != nil {
		return c.send(errorHeader(err))
	}
	defer f.Close()

	if err := c.send(protocol.DownloadResponse{
		Header:      protocol.OK("download_ready"),
		GameName:    p.GameName,
		Version:     info.Version,
		ArchiveSize: info.Size,
	}); err != nil {
		return err
	}
	if _, err := c.codec.WriteRaw(io.LimitReader(f, info.Size)); err != nil {
		return err
	}
	return nil
}
