package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/openarcade/lobby/internal/protocol"
	"github.com/openarcade/lobby/internal/services/catalog"
)

func (c *conn) handleDeveloper(ctx context.Context, req protocol.Request) error {
	switch req.Action {
	case protocol.ActionUploadGame:
		return c.handleUpload(ctx, req, false)

	case protocol.ActionUpdateGame:
		return c.handleUpload(ctx, req, true)

	case protocol.ActionDeleteGame:
		p, err := decode[protocol.GameRequest](req)
		if err != nil {
			return c.send(errorHeader(err))
		}
		if p.GameName == "" {
			return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "missing game_name"))
		}
		if err := c.deps.Catalog.Delete(ctx, c.username, p.GameName); err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.GameNameResponse{
			Header:   protocol.OK("delete_game success"),
			GameName: p.GameName,
		})

	case protocol.ActionListMyGames:
		return c.send(protocol.GameListResponse{
			Header: protocol.OK("list_my_games success"),
			Games:  c.deps.Catalog.ListByDeveloper(c.username),
		})
	}
	return c.send(protocol.Errorf(protocol.CodeInvalidRequest, "unknown developer action"))
}

// handleUpload runs the two-phase upload/update exchange. The announced raw
// bytes are spooled to a temp file before anything is validated, so a
// rejected request leaves the stream framed and the connection usable. Only
// an unusable archive_size forces a disconnect: without a trustworthy count
// the raw phase cannot be drained.
func (c *conn) handleUpload(ctx context.Context, req protocol.Request, update bool) error {
	p, err := decode[protocol.UploadRequest](req)
	if err != nil {
		_ = c.send(errorHeader(err))
		return fmt.Errorf("upload header: %w", err)
	}
	if p.ArchiveSize <= 0 {
		_ = c.send(protocol.Errorf(protocol.CodeInvalidRequest, "invalid archive_size"))
		return errors.New("upload without archive size")
	}

	tmp, err := os.CreateTemp("", "lobby-upload-*.zip")
	if err != nil {
		if derr := c.codec.Discard(p.ArchiveSize); derr != nil {
			return fmt.Errorf("drain archive: %w", derr)
		}
		c.logger.Error("failed to create upload spool file", slog.String("error", err.Error()))
		return c.send(protocol.Errorf(protocol.CodeInternalError, "internal server error"))
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if err := c.codec.ReadRaw(tmp, p.ArchiveSize); err != nil {
		return fmt.Errorf("receive archive: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		c.logger.Error("failed to rewind upload spool file", slog.String("error", err.Error()))
		return c.send(protocol.Errorf(protocol.CodeInternalError, "internal server error"))
	}

	up := catalog.Upload{
		Name:        p.GameName,
		Version:     p.Version,
		Description: p.Description,
		Type:        p.Type,
		MinPlayers:  p.MinPlayers,
		MaxPlayers:  p.MaxPlayers,
	}
	archive := io.LimitReader(tmp, p.ArchiveSize)

	if update {
		updated, err := c.deps.Catalog.Update(ctx, c.username, up, archive)
		if err != nil {
			return c.send(errorHeader(err))
		}
		return c.send(protocol.UploadResponse{
			Header:   protocol.OK("update_game success"),
			GameName: up.Name,
			Version:  updated.Version,
		})
	}

	published, err := c.deps.Catalog.Publish(ctx, c.username, up, archive)
	if err != nil {
		return c.send(errorHeader(err))
	}
	return c.send(protocol.UploadResponse{
		Header:   protocol.OK("upload_game success"),
		GameName: up.Name,
		Version:  published.Version,
	})
}
