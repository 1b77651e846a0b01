package cli

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/protocol"
)

const dialTimeout = 10 * time.Second

// Client is a TCP client for the lobby protocol. A client holds one
// connection; the session (login) lives as long as the connection.
type Client struct {
	nc    net.Conn
	codec *protocol.Codec
}

// Dial connects to the lobby server
func Dial(addr string) (*Client, error) {
	nc, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return &Client{nc: nc, codec: protocol.NewCodec(nc)}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.nc.Close()
}

// Call performs one request/response exchange. An error response becomes a
// Go error carrying the server's code and message.
func (c *Client) Call(role protocol.Role, action protocol.Action, payload, result any) error {
	req := protocol.Request{Role: role, Action: action}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		req.Payload = data
	}
	if err := c.codec.WriteMessage(req); err != nil {
		return err
	}
	return c.readResponse(result)
}

// readResponse reads one response, surfacing error statuses and optionally
// decoding the full body into result.
func (c *Client) readResponse(result any) error {
	var raw json.RawMessage
	if err := c.codec.ReadMessage(&raw); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	var header protocol.Header
	if err := json.Unmarshal(raw, &header); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if !header.IsOK() {
		return fmt.Errorf("%s (%s)", header.Message, header.Code)
	}
	if result != nil {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// Login authenticates this connection's session
func (c *Client) Login(role model.Role, username, password string) error {
	return c.Call(protocol.RoleSystem, protocol.ActionLogin, protocol.LoginRequest{
		Role:     role,
		Username: username,
		Password: password,
	}, nil)
}

// Download fetches a game archive into destPath, returning the metadata
// header. The raw bytes follow the header on the same connection.
func (c *Client) Download(gameName, destPath string) (protocol.DownloadResponse, error) {
	var resp protocol.DownloadResponse
	err := c.Call(protocol.RolePlayer, protocol.ActionDownloadGame,
		protocol.GameRequest{GameName: gameName}, &resp)
	if err != nil {
		return protocol.DownloadResponse{}, err
	}

	f, err := os.Create(destPath)
	if err != nil {
		return protocol.DownloadResponse{}, fmt.Errorf("create %s: %w", destPath, err)
	}
	defer f.Close()

	if err := c.codec.ReadRaw(f, resp.ArchiveSize); err != nil {
		return protocol.DownloadResponse{}, fmt.Errorf("receive archive: %w", err)
	}
	return resp, nil
}

// Upload sends the metadata header followed by the archive bytes. Used for
// both upload_game and update_game.
func (c *Client) Upload(action protocol.Action, meta protocol.UploadRequest, archivePath string) (protocol.UploadResponse, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return protocol.UploadResponse{}, fmt.Errorf("open %s: %w", archivePath, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return protocol.UploadResponse{}, fmt.Errorf("stat %s: %w", archivePath, err)
	}
	meta.ArchiveSize = stat.Size()

	data, err := json.Marshal(meta)
	if err != nil {
		return protocol.UploadResponse{}, fmt.Errorf("encode payload: %w", err)
	}
	if err := c.codec.WriteMessage(protocol.Request{
		Role:    protocol.RoleDeveloper,
		Action:  action,
		Payload: data,
	}); err != nil {
		return protocol.UploadResponse{}, err
	}
	if _, err := c.codec.WriteRaw(f); err != nil {
		return protocol.UploadResponse{}, fmt.Errorf("send archive: %w", err)
	}

	var resp protocol.UploadResponse
	if err := c.readResponse(&resp); err != nil {
		return protocol.UploadResponse{}, err
	}
	return resp, nil
}
