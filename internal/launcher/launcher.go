// Package launcher starts the per-room authoritative game server process.
//
// A bundle's game server binds a TCP port derived from the room id
// (BasePort + id modulo PortRange), so clients can reconnect knowing only
// the room id. The process is fully detached: the lobby does not supervise,
// restart, or reap it.
package launcher

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/openarcade/lobby/internal/model"
)

// Port contract shared with game server bundles.
const (
	BasePort  = 6000
	PortRange = 1000
)

// PortForRoom returns the TCP port a room's game server binds.
func PortForRoom(id model.RoomID) int {
	return BasePort + int(id)%PortRange
}

// runtimeLogName is where an interpreted entry point's stdout/stderr goes,
// inside the bundle directory.
const runtimeLogName = "game_server_runtime.log"

// entryPoint is one launch strategy: a candidate file name, how to build its
// command, and whether it is an interpreted script whose output should be
// redirected to the runtime log.
type entryPoint struct {
	name        string
	interpreted bool
	command     func(path string) *exec.Cmd
}

// entryPoints is probed in order; the first existing candidate wins. No
// silent fallthrough: an empty probe is an explicit error.
var entryPoints = []entryPoint{
	{name: "game_server.sh", command: func(p string) *exec.Cmd { return exec.Command("bash", p) }},
	{name: "game_server", command: func(p string) *exec.Cmd { return exec.Command(p) }},
	{name: "game_server.exe", command: func(p string) *exec.Cmd { return exec.Command(p) }},
	{name: "server.py", interpreted: true, command: func(p string) *exec.Cmd { return exec.Command("python3", p) }},
	{name: "game_server.py", interpreted: true, command: func(p string) *exec.Cmd { return exec.Command("python3", p) }},
}

// Launcher resolves uploaded bundles and spawns their game servers.
type Launcher struct {
	bundleDir string
	logger    *slog.Logger
}

// New creates a launcher over the bundle directory the catalog unpacks into.
func New(bundleDir string, logger *slog.Logger) *Launcher {
	return &Launcher{bundleDir: bundleDir, logger: logger}
}

// Launch starts the game server for a room, detached and non-blocking. The
// room id, comma-joined player list, game name and version travel via the
// process environment.
func (l *Launcher) Launch(gameName, version string, roomID model.RoomID, players []string) error {
	gameDir := filepath.Join(l.bundleDir, fmt.Sprintf("%s_%s", gameName, version))
	if _, err := os.Stat(gameDir); err != nil {
		return fmt.Errorf("%w: %s", model.ErrBundleNotFound, gameDir)
	}

	ep, path, err := resolveEntryPoint(gameDir)
	if err != nil {
		return err
	}

	cmd := ep.command(path)
	cmd.Dir = gameDir
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("GAME_ROOM_ID=%d", roomID),
		"GAME_ROOM_PLAYERS="+strings.Join(players, ","),
		"GAME_NAME="+gameName,
		"GAME_VERSION="+version,
	)

	if ep.interpreted {
		logPath := filepath.Join(gameDir, runtimeLogName)
		logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open runtime log: %w", err)
		}
		defer logFile.Close()
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("spawn game server: %w", err)
	}
	// Detach: the lobby never waits on the process.
	if err := cmd.Process.Release(); err != nil {
		l.logger.Warn("failed to release game server process",
			slog.Int("room_id", int(roomID)),
			slog.String("error", err.Error()))
	}

	l.logger.Info("game server launched",
		slog.String("entry_point", ep.name),
		slog.Int("room_id", int(roomID)),
		slog.Int("port", PortForRoom(roomID)),
		slog.String("game", gameName),
		slog.String("version", version))
	return nil
}

// resolveEntryPoint probes the candidate names in order.
func resolveEntryPoint(gameDir string) (entryPoint, string, error) {
	for _, ep := range entryPoints {
		path := filepath.Join(gameDir, ep.name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return ep, path, nil
		}
	}
	return entryPoint{}, "", fmt.Errorf("%w in %s", model.ErrNoEntryPoint, gameDir)
}
