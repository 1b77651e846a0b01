package room

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/openarcade/lobby/internal/model"
	"github.com/openarcade/lobby/internal/storage"
)

// pollInterval is the bounded-wait fallback for WaitStart: even if a wakeup
// is missed (a reset swaps the room's start channel under a waiter), the
// waiter revalidates at this interval.
const pollInterval = 300 * time.Millisecond

// Catalog is the slice of the game catalog the manager needs.
type Catalog interface {
	Get(name string) (model.Game, error)
}

// PlayRecorder records that players played a game once.
type PlayRecorder interface {
	RecordPlays(ctx context.Context, players []string, gameName string) error
}

// GameLauncher starts the per-room game server process.
type GameLauncher interface {
	Launch(gameName, version string, roomID model.RoomID, players []string) error
}

// state is a live room plus its wait-wakeup channels. started is closed on
// the waiting-to-playing transition and replaced on reset; closed is closed
// exactly once when the room is deleted.
type state struct {
	room    model.Room
	started chan struct{}
	closed  chan struct{}
}

// Manager owns the room table. Every transition holds mu for its whole
// read-modify-write and persists the table inside that same critical
// section: an acknowledged operation is durably recorded.
type Manager struct {
	store    storage.Store
	catalog  Catalog
	recorder PlayRecorder
	launcher GameLauncher
	logger   *slog.Logger

	mu     sync.Mutex
	rooms  map[model.RoomID]*state
	nextID model.RoomID
}

// New creates the room manager, reloading any persisted rooms. The id
// counter resumes past the highest reloaded id.
func New(ctx context.Context, store storage.Store, catalog Catalog, recorder PlayRecorder, launcher GameLauncher, logger *slog.Logger) (*Manager, error) {
	table, err := store.LoadRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	m := &Manager{
		store:    store,
		catalog:  catalog,
		recorder: recorder,
		launcher: launcher,
		logger:   logger,
		rooms:    make(map[model.RoomID]*state, len(table)),
		nextID:   1,
	}
	for id, room := range table {
		m.rooms[id] = newState(room)
		if id >= m.nextID {
			m.nextID = id + 1
		}
	}
	return m, nil
}

func newState(room model.Room) *state {
	st := &state{
		room:    room,
		started: make(chan struct{}),
		closed:  make(chan struct{}),
	}
	if room.Status == model.RoomStatusPlaying {
		close(st.started)
	}
	return st
}

// persistLocked writes the current room table through the store. Callers
// hold mu.
func (m *Manager) persistLocked(ctx context.Context) error {
	table := make(model.RoomTable, len(m.rooms))
	for id, st := range m.rooms {
		table[id] = st.room.Clone()
	}
	if err := m.store.SaveRooms(ctx, table); err != nil {
		return fmt.Errorf("save rooms: %w", err)
	}
	return nil
}

// Create opens a new waiting room for a catalog game. The creator is the
// sole member, the host, and already ready; min/max players and the game
// version are snapshotted from the catalog entry at creation time.
func (m *Manager) Create(ctx context.Context, host, gameName string) (model.Room, error) {
	game, err := m.catalog.Get(gameName)
	if err != nil {
		return model.Room{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	room := model.Room{
		ID:           id,
		Host:         host,
		GameName:     gameName,
		Players:      []string{host},
		Status:       model.RoomStatusWaiting,
		MinPlayers:   game.MinPlayers,
		MaxPlayers:   game.MaxPlayers,
		Version:      game.Version,
		ReadyPlayers: []string{host},
	}
	m.rooms[id] = newState(room)

	if err := m.persistLocked(ctx); err != nil {
		delete(m.rooms, id)
		return model.Room{}, err
	}

	m.logger.Info("room created",
		slog.Int("room_id", int(id)),
		slog.String("host", host),
		slog.String("game", gameName))
	return room.Clone(), nil
}

// List returns waiting rooms, optionally filtered by game, ordered by id.
func (m *Manager) List(gameName string) []model.Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.Room{}
	for _, st := range m.rooms {
		if st.room.Status != model.RoomStatusWaiting {
			continue
		}
		if gameName != "" && st.room.GameName != gameName {
			continue
		}
		out = append(out, st.room.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Info returns a snapshot of one room.
func (m *Manager) Info(id model.RoomID) (model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.rooms[id]
	if !ok {
		return model.Room{}, model.ErrRoomNotFound
	}
	return st.room.Clone(), nil
}

// Players returns a room's member list in join order.
func (m *Manager) Players(id model.RoomID) ([]string, error) {
	room, err := m.Info(id)
	if err != nil {
		return nil, err
	}
	return room.Players, nil
}

// Join appends a player to a waiting room.
func (m *Manager) Join(ctx context.Context, username string, id model.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}
	if st.room.HasPlayer(username) {
		return model.ErrAlreadyInRoom
	}
	if st.room.Status != model.RoomStatusWaiting {
		return model.ErrRoomNotJoinable
	}
	if len(st.room.Players) >= st.room.MaxPlayers {
		return model.ErrRoomFull
	}

	st.room.Players = append(st.room.Players, username)
	if err := m.persistLocked(ctx); err != nil {
		st.room.Players = st.room.Players[:len(st.room.Players)-1]
		return err
	}

	m.logger.Info("player joined room",
		slog.Int("room_id", int(id)),
		slog.String("username", username))
	return nil
}

// StartResult is the membership snapshot handed to the game server and to
// every waiter.
type StartResult struct {
	RoomID   model.RoomID
	GameName string
	Version  string
	Players  []string
}

// Start transitions a waiting room to playing. Host-only; requires at least
// MinPlayers members and every non-host member ready. On success the
// membership snapshot is recorded in play history and the game server is
// launched; a launch failure is logged but does not roll the transition
// back.
func (m *Manager) Start(ctx context.Context, username string, id model.RoomID) (StartResult, error) {
	m.mu.Lock()

	st, ok := m.rooms[id]
	if !ok {
		m.mu.Unlock()
		return StartResult{}, model.ErrRoomNotFound
	}
	room := &st.room
	if room.Host != username {
		m.mu.Unlock()
		return StartResult{}, model.ErrNotHost
	}
	if room.Status != model.RoomStatusWaiting {
		m.mu.Unlock()
		return StartResult{}, model.ErrRoomAlreadyStarted
	}
	if len(room.Players) < room.MinPlayers {
		m.mu.Unlock()
		return StartResult{}, model.ErrInsufficientPlayers
	}

	var notReady []string
	for _, p := range room.Players {
		if p != room.Host && !room.IsReady(p) {
			notReady = append(notReady, p)
		}
	}
	if len(notReady) > 0 {
		m.mu.Unlock()
		return StartResult{}, fmt.Errorf("%w: %s", model.ErrPlayersNotReady, strings.Join(notReady, ", "))
	}

	room.Status = model.RoomStatusPlaying
	result := StartResult{
		RoomID:   id,
		GameName: room.GameName,
		Version:  room.Version,
		Players:  append([]string(nil), room.Players...),
	}
	if err := m.persistLocked(ctx); err != nil {
		room.Status = model.RoomStatusWaiting
		m.mu.Unlock()
		return StartResult{}, err
	}
	close(st.started)
	m.mu.Unlock()

	// The room is already playing; launch and bookkeeping failures are
	// logged, not rolled back.
	if err := m.launcher.Launch(result.GameName, result.Version, id, result.Players); err != nil {
		m.logger.Error("failed to launch game server",
			slog.Int("room_id", int(id)),
			slog.String("game", result.GameName),
			slog.String("error", err.Error()))
	}
	if err := m.recorder.RecordPlays(ctx, result.Players, result.GameName); err != nil {
		m.logger.Error("failed to record play history",
			slog.Int("room_id", int(id)),
			slog.String("error", err.Error()))
	}

	m.logger.Info("room started",
		slog.Int("room_id", int(id)),
		slog.String("game", result.GameName),
		slog.Int("players", len(result.Players)))
	return result, nil
}

// Reset returns a played room to waiting. Host-only; membership is kept and
// the ready set shrinks back to just the host.
func (m *Manager) Reset(ctx context.Context, username string, id model.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}
	if st.room.Host != username {
		return model.ErrNotHost
	}

	prevStatus := st.room.Status
	prevReady := st.room.ReadyPlayers
	st.room.Status = model.RoomStatusWaiting
	st.room.ReadyPlayers = []string{st.room.Host}
	if err := m.persistLocked(ctx); err != nil {
		st.room.Status = prevStatus
		st.room.ReadyPlayers = prevReady
		return err
	}

	// Waiters blocked on the old start channel fall back to polling.
	st.started = make(chan struct{})

	m.logger.Info("room reset", slog.Int("room_id", int(id)))
	return nil
}

// Leave removes a player. The host seat passes to the earliest remaining
// member; the room is deleted when its last member leaves. Returns whether
// the room was deleted.
func (m *Manager) Leave(ctx context.Context, username string, id model.RoomID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.rooms[id]
	if !ok {
		return false, model.ErrRoomNotFound
	}
	if !st.room.HasPlayer(username) {
		return false, model.ErrNotInRoom
	}

	deleted := m.removeMemberLocked(st, username)
	if err := m.persistLocked(ctx); err != nil {
		return false, err
	}
	if deleted {
		close(st.closed)
		m.logger.Info("room closed", slog.Int("room_id", int(id)))
	} else {
		m.logger.Info("player left room",
			slog.Int("room_id", int(id)),
			slog.String("username", username))
	}
	return deleted, nil
}

// EvictUser removes a user from every room it occupies, applying the same
// host-reassignment and empty-room-deletion rules as Leave. Used by the
// connection cleanup path on logout and disconnect.
func (m *Manager) EvictUser(ctx context.Context, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var closedStates []*state
	for _, st := range m.rooms {
		if !st.room.HasPlayer(username) {
			continue
		}
		if m.removeMemberLocked(st, username) {
			closedStates = append(closedStates, st)
		}
	}
	if err := m.persistLocked(ctx); err != nil {
		m.logger.Error("failed to persist rooms during eviction",
			slog.String("username", username),
			slog.String("error", err.Error()))
	}
	for _, st := range closedStates {
		close(st.closed)
		m.logger.Info("room closed", slog.Int("room_id", int(st.room.ID)))
	}
}

// removeMemberLocked drops username from a room, reassigns the host seat if
// needed, and deletes the room from the table when empty. Reports deletion;
// the caller closes st.closed after persisting.
func (m *Manager) removeMemberLocked(st *state, username string) bool {
	room := &st.room
	for i, p := range room.Players {
		if p == username {
			room.Players = append(room.Players[:i], room.Players[i+1:]...)
			break
		}
	}
	for i, p := range room.ReadyPlayers {
		if p == username {
			room.ReadyPlayers = append(room.ReadyPlayers[:i], room.ReadyPlayers[i+1:]...)
			break
		}
	}

	if len(room.Players) == 0 {
		delete(m.rooms, room.ID)
		return true
	}
	if room.Host == username {
		room.Host = room.Players[0]
	}
	return false
}

// MarkReady records a member's readiness without blocking for the start.
func (m *Manager) MarkReady(ctx context.Context, username string, id model.RoomID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.rooms[id]
	if !ok {
		return model.ErrRoomNotFound
	}
	if !st.room.HasPlayer(username) {
		return model.ErrNotInRoom
	}
	if st.room.IsReady(username) {
		return nil
	}
	st.room.ReadyPlayers = append(st.room.ReadyPlayers, username)
	if err := m.persistLocked(ctx); err != nil {
		st.room.ReadyPlayers = st.room.ReadyPlayers[:len(st.room.ReadyPlayers)-1]
		return err
	}
	return nil
}

// WaitStart marks the caller ready and blocks until the room starts. A
// deleted room or a canceled context unblocks the wait with an error; a
// periodic revalidation bounds the wait even if a wakeup is missed.
func (m *Manager) WaitStart(ctx context.Context, username string, id model.RoomID) (StartResult, error) {
	m.mu.Lock()
	st, ok := m.rooms[id]
	if !ok {
		m.mu.Unlock()
		return StartResult{}, model.ErrRoomNotFound
	}
	if !st.room.HasPlayer(username) {
		m.mu.Unlock()
		return StartResult{}, model.ErrNotInRoom
	}
	if !st.room.IsReady(username) {
		st.room.ReadyPlayers = append(st.room.ReadyPlayers, username)
		if err := m.persistLocked(ctx); err != nil {
			m.mu.Unlock()
			return StartResult{}, err
		}
	}
	started := st.started
	closed := st.closed
	m.mu.Unlock()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-started:
		case <-closed:
			return StartResult{}, model.ErrRoomClosed
		case <-ctx.Done():
			return StartResult{}, ctx.Err()
		case <-ticker.C:
		}

		result, running, err := m.startSnapshot(id)
		if err != nil {
			return StartResult{}, err
		}
		if running {
			return result, nil
		}
		// Not playing yet: a reset may have replaced the start channel.
		m.mu.Lock()
		if st, ok := m.rooms[id]; ok {
			started = st.started
			closed = st.closed
		}
		m.mu.Unlock()
	}
}

// startSnapshot re-reads a room, reporting whether it is playing.
func (m *Manager) startSnapshot(id model.RoomID) (StartResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.rooms[id]
	if !ok {
		return StartResult{}, false, model.ErrRoomClosed
	}
	if st.room.Status != model.RoomStatusPlaying {
		return StartResult{}, false, nil
	}
	return StartResult{
		RoomID:   id,
		GameName: st.room.GameName,
		Version:  st.room.Version,
		Players:  append([]string(nil), st.room.Players...),
	}, true, nil
}
