package model

// GameType tells clients how to run a game's bundle.
type GameType string

const (
	GameTypeCLI GameType = "CLI"
	GameTypeGUI GameType = "GUI"
)

// Game is a catalog entry for one published game. The game name is the
// catalog key and lives outside the struct.
type Game struct {
	Developer   string   `json:"developer"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Type        GameType `json:"game_type"`
	MinPlayers  int      `json:"min_players"`
	MaxPlayers  int      `json:"max_players"`
}

// GameTable is the persisted catalog, keyed by game name.
type GameTable map[string]Game
