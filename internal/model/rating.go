package model

import "time"

// Rating is one player's review of a game. Ratings are append-only.
type Rating struct {
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// RatingTable is the persisted rating store, keyed by game name. Entries are
// in submission order, oldest first.
type RatingTable map[string][]Rating

// HistoryTable records play counts, keyed by player then game name.
type HistoryTable map[string]map[string]int
