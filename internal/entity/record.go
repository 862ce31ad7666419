package entity

import "time"

// EpisodeRecord is the result of one played game.
type EpisodeRecord struct {
	RunID    string
	Episode  int
	Winner   Mark
	Profile  Profile
	PlayedAt time.Time
}

// Stats aggregates the records of a run.
type Stats struct {
	Episodes      int
	XWins         int
	OWins         int
	Draws         int
	DistinctGames int
}
