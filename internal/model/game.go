package model

import "time"

// Game is one tournament fixture. Games are reference data loaded by
// cmd/seed (or an external feed) — nothing in the request path creates or
// modifies them.
//
// Teams are identified by ISO country code ("BR", "AR"); rendering names
// and flags is the client's job.
type Game struct {
	ID                    string    `json:"id"`
	FirstTeamCountryCode  string    `json:"firstTeamCountryCode"`
	SecondTeamCountryCode string    `json:"secondTeamCountryCode"`
	Date                  time.Time `json:"date"` // kickoff; guesses close at this instant
}

// Guess is one participant's score prediction for one game. The
// (ParticipantID, GameID) pair is unique and a guess is immutable once
// created — there is no update or delete operation anywhere in the system.
type Guess struct {
	ID               string    `json:"id"`
	ParticipantID    string    `json:"participantId"`
	GameID           string    `json:"gameId"`
	FirstTeamPoints  int       `json:"firstTeamPoints"`
	SecondTeamPoints int       `json:"secondTeamPoints"`
	CreatedAt        time.Time `json:"createdAt"`
}

// GameWithGuess pairs a game with the calling participant's own guess for
// it, or nil if they haven't guessed yet. Used by the per-pool game
// listing; it never carries anyone else's guesses.
type GameWithGuess struct {
	Game
	Guess *Guess `json:"guess"`
}
