package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/rmaia/bolao/internal/apperror"
	"github.com/rmaia/bolao/internal/model"
	"github.com/rmaia/bolao/internal/repository"
)

// Compile-time check that *DB implements repository.GuessRepository.
var _ repository.GuessRepository = (*DB)(nil)

// CreateGuess inserts a guess. The point values are stored verbatim —
// range checks belong to the input-parsing boundary, not here.
//
// A UNIQUE violation on (participant_id, game_id) means another request
// for the same pair won the race since the service's pre-check; it is
// reported as DuplicateGuess, the same outcome the pre-check produces.
func (db *DB) CreateGuess(ctx context.Context, guess *model.Guess) error {
	guess.ID = xid.New().String()
	guess.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO guesses (id, participant_id, game_id, first_team_points, second_team_points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		guess.ID,
		guess.ParticipantID,
		guess.GameID,
		guess.FirstTeamPoints,
		guess.SecondTeamPoints,
		guess.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateGuess()
		}
		return fmt.Errorf("sqlite: creating guess: %w", err)
	}

	return nil
}

// GetGuess returns the guess for (participantID, gameID).
func (db *DB) GetGuess(ctx context.Context, participantID, gameID string) (*model.Guess, error) {
	var g model.Guess

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, participant_id, game_id, first_team_points, second_team_points, created_at
		 FROM guesses WHERE participant_id = ? AND game_id = ?`,
		participantID, gameID,
	).Scan(&g.ID, &g.ParticipantID, &g.GameID, &g.FirstTeamPoints, &g.SecondTeamPoints, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("guess", participantID+"/"+gameID)
		}
		return nil, fmt.Errorf("sqlite: getting guess: %w", err)
	}

	return &g, nil
}

// GetGameByID returns one game.
func (db *DB) GetGameByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, first_team_country_code, second_team_country_code, date
		 FROM games WHERE id = ?`,
		id,
	).Scan(&g.ID, &g.FirstTeamCountryCode, &g.SecondTeamCountryCode, &g.Date)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("game", id)
		}
		return nil, fmt.Errorf("sqlite: getting game %s: %w", id, err)
	}

	return &g, nil
}

// ListGamesWithGuess returns every game, newest kickoff first, each
// paired with the caller's own guess in the given pool (nil if they
// haven't guessed, or aren't a member at all).
//
// The LEFT JOIN is scoped to the caller's participant row, so this can
// never leak another participant's guesses.
func (db *DB) ListGamesWithGuess(ctx context.Context, userID, poolID string) ([]model.GameWithGuess, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT g.id, g.first_team_country_code, g.second_team_country_code, g.date,
		        gu.id, gu.participant_id, gu.first_team_points, gu.second_team_points, gu.created_at
		 FROM games g
		 LEFT JOIN guesses gu
		   ON gu.game_id = g.id
		  AND gu.participant_id = (SELECT id FROM participants WHERE user_id = ? AND pool_id = ?)
		 ORDER BY g.date DESC, g.id`,
		userID, poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing games: %w", err)
	}
	defer rows.Close()

	games := []model.GameWithGuess{}
	for rows.Next() {
		var (
			gw            model.GameWithGuess
			guessID       sql.NullString
			participantID sql.NullString
			firstPoints   sql.NullInt64
			secondPoints  sql.NullInt64
			createdAt     sql.NullTime
		)
		if err := rows.Scan(
			&gw.ID, &gw.FirstTeamCountryCode, &gw.SecondTeamCountryCode, &gw.Date,
			&guessID, &participantID, &firstPoints, &secondPoints, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}

		if guessID.Valid {
			gw.Guess = &model.Guess{
				ID:               guessID.String,
				ParticipantID:    participantID.String,
				GameID:           gw.ID,
				FirstTeamPoints:  int(firstPoints.Int64),
				SecondTeamPoints: int(secondPoints.Int64),
				CreatedAt:        createdAt.Time,
			}
		}
		games = append(games, gw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}

	return games, nil
}

// CreateGame inserts a fixture. Only cmd/seed and tests call this.
func (db *DB) CreateGame(ctx context.Context, game *model.Game) error {
	if game.ID == "" {
		game.ID = xid.New().String()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO games (id, first_team_country_code, second_team_country_code, date)
		 VALUES (?, ?, ?, ?)`,
		game.ID, game.FirstTeamCountryCode, game.SecondTeamCountryCode, game.Date,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating game: %w", err)
	}
	return nil
}

// CountGuesses returns the total number of guesses.
func (db *DB) CountGuesses(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM guesses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting guesses: %w", err)
	}
	return n, nil
}
