// Package repository defines the persistence interfaces consumed by the
// service layer. Concrete implementations live in subpackages (sqlite).
//
// The services depend on these interfaces, never on *sqlite.DB directly,
// so tests can substitute in-memory mocks and the storage backend can be
// swapped without touching business logic.
package repository

import (
	"context"

	"github.com/rmaia/bolao/internal/model"
)

// PoolRepository persists pools and memberships and serves the read-side
// summary projections.
type PoolRepository interface {
	// CreatePool inserts an ownerless, memberless pool. Returns an error
	// wrapping apperror.ErrConflict if the code is already taken.
	CreatePool(ctx context.Context, pool *model.Pool) error

	// CreatePoolWithOwner inserts the pool, sets ownerID as its owner, and
	// creates the owner's participant record — all in one transaction.
	// Same code-collision behaviour as CreatePool.
	CreatePoolWithOwner(ctx context.Context, pool *model.Pool, ownerID string) error

	// GetPoolByCode looks a pool up by its join code.
	GetPoolByCode(ctx context.Context, code string) (*model.Pool, error)

	// AddParticipant joins userID to the pool, claiming ownership for them
	// if the pool has none yet. Claim and insert happen in one transaction.
	// Returns apperror.AlreadyMember (possibly via the UNIQUE constraint)
	// if the membership already exists.
	AddParticipant(ctx context.Context, poolID, userID string) error

	// GetParticipant returns the membership record for (userID, poolID),
	// or an error wrapping apperror.ErrNotFound.
	GetParticipant(ctx context.Context, userID, poolID string) (*model.Participant, error)

	// GetPoolSummary returns the projection for one pool.
	GetPoolSummary(ctx context.Context, id string) (*model.PoolSummary, error)

	// ListPoolSummaries returns projections for every pool userID belongs
	// to, newest pool first.
	ListPoolSummaries(ctx context.Context, userID string) ([]model.PoolSummary, error)

	// CountPools returns the total number of pools.
	CountPools(ctx context.Context) (int64, error)
}

// GuessRepository persists guesses and reads games.
type GuessRepository interface {
	// CreateGuess inserts a guess. Returns apperror.DuplicateGuess
	// (possibly via the UNIQUE constraint) if the participant already
	// guessed the game.
	CreateGuess(ctx context.Context, guess *model.Guess) error

	// GetGuess returns the guess for (participantID, gameID), or an error
	// wrapping apperror.ErrNotFound.
	GetGuess(ctx context.Context, participantID, gameID string) (*model.Guess, error)

	// GetGameByID returns one game.
	GetGameByID(ctx context.Context, id string) (*model.Game, error)

	// ListGamesWithGuess returns all games, newest kickoff first, each
	// paired with the (userID, poolID) participant's own guess if any.
	ListGamesWithGuess(ctx context.Context, userID, poolID string) ([]model.GameWithGuess, error)

	// CreateGame inserts a fixture. Used by cmd/seed and tests only —
	// games are reference data, never created on the request path.
	CreateGame(ctx context.Context, game *model.Game) error

	// CountGuesses returns the total number of guesses.
	CountGuesses(ctx context.Context) (int64, error)
}

// UserRepository persists user accounts created by the auth flow.
type UserRepository interface {
	// Upsert inserts the user on first login (keyed by GoogleID) and
	// refreshes name/email/avatar on subsequent logins. Fills in ID and
	// timestamps on the passed struct.
	Upsert(ctx context.Context, user *model.User) error

	// GetUserByID returns a user by internal ID.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int64, error)
}
