package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmaia/bolao/internal/apperror"
	"github.com/rmaia/bolao/internal/model"
	"github.com/rmaia/bolao/internal/repository"
)

// GuessService accepts or rejects guess submissions.
type GuessService struct {
	guesses repository.GuessRepository
	pools   repository.PoolRepository
	logger  *slog.Logger

	// now is the submission-window clock. Injectable so tests can freeze
	// it instead of racing real kickoff times.
	now func() time.Time
}

func NewGuessService(guesses repository.GuessRepository, pools repository.PoolRepository, logger *slog.Logger) *GuessService {
	return &GuessService{
		guesses: guesses,
		pools:   pools,
		logger:  logger,
		now:     time.Now,
	}
}

// Submit records userID's score guess for one game in one pool.
//
// The validation ladder fails fast, first match wins:
//  1. caller must be a participant of the pool        → NotInPool
//  2. no guess may exist for (participant, game)      → DuplicateGuess
//  3. the game must exist                             → NotFound
//  4. kickoff must be strictly in the future          → SubmissionClosed
//
// Only then is the guess created, points stored verbatim. The store's
// UNIQUE constraint backs check 2: a concurrent submission that slips
// past the pre-check still comes back as DuplicateGuess. There is no
// update or cancel — a created guess is permanent.
func (s *GuessService) Submit(ctx context.Context, poolID, gameID string, firstTeamPoints, secondTeamPoints int, userID string) (*model.Guess, error) {
	participant, err := s.pools.GetParticipant(ctx, userID, poolID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotInPool()
		}
		return nil, fmt.Errorf("looking up participant: %w", err)
	}

	_, err = s.guesses.GetGuess(ctx, participant.ID, gameID)
	if err == nil {
		return nil, apperror.DuplicateGuess()
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking existing guess: %w", err)
	}

	game, err := s.guesses.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.Date.After(s.now()) {
		return nil, apperror.SubmissionClosed()
	}

	guess := &model.Guess{
		ParticipantID:    participant.ID,
		GameID:           gameID,
		FirstTeamPoints:  firstTeamPoints,
		SecondTeamPoints: secondTeamPoints,
	}
	if err := s.guesses.CreateGuess(ctx, guess); err != nil {
		// DuplicateGuess from the constraint passes through unchanged.
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		s.logger.Error("failed to create guess",
			slog.String("participantId", participant.ID),
			slog.String("gameId", gameID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating guess: %w", err)
	}

	s.logger.Info("guess created",
		slog.String("id", guess.ID),
		slog.String("gameId", gameID),
		slog.String("poolId", poolID),
	)
	return guess, nil
}

// ListGames returns every game, newest kickoff first, each with the
// caller's own guess in the given pool (or nil).
func (s *GuessService) ListGames(ctx context.Context, poolID, userID string) ([]model.GameWithGuess, error) {
	games, err := s.guesses.ListGamesWithGuess(ctx, userID, poolID)
	if err != nil {
		s.logger.Error("failed to list games", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// Count returns the total number of guesses.
func (s *GuessService) Count(ctx context.Context) (int64, error) {
	n, err := s.guesses.CountGuesses(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting guesses: %w", err)
	}
	return n, nil
}
