// Package service contains the business logic layer: pool membership
// rules, the guess-submission ladder, and auth orchestration.
//
// Services accept plain values and return domain errors from apperror —
// they know nothing about HTTP. Handlers translate both directions.
// Services depend on the repository interfaces, never on the sqlite
// package, so the tests in this package run against in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rmaia/bolao/internal/apperror"
	"github.com/rmaia/bolao/internal/joincode"
	"github.com/rmaia/bolao/internal/model"
	"github.com/rmaia/bolao/internal/repository"
)

const (
	MaxPoolTitleLength = 100

	// maxCodeAttempts bounds the retry loop on join-code collisions.
	// With 36^6 possible codes this effectively never trips before the
	// heat death of a tournament, but an unbounded loop against a
	// misbehaving store would spin forever.
	maxCodeAttempts = 5
)

// PoolService handles pool creation, joining, and the read projections.
type PoolService struct {
	pools  repository.PoolRepository
	logger *slog.Logger
}

func NewPoolService(pools repository.PoolRepository, logger *slog.Logger) *PoolService {
	return &PoolService{
		pools:  pools,
		logger: logger,
	}
}

// Create makes a new pool.
//
// userID is the caller's identity, or "" for an anonymous request. An
// authenticated creation sets the caller as owner and first participant
// atomically; an anonymous one leaves the pool ownerless and memberless —
// a valid state, not an error. The first join will claim ownership.
//
// The join code is generated here and retried on collision: uniqueness
// is the store's UNIQUE constraint, not the generator's promise.
func (s *PoolService) Create(ctx context.Context, title, userID string) (*model.Pool, error) {
	title = strings.TrimSpace(title)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "pool title is required")
	}
	if len(title) > MaxPoolTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("pool title must be %d characters or less", MaxPoolTitleLength))
	}

	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := joincode.Generate()
		if err != nil {
			return nil, fmt.Errorf("generating pool code: %w", err)
		}

		pool := &model.Pool{Title: title, Code: code}
		if userID == "" {
			err = s.pools.CreatePool(ctx, pool)
		} else {
			err = s.pools.CreatePoolWithOwner(ctx, pool, userID)
		}

		if err == nil {
			s.logger.Info("pool created",
				slog.String("id", pool.ID),
				slog.String("code", pool.Code),
				slog.Bool("owned", userID != ""),
			)
			return pool, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to create pool",
				slog.String("title", title),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("creating pool: %w", err)
		}

		// Code collision — draw again.
		lastErr = err
	}

	return nil, fmt.Errorf("creating pool: exhausted %d code attempts: %w", maxCodeAttempts, lastErr)
}

// Join adds the caller to the pool with the given code.
//
// Requires an identity (the handler guarantees userID is non-empty).
// Fails with NotFound for an unknown code and AlreadyMember for a repeat
// join. If the pool is ownerless, this join claims ownership — the
// repository does the claim and the membership insert in one transaction
// so racing first-joins can't produce two owners or lose a membership.
func (s *PoolService) Join(ctx context.Context, code, userID string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return apperror.ValidationFailed("code", "pool code is required")
	}

	pool, err := s.pools.GetPoolByCode(ctx, code)
	if err != nil {
		return err
	}

	if err := s.pools.AddParticipant(ctx, pool.ID, userID); err != nil {
		return err
	}

	s.logger.Info("user joined pool",
		slog.String("poolId", pool.ID),
		slog.String("userId", userID),
	)
	return nil
}

// List returns summaries for every pool the caller belongs to, newest
// first.
func (s *PoolService) List(ctx context.Context, userID string) ([]model.PoolSummary, error) {
	summaries, err := s.pools.ListPoolSummaries(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list pools", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing pools: %w", err)
	}
	return summaries, nil
}

// Get returns the summary for one pool by id.
//
// Any authenticated caller may fetch any pool — there is deliberately no
// membership check on this read path (pool pages are shareable), unlike
// List which only returns the caller's own pools.
func (s *PoolService) Get(ctx context.Context, id string) (*model.PoolSummary, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "pool ID is required")
	}

	return s.pools.GetPoolSummary(ctx, id)
}

// Count returns the total number of pools.
func (s *PoolService) Count(ctx context.Context) (int64, error) {
	n, err := s.pools.CountPools(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting pools: %w", err)
	}
	return n, nil
}
