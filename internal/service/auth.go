// Package service — authentication business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rmaia/bolao/internal/auth"
	"github.com/rmaia/bolao/internal/model"
	"github.com/rmaia/bolao/internal/repository"
)

// AuthService orchestrates the Google sign-in callback: upsert the user,
// issue the JWT. It sits between the HTTP handlers and the repository /
// token utilities and owns no HTTP concerns — cookies are the handler's
// job.
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler
// can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGoogle handles the OAuth callback after the handler has
// exchanged the code for a Google profile.
//
// Google account IDs are stable and unique, so we always upsert on
// google_id: first login inserts, later logins refresh name/email/avatar.
// The internal user ID never changes across logins — memberships and
// guesses depend on that.
func (s *AuthService) LoginOrRegisterGoogle(ctx context.Context, gUser *auth.GoogleUser) (*AuthResult, error) {
	if gUser == nil {
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}

	user := &model.User{
		GoogleID:  gUser.ID,
		Name:      gUser.Name,
		Email:     gUser.Email,
		AvatarURL: gUser.AvatarURL,
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user: %w", err)
	}

	s.logger.Info("user authenticated via Google",
		slog.String("userID", user.ID),
		slog.String("name", user.Name),
	)

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{
		User:  user,
		Token: token,
	}, nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// /api/me handler after the middleware extracts the userID from the JWT.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *AuthService) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("service/auth: counting users: %w", err)
	}
	return n, nil
}
