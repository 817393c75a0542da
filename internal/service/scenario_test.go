package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/rmaia/bolao/internal/apperror"
	"github.com/rmaia/bolao/internal/model"
	"github.com/rmaia/bolao/internal/repository/sqlite"
	"github.com/rmaia/bolao/internal/service"
)

// TestPoolLifecycle runs the whole flow against a real in-memory SQLite
// store, services wired the same way the server wires them:
//
//	anonymous create → ownerless pool with a 6-char code
//	U1 joins by code → becomes owner and sole participant
//	U2 joins         → owner unchanged, two participants
//	U1 guesses a future game → created
//	U1 guesses the same game again → DuplicateGuess
func TestPoolLifecycle(t *testing.T) {
	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	pools := service.NewPoolService(db, logger)
	guesses := service.NewGuessService(db, db, logger)

	ctx := context.Background()

	// Two users exist (the auth flow would have created them).
	u1 := &model.User{GoogleID: "g-1", Name: "U1", AvatarURL: "https://example.com/u1.png"}
	u2 := &model.User{GoogleID: "g-2", Name: "U2", AvatarURL: "https://example.com/u2.png"}
	for _, u := range []*model.User{u1, u2} {
		if err := db.Upsert(ctx, u); err != nil {
			t.Fatalf("upserting user: %v", err)
		}
	}

	// One game kicking off tomorrow.
	game := &model.Game{FirstTeamCountryCode: "BR", SecondTeamCountryCode: "HR", Date: time.Now().Add(24 * time.Hour)}
	if err := db.CreateGame(ctx, game); err != nil {
		t.Fatalf("creating game: %v", err)
	}

	// Anonymous creation: ownerless, memberless.
	pool, err := pools.Create(ctx, "World Cup", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(pool.Code) != 6 {
		t.Fatalf("len(Code) = %d, want 6", len(pool.Code))
	}

	// U1 joins and claims ownership.
	if err := pools.Join(ctx, pool.Code, u1.ID); err != nil {
		t.Fatalf("Join(u1) error = %v", err)
	}
	summary, err := pools.Get(ctx, pool.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if summary.Owner == nil || summary.Owner.ID != u1.ID {
		t.Fatalf("Owner = %+v, want u1", summary.Owner)
	}
	if summary.Count != 1 {
		t.Fatalf("Count = %d, want 1", summary.Count)
	}

	// U2 joins; ownership is untouched.
	if err := pools.Join(ctx, pool.Code, u2.ID); err != nil {
		t.Fatalf("Join(u2) error = %v", err)
	}
	summary, _ = pools.Get(ctx, pool.ID)
	if summary.Owner.ID != u1.ID {
		t.Errorf("Owner = %s, want u1 still", summary.Owner.ID)
	}
	if summary.Count != 2 {
		t.Errorf("Count = %d, want 2", summary.Count)
	}

	// U1 guesses the game.
	if _, err := guesses.Submit(ctx, pool.ID, game.ID, 2, 0, u1.ID); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	// And can't guess it twice.
	_, err = guesses.Submit(ctx, pool.ID, game.ID, 1, 1, u1.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Submit() error = %v, want ErrConflict", err)
	}

	// U1's list shows the pool with both avatars previewed.
	list, err := pools.List(ctx, u1.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if len(list[0].Participants) != 2 {
		t.Errorf("previews = %d, want 2", len(list[0].Participants))
	}

	// The game listing carries U1's guess but not U2's view of it.
	withGuess, err := guesses.ListGames(ctx, pool.ID, u1.ID)
	if err != nil {
		t.Fatalf("ListGames(u1) error = %v", err)
	}
	if len(withGuess) != 1 || withGuess[0].Guess == nil {
		t.Fatalf("ListGames(u1) = %+v, want the guess attached", withGuess)
	}
	without, _ := guesses.ListGames(ctx, pool.ID, u2.ID)
	if without[0].Guess != nil {
		t.Errorf("ListGames(u2) guess = %+v, want nil", without[0].Guess)
	}
}
