package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rmaia/bolao/internal/handler"
	"github.com/rmaia/bolao/internal/model"
	"github.com/rmaia/bolao/internal/repository/sqlite"
	"github.com/rmaia/bolao/internal/service"
)

type guessHandlerFixture struct {
	db      *sqlite.DB
	pools   *handler.PoolHandler
	guesses *handler.GuessHandler
	user    *model.User
	pool    *model.Pool
}

// newGuessHandlerFixture builds the stack with one user already joined
// to one pool, ready to guess.
func newGuessHandlerFixture(t *testing.T) *guessHandlerFixture {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	poolSvc := service.NewPoolService(db, logger)

	user := &model.User{GoogleID: "g-guesser", Name: "Guesser"}
	if err := db.Upsert(context.Background(), user); err != nil {
		t.Fatalf("upserting test user: %v", err)
	}

	pool, err := poolSvc.Create(context.Background(), "guessing pool", user.ID)
	if err != nil {
		t.Fatalf("creating test pool: %v", err)
	}

	return &guessHandlerFixture{
		db:      db,
		pools:   handler.NewPoolHandler(poolSvc, logger),
		guesses: handler.NewGuessHandler(service.NewGuessService(db, db, logger), logger),
		user:    user,
		pool:    pool,
	}
}

// addGame inserts a game kicking off at the given offset from now.
func (f *guessHandlerFixture) addGame(t *testing.T, kickoffIn time.Duration) *model.Game {
	t.Helper()
	game := &model.Game{
		FirstTeamCountryCode:  "BR",
		SecondTeamCountryCode: "AR",
		Date:                  time.Now().Add(kickoffIn),
	}
	if err := f.db.CreateGame(context.Background(), game); err != nil {
		t.Fatalf("creating test game: %v", err)
	}
	return game
}

func (f *guessHandlerFixture) submit(userID, poolID, gameID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost,
		"/api/pools/"+poolID+"/games/"+gameID+"/guesses",
		bytes.NewBufferString(body))
	req.SetPathValue("poolId", poolID)
	req.SetPathValue("gameId", gameID)
	req = asUser(req, userID)

	rr := httptest.NewRecorder()
	f.guesses.HandleSubmit(rr, req)
	return rr
}

func TestGuessHandler_HandleSubmit(t *testing.T) {
	t.Run("records a guess", func(t *testing.T) {
		f := newGuessHandlerFixture(t)
		game := f.addGame(t, time.Hour)

		rr := f.submit(f.user.ID, f.pool.ID, game.ID,
			`{"firstTeamPoints":2,"secondTeamPoints":1}`)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var res model.Guess
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, game.ID, res.GameID)
		assert.Equal(t, 2, res.FirstTeamPoints)
		assert.Equal(t, 1, res.SecondTeamPoints)
	})

	t.Run("zero-zero is a valid guess", func(t *testing.T) {
		f := newGuessHandlerFixture(t)
		game := f.addGame(t, time.Hour)

		rr := f.submit(f.user.ID, f.pool.ID, game.ID,
			`{"firstTeamPoints":0,"secondTeamPoints":0}`)
		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newGuessHandlerFixture(t)
		game := f.addGame(t, time.Hour)

		rr := f.submit(f.user.ID, f.pool.ID, game.ID, `{"firstTeamPoints":2}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("negative points", func(t *testing.T) {
		f := newGuessHandlerFixture(t)
		game := f.addGame(t, time.Hour)

		rr := f.submit(f.user.ID, f.pool.ID, game.ID,
			`{"firstTeamPoints":-1,"secondTeamPoints":0}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-member maps to 403", func(t *testing.T) {
		f := newGuessHandlerFixture(t)
		game := f.addGame(t, time.Hour)

		outsider := &model.User{GoogleID: "g-outsider", Name: "Outsider"}
		assert.NoError(t, f.db.Upsert(context.Background(), outsider))

		rr := f.submit(outsider.ID, f.pool.ID, game.ID,
			`{"firstTeamPoints":1,"secondTeamPoints":1}`)
		assert.Equal(t, http.StatusForbidden, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "forbidden", res.Error)
	})

	t.Run("second guess maps to 409", func(t *testing.T) {
		f := newGuessHandlerFixture(t)
		game := f.addGame(t, time.Hour)

		rr := f.submit(f.user.ID, f.pool.ID, game.ID,
			`{"firstTeamPoints":2,"secondTeamPoints":1}`)
		assert.Equal(t, http.StatusCreated, rr.Code)

		rr = f.submit(f.user.ID, f.pool.ID, game.ID,
			`{"firstTeamPoints":3,"secondTeamPoints":0}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("unknown game maps to 404", func(t *testing.T) {
		f := newGuessHandlerFixture(t)

		rr := f.submit(f.user.ID, f.pool.ID, "nope",
			`{"firstTeamPoints":1,"secondTeamPoints":1}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("started game maps to 400", func(t *testing.T) {
		f := newGuessHandlerFixture(t)
		game := f.addGame(t, -time.Hour)

		rr := f.submit(f.user.ID, f.pool.ID, game.ID,
			`{"firstTeamPoints":1,"secondTeamPoints":1}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "submission_closed", res.Error)
	})
}

func TestGuessHandler_HandleListGames(t *testing.T) {
	f := newGuessHandlerFixture(t)
	game := f.addGame(t, time.Hour)
	f.addGame(t, 2*time.Hour)

	rr := f.submit(f.user.ID, f.pool.ID, game.ID,
		`{"firstTeamPoints":2,"secondTeamPoints":1}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/pools/"+f.pool.ID+"/games", nil)
	req.SetPathValue("id", f.pool.ID)
	req = asUser(req, f.user.ID)

	rr = httptest.NewRecorder()
	f.guesses.HandleListGames(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var res []model.GameWithGuess
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Len(t, res, 2)

	guessed := 0
	for _, g := range res {
		if g.Guess != nil {
			guessed++
			assert.Equal(t, game.ID, g.Guess.GameID)
		}
	}
	assert.Equal(t, 1, guessed)
}

func TestGuessHandler_HandleCount(t *testing.T) {
	f := newGuessHandlerFixture(t)
	game := f.addGame(t, time.Hour)

	rr := f.submit(f.user.ID, f.pool.ID, game.ID,
		`{"firstTeamPoints":1,"secondTeamPoints":0}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	f.guesses.HandleCount(rr, httptest.NewRequest(http.MethodGet, "/api/guesses/count", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var res map[string]int64
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, int64(1), res["count"])
}
