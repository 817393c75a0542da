// Package main seeds the database with a fixture list of games so there
// is something to guess on in development.
//
// Usage: go run ./cmd/seed [-db data/bolao.db]
//
// Running it twice inserts the games twice — it is a development tool,
// point it at a fresh database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/rmaia/bolao/internal/model"
	sqliteRepo "github.com/rmaia/bolao/internal/repository/sqlite"
)

// fixtures are the 2022 group-stage openers. Dates are UTC kickoffs.
var fixtures = []struct {
	first, second string
	date          string
}{
	{"QA", "EC", "2022-11-20T16:00:00Z"},
	{"GB", "IR", "2022-11-21T13:00:00Z"},
	{"US", "GB", "2022-11-25T19:00:00Z"},
	{"AR", "SA", "2022-11-22T10:00:00Z"},
	{"MX", "PL", "2022-11-22T16:00:00Z"},
	{"FR", "AU", "2022-11-22T19:00:00Z"},
	{"ES", "CR", "2022-11-23T16:00:00Z"},
	{"DE", "JP", "2022-11-23T13:00:00Z"},
	{"BR", "RS", "2022-11-24T19:00:00Z"},
	{"PT", "GH", "2022-11-24T16:00:00Z"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	godotenv.Load()

	defaultPath := "data/bolao.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		defaultPath = envDB
	}
	dbPath := flag.String("db", defaultPath, "path to the SQLite database")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		logger.Error("failed to create database directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := sqliteRepo.New(*dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	for _, f := range fixtures {
		date, err := time.Parse(time.RFC3339, f.date)
		if err != nil {
			logger.Error("bad fixture date", slog.String("date", f.date))
			os.Exit(1)
		}

		game := &model.Game{
			FirstTeamCountryCode:  f.first,
			SecondTeamCountryCode: f.second,
			Date:                  date,
		}
		if err := db.CreateGame(ctx, game); err != nil {
			logger.Error("failed to insert game",
				slog.String("match", f.first+" x "+f.second),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("seeded game",
			slog.String("match", f.first+" x "+f.second),
			slog.Time("kickoff", date),
		)
	}

	logger.Info("seed complete", slog.Int("games", len(fixtures)))
}
