// Package store persists finished runs to a SQLite or PostgreSQL database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/lox/blackjack-ipc/internal/simulator"
)

// Run is one persisted session
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Transport  string
	Scoring    string
	Seed       int64
	Rounds     int
	DealerWins int
	P1Wins     int
	P2Wins     int
}

// FromResult converts a finished session into a storable run
func FromResult(r *simulator.Result) Run {
	return Run{
		ID:         r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Transport:  string(r.Transport),
		Scoring:    string(r.Tally.Scoring),
		Seed:       r.Seed,
		Rounds:     r.Tally.Rounds,
		DealerWins: r.Tally.DealerWins,
		P1Wins:     r.Tally.P1Wins(),
		P2Wins:     r.Tally.P2Wins(),
	}
}

// Store is a run history backed by a SQL database
type Store struct {
	db *sql.DB
}

// Driver returns the database/sql driver name for dsn. PostgreSQL URLs select
// "postgres"; anything else is taken as a SQLite file path.
func Driver(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// Open opens the run history at dsn, creating the schema if needed
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver := Driver(dsn)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if driver == "sqlite3" {
		// SQLite allows one writer at a time
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(time.Hour)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}
	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			transport TEXT NOT NULL,
			scoring TEXT NOT NULL,
			seed BIGINT NOT NULL,
			rounds INTEGER NOT NULL,
			dealer_wins INTEGER NOT NULL,
			p1_wins INTEGER NOT NULL,
			p2_wins INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("error creating runs table: %w", err)
	}

	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at)`)
	if err != nil {
		return fmt.Errorf("error creating runs index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records a run. Saving the same run twice is an error.
func (s *Store) Save(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, transport, scoring, seed, rounds, dealer_wins, p1_wins, p2_wins)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		run.ID.String(), run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Transport, run.Scoring,
		run.Seed, run.Rounds, run.DealerWins, run.P1Wins, run.P2Wins)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, transport, scoring, seed, rounds, dealer_wins, p1_wins, p2_wins
		FROM runs ORDER BY started_at DESC, id LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Transport,
			&run.Scoring,
			&run.Seed,
			&run.Rounds,
			&run.DealerWins,
			&run.P1Wins,
			&run.P2Wins,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
