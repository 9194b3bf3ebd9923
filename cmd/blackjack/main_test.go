package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack-ipc/internal/config"
	"github.com/lox/blackjack-ipc/internal/report"
	"github.com/lox/blackjack-ipc/internal/simulator"
	"github.com/lox/blackjack-ipc/internal/store"
	"github.com/lox/blackjack-ipc/internal/transport"
)

const childEnv = "BLACKJACK_CMD_TEST_CHILD"

// TestMain lets the test binary act as the blackjack executable when the
// process transport re-executes it as "blackjack player ...".
func TestMain(m *testing.M) {
	if os.Getenv(childEnv) == "1" {
		var cli CLI
		parser, err := kong.New(&cli, kong.Name("blackjack"), kong.Vars{"version": "test"})
		if err != nil {
			panic(err)
		}
		ctx, err := parser.Parse(os.Args[1:])
		parser.FatalIfErrorf(err)
		parser.FatalIfErrorf(ctx.Run(&cli.Globals))
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("blackjack"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, ctx
}

func TestParseDefaultsToRun(t *testing.T) {
	cli, ctx := parse(t)
	assert.Equal(t, "run", ctx.Command())
	assert.Nil(t, cli.Run.Rounds)
	assert.Nil(t, cli.Run.Seed)
	assert.Empty(t, cli.Run.Transport)
}

func TestParseRunFlags(t *testing.T) {
	cli, ctx := parse(t, "run", "--rounds", "50", "--seed", "9", "--transport", "pipe",
		"--buffer", "0", "--scoring", "per-round", "--no-color", "--log-level", "debug")
	assert.Equal(t, "run", ctx.Command())

	cfg := config.Default()
	cli.Run.apply(cfg)

	assert.Equal(t, 50, cfg.Simulation.Rounds)
	assert.Equal(t, int64(9), cfg.Simulation.Seed)
	assert.Equal(t, "pipe", cfg.Simulation.Transport)
	assert.Equal(t, 0, cfg.Simulation.Buffer)
	assert.Equal(t, "per-round", cfg.Simulation.Scoring)
	assert.True(t, cli.Run.NoColor)
	assert.Equal(t, "debug", cli.LogLevel)
}

func TestApplyLeavesUnsetFlagsAlone(t *testing.T) {
	cfg := config.Default()
	cfg.Simulation.Buffer = 8
	cfg.Simulation.Seed = 3

	(&RunCmd{}).apply(cfg)
	assert.Equal(t, 8, cfg.Simulation.Buffer)
	assert.Equal(t, int64(3), cfg.Simulation.Seed)
	assert.Equal(t, 1000, cfg.Simulation.Rounds)
}

func TestParsePlayer(t *testing.T) {
	cli, ctx := parse(t, "player", "--seat", "2", "--rounds", "1000", "--log-level", "warn")
	assert.Equal(t, "player", ctx.Command())
	assert.Equal(t, 2, cli.Player.Seat)
	assert.Equal(t, 1000, cli.Player.Rounds)
	assert.Equal(t, "warn", cli.LogLevel)
}

func TestParseDatabaseURLUnchanged(t *testing.T) {
	for _, dsn := range []string{"postgres://u@h/db", "postgresql://u:p@localhost:5432/runs?sslmode=disable"} {
		t.Run(dsn, func(t *testing.T) {
			cli, _ := parse(t, "run", "--db", dsn)
			assert.Equal(t, dsn, cli.Run.DB)
			assert.Equal(t, "postgres", store.Driver(cli.Run.DB))

			cli, _ = parse(t, "history", "--db", dsn)
			assert.Equal(t, dsn, cli.History.DB)
			assert.Equal(t, "postgres", store.Driver(cli.History.DB))
		})
	}

	cli, _ := parse(t, "run", "--db", "runs.db")
	assert.Equal(t, "runs.db", cli.Run.DB)
	assert.Equal(t, "sqlite3", store.Driver(cli.Run.DB))
}

func TestPlayerCommandOverProcessTransport(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}
	t.Setenv(childEnv, "1")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const rounds, seed = 40, 77
	got, err := simulator.Run(ctx, simulator.Config{
		Rounds:     rounds,
		Seed:       seed,
		Transport:  transport.Process,
		Executable: os.Args[0],
		LogLevel:   "error",
	})
	require.NoError(t, err)

	want, err := simulator.Run(ctx, simulator.Config{Rounds: rounds, Seed: seed})
	require.NoError(t, err)

	assert.Equal(t, rounds, got.Tally.Rounds)
	assert.Equal(t, want.Tally, got.Tally)
}

func TestPlayerCommandRejectsBadArguments(t *testing.T) {
	if testing.Short() {
		t.Skip("spawns child processes")
	}
	t.Setenv(childEnv, "1")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid seat", []string{"player", "--seat", "3", "--rounds", "1"}, "invalid seat 3"},
		{"invalid log level", []string{"player", "--seat", "1", "--rounds", "1", "--log-level", "loud"}, "log level"},
		{"missing rounds", []string{"player", "--seat", "1"}, "--rounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := exec.Command(os.Args[0], tt.args...).CombinedOutput()
			require.Error(t, err)
			assert.Contains(t, string(out), tt.want)
		})
	}
}

func TestRunAndHistory(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	summary := filepath.Join(dir, "summary.json")
	g := &Globals{Config: filepath.Join(dir, "missing.hcl"), LogLevel: "error"}

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2025, 4, 5, 12, 0, 0, 0, time.UTC))

	rounds, seed := 25, int64(5150)
	var out bytes.Buffer
	run := &RunCmd{
		Rounds:    &rounds,
		Seed:      &seed,
		Transport: "pipe",
		DB:        db,
		Output:    summary,
		NoColor:   true,
		out:       &out,
		clock:     clock,
	}
	require.NoError(t, run.Run(g))

	assert.Contains(t, out.String(), "PIPE IMPLEMENTATION")
	assert.Contains(t, out.String(), "Games:             25\n")

	data, err := os.ReadFile(summary)
	require.NoError(t, err)
	var s report.Summary
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, 25, s.Games)
	assert.Equal(t, seed, s.Seed)
	assert.Equal(t, "pipe", s.Transport)

	var history bytes.Buffer
	require.NoError(t, (&HistoryCmd{DB: db, Limit: 5, NoColor: true, out: &history}).Run(g))
	assert.Contains(t, history.String(), "2025-04-05")
	assert.Contains(t, history.String(), "pipe")
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	g := &Globals{Config: filepath.Join(t.TempDir(), "missing.hcl")}
	err := (&RunCmd{Transport: "carrier-pigeon"}).Run(g)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestHistoryWithoutDatabase(t *testing.T) {
	g := &Globals{Config: filepath.Join(t.TempDir(), "missing.hcl")}
	assert.Error(t, (&HistoryCmd{Limit: 5}).Run(g))
}
