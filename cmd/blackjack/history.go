package main

import (
	"context"
	"errors"
	"io"

	"github.com/lox/blackjack-ipc/internal/report"
	"github.com/lox/blackjack-ipc/internal/store"
)

// HistoryCmd lists recorded sessions
type HistoryCmd struct {
	DB      string `kong:"name='db',help='SQLite file or postgres:// URL to read (defaults to results.database from config)'"`
	Limit   int    `kong:"default='20',help='Maximum number of sessions to list'"`
	NoColor bool   `kong:"help='Disable coloured output'"`

	out io.Writer `kong:"-"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	path := c.DB
	if path == "" {
		path = cfg.Results.Database
	}
	if path == "" {
		return errors.New("no results database configured, set --db or results.database")
	}

	ctx := context.Background()
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}

	out := c.out
	if out == nil {
		out = stdout
	}
	return report.NewRenderer(out, plainOutput(out, c.NoColor)).History(runs)
}
