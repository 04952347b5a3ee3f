package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
	"git.home.luguber.info/inful/slscljs/internal/git"
	"git.home.luguber.info/inful/slscljs/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of entries to show" default:"20"`
}

func (h *HistoryCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	svc, err := root.LoadService()
	if err != nil {
		return err
	}
	path := historyPath(root, svc)
	if path == "" {
		return errors.ConfigError("no history ledger configured").
			WithContext("hint", "set --history-db or custom.cljs.history").Build()
	}
	store, err := history.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(ctx, h.Limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(g.out(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tEVENT\tFUNCTION\tREVISION\tSTATUS\tDURATION\tARTIFACT")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.StartedAt.Local().Format(time.DateTime), e.Event, orDash(e.Function), orDash(git.Short(e.Revision)), e.Status,
			e.Duration.Round(time.Millisecond), e.Artifact)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
