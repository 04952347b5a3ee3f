package commands

import (
	"fmt"

	"git.home.luguber.info/inful/slscljs/internal/munge"
)

// MangleCmd implements the 'mangle' command.
type MangleCmd struct {
	Identifiers []string `arg:"" help:"ClojureScript identifiers or namespaced symbols"`
	Handler     bool     `help:"Print the full handler reference (index.<munged>)"`
}

func (m *MangleCmd) Run(g *Global) error {
	for _, id := range m.Identifiers {
		out := munge.Munge(id)
		if m.Handler {
			out = munge.Handler(id)
		}
		if _, err := fmt.Fprintln(g.out(), out); err != nil {
			return err
		}
	}
	return nil
}
