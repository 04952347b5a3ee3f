package commands

import (
	"fmt"

	"git.home.luguber.info/inful/slscljs/internal/plugin"
)

// DescriptorCmd implements the 'descriptor' command: a dry run that prints
// what a hook would compile and execute.
type DescriptorCmd struct {
	FunctionFlags
	Command bool `help:"Also print the build command line"`
}

func (d *DescriptorCmd) Run(g *Global, root *CLI) error {
	svc, err := root.LoadService()
	if err != nil {
		return err
	}
	plan := plugin.New(*svc, d.options()).Plan()

	w := g.out()
	if _, err := fmt.Fprintln(w, plan.Descriptor); err != nil {
		return err
	}
	if d.Command {
		if _, err := fmt.Fprintln(w, plan.Command.String()); err != nil {
			return err
		}
	}
	return nil
}
