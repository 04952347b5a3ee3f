package commands

import (
	"context"

	"git.home.luguber.info/inful/slscljs/internal/config"
	"git.home.luguber.info/inful/slscljs/internal/plugin"
)

// HookCmd implements the 'hook' command, the entry point the host shim calls.
type HookCmd struct {
	Event string `arg:"" help:"Lifecycle event" enum:"after:deploy:createDeploymentArtifacts,after:deploy:function:packageFunction"`
	FunctionFlags
}

func (h *HookCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runHook(ctx, g, root, plugin.Event(h.Event), h.options())
}

// PackageCmd implements the 'package' command.
type PackageCmd struct {
	FunctionFlags
}

func (p *PackageCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runHook(ctx, g, root, plugin.EventCreateDeploymentArtifacts, p.options())
}

// PackageFunctionCmd implements the 'package-function' command.
type PackageFunctionCmd struct {
	Function string `short:"f" required:"" help:"Function key to build"`
}

func (p *PackageFunctionCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	return runHook(ctx, g, root, plugin.EventPackageFunction, config.Options{F: p.Function})
}
