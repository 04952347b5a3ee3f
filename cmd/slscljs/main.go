package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/slscljs/cmd/slscljs/commands"
	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
	"git.home.luguber.info/inful/slscljs/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli commands.CLI
	parser, err := kong.New(&cli,
		kong.Name("slscljs"),
		kong.Description("Build ClojureScript Lambda functions from Serverless lifecycle hooks"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		return errors.NewCLIErrorAdapter(false, slog.Default()).Report(
			errors.InternalError("build command line parser").WithCause(err).Build())
	}
	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	if err := kctx.Run(&commands.Global{Out: os.Stdout}, &cli); err != nil {
		return errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).Report(err)
	}
	return 0
}
