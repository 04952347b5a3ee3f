package commands

import (
	"context"
	"time"

	"git.home.luguber.info/inful/slscljs/internal/config"
	"git.home.luguber.info/inful/slscljs/internal/plugin"
	"git.home.luguber.info/inful/slscljs/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce  time.Duration `help:"Quiet period before a rebuild starts" default:"300ms"`
	Interval  time.Duration `help:"Also rebuild periodically (for mounts without file events); 0 disables"`
	NoInitial bool          `name:"no-initial" help:"Skip the build at startup"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	svc, err := root.LoadService()
	if err != nil {
		return err
	}
	s := newSession(g, root, svc, config.Options{})
	defer s.close()

	build := func(ctx context.Context) error {
		_, err := s.plugin.Run(ctx, plugin.EventCreateDeploymentArtifacts)
		return err
	}
	opts := []watch.Option{watch.WithDebounce(w.Debounce)}
	if w.Interval > 0 {
		opts = append(opts, watch.WithInterval(w.Interval))
	}
	if !w.NoInitial {
		opts = append(opts, watch.WithInitialBuild())
	}
	return watch.New(svc.WatchPaths(), build, opts...).Run(ctx)
}
