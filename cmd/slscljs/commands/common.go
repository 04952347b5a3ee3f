package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/slscljs/internal/config"
	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
	"git.home.luguber.info/inful/slscljs/internal/history"
	"git.home.luguber.info/inful/slscljs/internal/lein"
	"git.home.luguber.info/inful/slscljs/internal/logfields"
	"git.home.luguber.info/inful/slscljs/internal/metrics"
	"git.home.luguber.info/inful/slscljs/internal/notify"
	"git.home.luguber.info/inful/slscljs/internal/plugin"
)

// Global carries process-level collaborators shared by every command.
type Global struct {
	// Out receives command results (hook manifests, descriptors). Logs go to stderr.
	Out io.Writer
	// Runner overrides the lein process runner; nil runs the real binary.
	Runner lein.Runner
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Service configuration file" default:"serverless.yml"`
	ServicePath string           `name:"service-path" help:"Service root; a relative --config is resolved against it"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	LogFormat   string           `name:"log-format" help:"Log output format (text, json)" default:"text" enum:"text,json"`
	MetricsFile string           `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the run"`
	HistoryDB   string           `name:"history-db" help:"SQLite build history ledger (overrides custom.cljs.history)"`
	NATSURL     string           `name:"nats-url" env:"SLSCLJS_NATS_URL" help:"Publish build events to this NATS server"`
	NATSSubject string           `name:"nats-subject" help:"Subject for build events" default:"slscljs.builds"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`

	Hook            HookCmd            `cmd:"" help:"Run the build bound to a host lifecycle event"`
	Package         PackageCmd         `cmd:"" help:"Build the service artifact (after:deploy:createDeploymentArtifacts)"`
	PackageFunction PackageFunctionCmd `cmd:"" name:"package-function" help:"Build a single function (after:deploy:function:packageFunction)"`
	Mangle          MangleCmd          `cmd:"" help:"Print the munged form of ClojureScript identifiers"`
	Descriptor      DescriptorCmd      `cmd:"" help:"Print the build descriptor and command without running them"`
	Watch           WatchCmd           `cmd:"" help:"Rebuild the service artifact when sources change"`
	History         HistoryCmd         `cmd:"" help:"List recent hook invocations from the history ledger"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slogLevel(config.NormalizeLogLevel(os.Getenv(config.EnvLogLevel)))
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if config.NormalizeLogFormat(c.LogFormat) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ConfigPath resolves --config against --service-path.
func (c *CLI) ConfigPath() string {
	if c.ServicePath == "" || filepath.IsAbs(c.Config) {
		return c.Config
	}
	return filepath.Join(c.ServicePath, c.Config)
}

// LoadService reads the service definition selected by the global flags.
func (c *CLI) LoadService() (*config.Service, error) {
	return config.Load(c.ConfigPath())
}

// FunctionFlags are the host's function selection options. The host passes
// `-f` and `--function` through unchanged; when both arrive, `-f` wins.
type FunctionFlags struct {
	F        string `short:"f" name:"f-short" hidden:"" help:"Function key (short form)"`
	Function string `name:"function" help:"Function key to build"`
}

func (f FunctionFlags) options() config.Options {
	return config.Options{F: f.F, Function: f.Function}
}

// session wires a plugin to the metrics registry, history ledger and notifier
// chosen by the global flags. close flushes metrics and releases the rest.
type session struct {
	plugin   *plugin.Plugin
	registry *prom.Registry
	store    history.Store
	notifier notify.Notifier
	metrics  string
}

func newSession(g *Global, root *CLI, svc *config.Service, opts config.Options) *session {
	s := &session{
		registry: prom.NewRegistry(),
		store:    openHistory(root, svc),
		notifier: openNotifier(root),
		metrics:  root.MetricsFile,
	}
	options := []plugin.Option{
		plugin.WithHistory(s.store),
		plugin.WithNotifier(s.notifier),
		plugin.WithLogger(slog.Default().With(logfields.Service(svc.Name))),
	}
	if s.metrics != "" {
		options = append(options, plugin.WithRecorder(metrics.NewPrometheusRecorder(s.registry)))
	}
	if g != nil && g.Runner != nil {
		options = append(options, plugin.WithRunner(g.Runner))
	}
	s.plugin = plugin.New(*svc, opts, options...)
	return s
}

func (s *session) close() {
	if s.metrics != "" {
		if err := metrics.WriteTextfile(s.metrics, s.registry); err != nil {
			slog.Warn("Failed to write metrics", logfields.Path(s.metrics), logfields.Error(err))
		}
	}
	if err := s.store.Close(); err != nil {
		slog.Warn("Failed to close history ledger", logfields.Error(err))
	}
	_ = s.notifier.Close()
}

// openNotifier connects to --nats-url. Like the ledger, notification is
// optional and an unreachable server only disables it.
func openNotifier(root *CLI) notify.Notifier {
	if root.NATSURL == "" {
		return notify.NoopNotifier{}
	}
	n, err := notify.NewNATSNotifier(root.NATSURL, root.NATSSubject)
	if err != nil {
		slog.Warn("Build notifications disabled", logfields.Error(err))
		return notify.NoopNotifier{}
	}
	return n
}

// openHistory opens the ledger configured by --history-db or custom.cljs.history.
// The ledger is optional: when it cannot be opened, hooks run without it.
func openHistory(root *CLI, svc *config.Service) history.Store {
	path := historyPath(root, svc)
	if path == "" {
		return history.NoopStore{}
	}
	store, err := history.OpenSQLite(path)
	if err != nil {
		slog.Warn("Build history disabled", logfields.Path(path), logfields.Error(err))
		return history.NoopStore{}
	}
	return store
}

func historyPath(root *CLI, svc *config.Service) string {
	if root.HistoryDB != "" {
		return root.HistoryDB
	}
	return svc.HistoryPath()
}

// runHook loads the service and runs the hook for event. On success it prints
// the prepared manifest as JSON so the host can pick up the artifact and the
// rewritten handlers.
func runHook(ctx context.Context, g *Global, root *CLI, event plugin.Event, opts config.Options) error {
	svc, err := root.LoadService()
	if err != nil {
		return err
	}
	s := newSession(g, root, svc, opts)
	defer s.close()

	hook, ok := s.plugin.Hooks()[event]
	if !ok {
		return errors.ValidationError("unsupported lifecycle event").
			WithContext("event", string(event)).Build()
	}
	res, err := hook(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(g.out())
	enc.SetIndent("", "  ")
	return enc.Encode(plugin.NewManifest(res.Service))
}
