package plugin

import (
	"context"
	stderrors "errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/slscljs/internal/config"
	"git.home.luguber.info/inful/slscljs/internal/edn"
	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
	"git.home.luguber.info/inful/slscljs/internal/git"
	"git.home.luguber.info/inful/slscljs/internal/history"
	"git.home.luguber.info/inful/slscljs/internal/lein"
	"git.home.luguber.info/inful/slscljs/internal/logfields"
	"git.home.luguber.info/inful/slscljs/internal/metrics"
	"git.home.luguber.info/inful/slscljs/internal/notify"
)

// Event is a host lifecycle event name.
type Event string

const (
	EventCreateDeploymentArtifacts Event = "after:deploy:createDeploymentArtifacts"
	EventPackageFunction           Event = "after:deploy:function:packageFunction"
)

// Events lists the lifecycle events the plugin binds, in registration order.
var Events = []Event{EventCreateDeploymentArtifacts, EventPackageFunction}

// HookFunc runs the build for one lifecycle event.
type HookFunc func(ctx context.Context) (*Result, error)

// Result describes a finished hook invocation. Service is the prepared
// service with rewritten handlers, Artifact is the zip reported back to the
// host and Revision is the git HEAD of the service root, when it is a checkout.
type Result struct {
	Event          Event
	InvocationID   string
	Service        config.Service
	Artifact       string
	Revision       string
	Descriptor     string
	Command        lein.Command
	FunctionsBuilt int
	Output         lein.Output
	Duration       time.Duration
}

// Plan is the side-effect free part of an invocation.
type Plan struct {
	Service        config.Service
	Descriptor     string
	Command        lein.Command
	FunctionsBuilt int
}

// Plugin runs the cljs build for a service.
type Plugin struct {
	service  config.Service
	opts     config.Options
	runner   lein.Runner
	recorder metrics.Recorder
	history  history.Store
	notifier notify.Notifier
	logger   *slog.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithRunner replaces the process runner (default lein.BinaryRunner).
func WithRunner(r lein.Runner) Option {
	return func(p *Plugin) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithRecorder enables metrics.
func WithRecorder(r metrics.Recorder) Option {
	return func(p *Plugin) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithHistory records every invocation in s.
func WithHistory(s history.Store) Option {
	return func(p *Plugin) {
		if s != nil {
			p.history = s
		}
	}
}

// WithNotifier publishes every finished invocation through n.
func WithNotifier(n notify.Notifier) Option {
	return func(p *Plugin) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a plugin for svc. The service value is copied; later changes to
// the caller's value do not affect the plugin.
func New(svc config.Service, opts config.Options, options ...Option) *Plugin {
	p := &Plugin{
		service:  svc.Clone(),
		opts:     opts,
		runner:   lein.BinaryRunner{},
		recorder: metrics.NoopRecorder{},
		history:  history.NoopStore{},
		notifier: notify.NoopNotifier{},
		logger:   slog.Default(),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Hooks returns the lifecycle bindings. Each call of a HookFunc performs a full
// prepare -> ensure_output_dir -> invoke_build sequence of its own.
func (p *Plugin) Hooks() map[Event]HookFunc {
	hooks := make(map[Event]HookFunc, len(Events))
	for _, ev := range Events {
		hooks[ev] = func(ctx context.Context) (*Result, error) {
			return p.Run(ctx, ev)
		}
	}
	return hooks
}

// Plan prepares the service and renders the build command without touching
// the filesystem or running anything.
func (p *Plugin) Plan() Plan {
	filter := p.opts.Resolve()
	prepared := Prepare(p.service, p.opts)
	descriptor := Descriptor(prepared.Functions, filter)
	rendered := edn.MustEmit(descriptor)
	return Plan{
		Service:        prepared,
		Descriptor:     rendered,
		Command:        lein.BuildCommand(p.service.Cljs.Lein, rendered, prepared.Artifact),
		FunctionsBuilt: len(descriptor),
	}
}

// Run executes the hook for event and returns the artifact to report to the host.
func (p *Plugin) Run(ctx context.Context, event Event) (*Result, error) {
	if !knownEvent(event) {
		return nil, errors.ValidationError("unsupported lifecycle event").
			WithContext("event", string(event)).Build()
	}

	start := time.Now()
	res := &Result{Event: event, InvocationID: uuid.NewString()}
	log := p.logger.With(logfields.InvocationID(res.InvocationID), logfields.Event(string(event)))
	if f := p.opts.Resolve(); f != "" {
		log = log.With(logfields.Function(f))
	}

	err := p.run(ctx, log, res)
	res.Duration = time.Since(start)

	outcome := metrics.ResultSuccess
	switch {
	case err != nil && ctx.Err() != nil:
		outcome = metrics.ResultCanceled
	case err != nil:
		outcome = metrics.ResultFailed
	}
	p.recorder.ObserveInvocationDuration(string(event), res.Duration)
	p.recorder.IncInvocationOutcome(string(event), outcome)
	p.report(ctx, log, res, err)

	if err != nil {
		log.Error("cljs build failed",
			logfields.Duration(res.Duration),
			slog.String("category", string(errors.GetCategory(err))),
			logfields.Error(err))
		return res, err
	}
	log.Info("Returning artifact path "+res.Artifact, logfields.Artifact(res.Artifact), logfields.Duration(res.Duration))
	return res, nil
}

func (p *Plugin) run(ctx context.Context, log *slog.Logger, res *Result) error {
	var plan Plan
	err := p.stage(ctx, log, StagePrepare, func() error {
		plan = p.Plan()
		res.Service = plan.Service
		res.Artifact = plan.Service.Artifact
		res.Descriptor = plan.Descriptor
		res.Command = plan.Command
		res.FunctionsBuilt = plan.FunctionsBuilt
		if f := p.opts.Resolve(); f != "" {
			if fn, ok := p.service.Function(f); !ok || !fn.HasCljs() {
				log.Warn("No cljs function matches "+f, logfields.Function(f))
			}
		}
		log.Info("Targeting "+res.Artifact, logfields.Artifact(res.Artifact), logfields.Count(plan.FunctionsBuilt))
		return nil
	})
	if err != nil {
		return err
	}
	p.recorder.SetFunctionsBuilt(plan.FunctionsBuilt)

	if err := p.stage(ctx, log, StageEnsureOutputDir, func() error {
		return EnsureOutputDir(ctx, res.Artifact)
	}); err != nil {
		return err
	}

	return p.stage(ctx, log, StageInvokeBuild, func() error {
		log.Info(`Executing "`+res.Command.String()+`"`, logfields.Command(res.Command.String()))
		out, err := p.runner.Run(ctx, res.Command)
		res.Output = out
		if err != nil {
			return classifyBuildError(err, res)
		}
		return nil
	})
}

// stage runs fn after checking for cancellation and records its duration and result.
func (p *Plugin) stage(ctx context.Context, log *slog.Logger, name StageName, fn func() error) error {
	if err := ctx.Err(); err != nil {
		p.recorder.IncStageResult(string(name), metrics.ResultCanceled)
		return errors.RuntimeError("invocation canceled").WithCause(err).
			WithContext("stage", string(name)).Build()
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	p.recorder.ObserveStageDuration(string(name), elapsed)
	log.Debug("Stage finished", logfields.Stage(string(name)), logfields.Duration(elapsed), logfields.Error(err))
	switch {
	case err == nil:
		p.recorder.IncStageResult(string(name), metrics.ResultSuccess)
	case ctx.Err() != nil:
		p.recorder.IncStageResult(string(name), metrics.ResultCanceled)
	default:
		p.recorder.IncStageResult(string(name), metrics.ResultFailed)
	}
	return err
}

func classifyBuildError(err error, res *Result) error {
	if stderrors.Is(err, lein.ErrBinaryNotFound) {
		return errors.ToolchainError("build tool not found").WithCause(err).
			WithContext("program", res.Command.Program).Build()
	}
	b := errors.BuildError("cljs-lambda build failed").WithCause(err).
		WithContext("artifact", res.Artifact).
		WithContext("command", res.Command.String())
	if out := res.Output.Combined(); out != "" {
		b = b.WithContext("output", out)
	}
	return b.Build()
}

// report writes the invocation to the history ledger and the notifier. Both
// are informational; a failure there never changes the hook outcome.
func (p *Plugin) report(ctx context.Context, log *slog.Logger, res *Result, runErr error) {
	rev, err := git.HeadRevision(p.service.Path)
	if err != nil {
		log.Debug("Source revision unavailable", logfields.Error(err))
	}
	res.Revision = rev

	entry := history.Entry{
		InvocationID:   res.InvocationID,
		Event:          string(res.Event),
		Service:        p.service.Name,
		Function:       p.opts.Resolve(),
		Artifact:       res.Artifact,
		Revision:       rev,
		Status:         history.StatusSuccess,
		FunctionsBuilt: res.FunctionsBuilt,
		StartedAt:      time.Now().Add(-res.Duration),
		Duration:       res.Duration,
	}
	if runErr != nil {
		entry.Status = history.StatusFailed
		entry.Error = runErr.Error()
	}

	ctx = context.WithoutCancel(ctx)
	if err := p.history.Append(ctx, entry); err != nil {
		log.Warn("Failed to record build history", logfields.Error(err))
	}
	if err := p.notifier.Publish(ctx, buildEvent(entry)); err != nil {
		log.Warn("Failed to publish build event", logfields.Error(err))
	}
}

func buildEvent(e history.Entry) notify.BuildEvent {
	return notify.BuildEvent{
		InvocationID:   e.InvocationID,
		Event:          e.Event,
		Service:        e.Service,
		Function:       e.Function,
		Artifact:       e.Artifact,
		Revision:       e.Revision,
		Status:         e.Status,
		Error:          e.Error,
		FunctionsBuilt: e.FunctionsBuilt,
		DurationMS:     e.Duration.Milliseconds(),
		Timestamp:      e.StartedAt.Add(e.Duration),
	}
}

func knownEvent(e Event) bool {
	return slices.Contains(Events, e)
}
