package config

import "maps"

// DefaultStage is the stage the Serverless host assumes when provider.stage is unset.
const DefaultStage = "dev"

// Service is the subset of a Serverless service definition the cljs bridge reads
// and rewrites. Path is the service root (the directory holding serverless.yml).
type Service struct {
	Name       string
	Stage      string
	Path       string
	ConfigFile string
	Functions  []Function
	Cljs       CljsConfig

	// Set by plugin.Prepare.
	BasePath string
	Artifact string
}

// Function is one entry of the `functions:` mapping. Key is the mapping key the
// operator passes to `-f`; Name is the deployed function name.
type Function struct {
	Key     string         `yaml:"-"`
	Name    string         `yaml:"name,omitempty"`
	Cljs    string         `yaml:"cljs,omitempty"`
	Handler string         `yaml:"handler,omitempty"`
	Package *Package       `yaml:"package,omitempty"`
	Extra   map[string]any `yaml:",inline"`
}

// Package holds the per-function packaging settings.
type Package struct {
	Artifact string         `yaml:"artifact,omitempty"`
	Extra    map[string]any `yaml:",inline"`
}

// CljsConfig is read from `custom.cljs`.
type CljsConfig struct {
	// Lein is the Leiningen executable.
	Lein string `yaml:"lein,omitempty"`
	// Watch lists source directories (relative to the service root) for `slscljs watch`.
	Watch []string `yaml:"watch,omitempty"`
	// History is an optional sqlite file recording every build invocation.
	History string `yaml:"history,omitempty"`
}

// HasCljs reports whether the function is compiled from a cljs symbol.
func (f Function) HasCljs() bool {
	return f.Cljs != ""
}

// Clone returns a deep copy of the function.
func (f Function) Clone() Function {
	out := f
	if f.Package != nil {
		p := *f.Package
		p.Extra = maps.Clone(f.Package.Extra)
		out.Package = &p
	}
	out.Extra = maps.Clone(f.Extra)
	return out
}

// Clone returns a deep copy of the service, including every function entry.
func (s Service) Clone() Service {
	out := s
	if s.Functions != nil {
		out.Functions = make([]Function, len(s.Functions))
		for i, fn := range s.Functions {
			out.Functions[i] = fn.Clone()
		}
	}
	out.Cljs.Watch = append([]string(nil), s.Cljs.Watch...)
	return out
}

// Function returns the entry stored under key.
func (s Service) Function(key string) (Function, bool) {
	for _, fn := range s.Functions {
		if fn.Key == key {
			return fn, true
		}
	}
	return Function{}, false
}

// Options are the host's command options relevant to the bridge.
type Options struct {
	// Function is the long `--function` option.
	Function string
	// F is the short `-f` option.
	F string
}

// Resolve returns the single-function filter. The short option wins when both are set.
func (o Options) Resolve() string {
	if o.F != "" {
		return o.F
	}
	return o.Function
}
