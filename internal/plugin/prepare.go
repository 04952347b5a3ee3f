package plugin

import (
	"path/filepath"

	"git.home.luguber.info/inful/slscljs/internal/config"
	"git.home.luguber.info/inful/slscljs/internal/edn"
	"git.home.luguber.info/inful/slscljs/internal/munge"
)

// OutputDirName is the host's packaging directory below the service root.
const OutputDirName = ".serverless"

// BasePath returns <servicePath>/.serverless/<name>.
func BasePath(servicePath, name string) string {
	return filepath.Join(servicePath, OutputDirName, name)
}

// ArtifactPath returns <servicePath>/.serverless/<name>.zip, the single zip
// every selected function is packaged into.
func ArtifactPath(servicePath, name string) string {
	return BasePath(servicePath, name) + ".zip"
}

// artifactName is the function filter when one is given, otherwise the service name.
func artifactName(svc config.Service, filter string) string {
	if filter != "" {
		return filter
	}
	return svc.Name
}

// Prepare returns a copy of svc with BasePath and Artifact set. Every function
// with a cljs symbol gets its handler rewritten to the munged export and its
// package artifact pointed at the shared zip. Functions without a cljs symbol
// are copied unchanged. svc itself is not modified.
func Prepare(svc config.Service, opts config.Options) config.Service {
	out := svc.Clone()
	out.BasePath = BasePath(svc.Path, artifactName(svc, opts.Resolve()))
	out.Artifact = out.BasePath + ".zip"

	for i := range out.Functions {
		fn := &out.Functions[i]
		if !fn.HasCljs() {
			continue
		}
		fn.Handler = munge.Handler(fn.Cljs)
		if fn.Package == nil {
			fn.Package = &config.Package{}
		}
		fn.Package.Artifact = out.Artifact
	}
	return out
}

// Descriptor lists the functions cljs-lambda should compile, in configuration
// order: one {:name "<name>" :invoke <symbol>} record per function with a cljs
// symbol, restricted to the function keyed filter when filter is non-empty.
func Descriptor(fns []config.Function, filter string) edn.Vector {
	out := edn.Vector{}
	for _, fn := range fns {
		if !fn.HasCljs() {
			continue
		}
		if filter != "" && fn.Key != filter {
			continue
		}
		out = append(out, edn.Map{
			{Key: "name", Value: edn.Quote(fn.Name)},
			{Key: "invoke", Value: fn.Cljs},
		})
	}
	return out
}
