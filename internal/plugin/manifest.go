package plugin

import "git.home.luguber.info/inful/slscljs/internal/config"

// Manifest is the prepared service as handed back to the host: the shared
// artifact plus the rewritten handler and package entry of every cljs function.
type Manifest struct {
	Artifact  string                      `json:"artifact"`
	Functions map[string]FunctionManifest `json:"functions"`
}

// FunctionManifest is one prepared function, keyed by its `functions:` key.
type FunctionManifest struct {
	Name    string          `json:"name,omitempty"`
	Handler string          `json:"handler"`
	Package PackageManifest `json:"package"`
}

type PackageManifest struct {
	Artifact string `json:"artifact"`
}

// NewManifest builds the manifest for a service returned by Prepare. Functions
// without a cljs symbol are left to the host and omitted.
func NewManifest(svc config.Service) Manifest {
	m := Manifest{
		Artifact:  svc.Artifact,
		Functions: make(map[string]FunctionManifest),
	}
	for _, fn := range svc.Functions {
		if !fn.HasCljs() {
			continue
		}
		fm := FunctionManifest{Name: fn.Name, Handler: fn.Handler}
		if fn.Package != nil {
			fm.Package.Artifact = fn.Package.Artifact
		}
		m.Functions[fn.Key] = fm
	}
	return m
}
