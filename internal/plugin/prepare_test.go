package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/slscljs/internal/config"
	"git.home.luguber.info/inful/slscljs/internal/edn"
	"git.home.luguber.info/inful/slscljs/internal/munge"
)

func sampleService() config.Service {
	return config.Service{
		Name:  "myservice",
		Stage: "dev",
		Path:  "/svc",
		Functions: []config.Function{
			{Key: "foo", Name: "myservice-dev-foo", Cljs: "my-fn/core!"},
			{Key: "bar", Name: "myservice-dev-bar"},
		},
		Cljs: config.CljsConfig{Lein: "lein"},
	}
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t, "/svc/.serverless/myservice.zip", ArtifactPath("/svc", "myservice"))
	assert.Equal(t, "/svc/.serverless/myservice", BasePath("/svc", "myservice"))
	assert.Equal(t, "/svc/.serverless/foo.zip", ArtifactPath("/svc/", "foo"))
}

func TestPrepare_RewritesCljsFunctions(t *testing.T) {
	svc := sampleService()

	prepared := Prepare(svc, config.Options{})

	assert.Equal(t, "/svc/.serverless/myservice.zip", prepared.Artifact)
	assert.Equal(t, "/svc/.serverless/myservice", prepared.BasePath)

	foo, ok := prepared.Function("foo")
	require.True(t, ok)
	assert.Equal(t, "index."+munge.Munge("my-fn/core!"), foo.Handler)
	require.NotNil(t, foo.Package)
	assert.Equal(t, prepared.Artifact, foo.Package.Artifact)

	bar, ok := prepared.Function("bar")
	require.True(t, ok)
	origBar, _ := svc.Function("bar")
	assert.Equal(t, origBar, bar)
	assert.Empty(t, bar.Handler)
	assert.Nil(t, bar.Package)
}

func TestPrepare_DoesNotMutateInput(t *testing.T) {
	svc := sampleService()
	svc.Functions[0].Package = &config.Package{Extra: map[string]any{"individually": true}}

	prepared := Prepare(svc, config.Options{})

	assert.Empty(t, svc.Artifact)
	assert.Empty(t, svc.Functions[0].Handler)
	assert.Empty(t, svc.Functions[0].Package.Artifact)
	assert.Equal(t, true, prepared.Functions[0].Package.Extra["individually"])
	assert.Equal(t, prepared.Artifact, prepared.Functions[0].Package.Artifact)
}

func TestPrepare_FunctionFilterNamesArtifact(t *testing.T) {
	prepared := Prepare(sampleService(), config.Options{F: "foo", Function: "ignored"})
	assert.Equal(t, "/svc/.serverless/foo.zip", prepared.Artifact)
}

func TestPrepare_AllCljsFunctionsShareArtifact(t *testing.T) {
	svc := sampleService()
	svc.Functions = append(svc.Functions, config.Function{Key: "baz", Name: "myservice-dev-baz", Cljs: "ns/baz", Handler: "stale"})

	prepared := Prepare(svc, config.Options{Function: "foo"})

	for _, fn := range prepared.Functions {
		if !fn.HasCljs() {
			continue
		}
		assert.Equal(t, munge.Handler(fn.Cljs), fn.Handler)
		assert.Equal(t, prepared.Artifact, fn.Package.Artifact)
	}
}

func TestDescriptor(t *testing.T) {
	svc := sampleService()
	svc.Functions = append(svc.Functions, config.Function{Key: "baz", Name: "myservice-dev-baz", Cljs: "ns/baz"})

	got := edn.MustEmit(Descriptor(svc.Functions, ""))
	assert.Equal(t, `[{:name "myservice-dev-foo" :invoke my-fn/core!} {:name "myservice-dev-baz" :invoke ns/baz}]`, got)

	got = edn.MustEmit(Descriptor(svc.Functions, "baz"))
	assert.Equal(t, `[{:name "myservice-dev-baz" :invoke ns/baz}]`, got)
}

func TestDescriptor_FilterWithoutMatchIsEmpty(t *testing.T) {
	fns := []config.Function{{Key: "bar", Name: "svc-dev-bar", Cljs: "svc.core/bar"}}

	assert.Equal(t, "[]", edn.MustEmit(Descriptor(fns, "foo")))
	assert.Equal(t, "[]", edn.MustEmit(Descriptor(nil, "")))
}

func TestNewManifest_ListsPreparedCljsFunctions(t *testing.T) {
	prepared := Prepare(sampleService(), config.Options{})

	m := NewManifest(prepared)

	assert.Equal(t, "/svc/.serverless/myservice.zip", m.Artifact)
	require.Contains(t, m.Functions, "foo")
	assert.Equal(t, "index.my_fn_SLASH_core_BANG_", m.Functions["foo"].Handler)
	assert.Equal(t, "myservice-dev-foo", m.Functions["foo"].Name)
	assert.Equal(t, prepared.Artifact, m.Functions["foo"].Package.Artifact)
	assert.NotContains(t, m.Functions, "bar")
}

func TestNewManifest_NoCljsFunctions(t *testing.T) {
	m := NewManifest(Prepare(config.Service{Name: "svc", Path: "/svc"}, config.Options{}))
	assert.NotNil(t, m.Functions)
	assert.Empty(t, m.Functions)
}
