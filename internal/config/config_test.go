package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
)

const exampleYAML = `
service: example
provider:
  name: aws
  runtime: nodejs18.x
  stage: prod
functions:
  zeta:
    cljs: example.core/zeta
    memorySize: 256
  alpha:
    name: custom-alpha
    cljs: example.core/alpha!
    package:
      individually: true
  plain:
    handler: handler.plain
  empty:
custom:
  cljs:
    watch: [src, env/prod]
    history: .serverless/history.db
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_PreservesFunctionOrder(t *testing.T) {
	path := writeConfig(t, exampleYAML)

	svc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "example", svc.Name)
	assert.Equal(t, "prod", svc.Stage)
	assert.Equal(t, filepath.Dir(path), svc.Path)
	assert.Equal(t, path, svc.ConfigFile)

	keys := make([]string, 0, len(svc.Functions))
	for _, fn := range svc.Functions {
		keys = append(keys, fn.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "plain", "empty"}, keys)
}

func TestLoad_FunctionFields(t *testing.T) {
	svc, err := Load(writeConfig(t, exampleYAML))
	require.NoError(t, err)

	zeta, ok := svc.Function("zeta")
	require.True(t, ok)
	assert.Equal(t, "example-prod-zeta", zeta.Name)
	assert.Equal(t, "example.core/zeta", zeta.Cljs)
	assert.Nil(t, zeta.Package)
	assert.Equal(t, 256, zeta.Extra["memorySize"])

	alpha, ok := svc.Function("alpha")
	require.True(t, ok)
	assert.Equal(t, "custom-alpha", alpha.Name)
	require.NotNil(t, alpha.Package)
	assert.Equal(t, true, alpha.Package.Extra["individually"])

	plain, ok := svc.Function("plain")
	require.True(t, ok)
	assert.False(t, plain.HasCljs())
	assert.Equal(t, "handler.plain", plain.Handler)

	empty, ok := svc.Function("empty")
	require.True(t, ok)
	assert.Equal(t, "example-prod-empty", empty.Name)
}

func TestLoad_CljsSettings(t *testing.T) {
	t.Setenv(EnvLein, "")
	t.Setenv(EnvHistory, "")
	svc, err := Load(writeConfig(t, exampleYAML))
	require.NoError(t, err)

	assert.Equal(t, DefaultLein, svc.Cljs.Lein)
	assert.Equal(t, []string{filepath.Join(svc.Path, "src"), filepath.Join(svc.Path, "env/prod")}, svc.WatchPaths())
	assert.Equal(t, filepath.Join(svc.Path, ".serverless/history.db"), svc.HistoryPath())
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv(EnvLein, "")
	t.Setenv(EnvHistory, "")
	svc, err := Parse([]byte("service:\n  name: mapped\nfunctions:\n  one:\n    cljs: a/b\n"))
	require.NoError(t, err)

	assert.Equal(t, "mapped", svc.Name)
	assert.Equal(t, DefaultStage, svc.Stage)
	assert.Equal(t, "mapped-dev-one", svc.Functions[0].Name)
	assert.Equal(t, []string{DefaultWatchDir}, svc.Cljs.Watch)
	assert.Empty(t, svc.HistoryPath())
}

func TestParse_LeinFromEnvironment(t *testing.T) {
	t.Setenv(EnvLein, "/opt/lein/bin/lein")
	svc, err := Parse([]byte("service: s\n"))
	require.NoError(t, err)
	assert.Equal(t, "/opt/lein/bin/lein", svc.Cljs.Lein)
	assert.Empty(t, svc.Functions)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		category errors.ErrorCategory
	}{
		{"missing service", "functions: {}\n", errors.CategoryConfig},
		{"bad yaml", "service: [\n", errors.CategoryConfig},
		{"functions not a mapping", "service: s\nfunctions: [a, b]\n", errors.CategoryConfig},
		{"service as list", "service: [a]\n", errors.CategoryConfig},
		{"duplicate function", "service: s\nfunctions:\n  a: {}\n  a: {}\n", errors.CategoryValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.HasCategory(err, tt.category), "got %v", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SLSCLJS_TEST_NS", "from-env")
	path := writeConfig(t, "service: ${SLSCLJS_TEST_NS}\nprovider:\n  stage: ${opt:stage, 'dev'}\nfunctions:\n  f:\n    cljs: ${SLSCLJS_TEST_UNSET}/fn\n")

	svc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", svc.Name)
	assert.Equal(t, "${opt:stage, 'dev'}", svc.Stage)
	assert.Equal(t, "${SLSCLJS_TEST_UNSET}/fn", svc.Functions[0].Cljs)
}

func TestLoad_BareDollarIsLiteral(t *testing.T) {
	t.Setenv("SLSCLJS_TEST_NS", "from-env")
	path := writeConfig(t, "service: $SLSCLJS_TEST_NS-svc\nfunctions:\n  f:\n    cljs: my.ns/$SLSCLJS_TEST_NS\n")

	svc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "$SLSCLJS_TEST_NS-svc", svc.Name)
	assert.Equal(t, "my.ns/$SLSCLJS_TEST_NS", svc.Functions[0].Cljs)
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	t.Setenv("SLSCLJS_TEST_KEEP", "process")
	path := writeConfig(t, "service: ${SLSCLJS_TEST_KEEP}-${SLSCLJS_TEST_DOTENV}\n")
	dir := filepath.Dir(path)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SLSCLJS_TEST_KEEP=dotenv\nSLSCLJS_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SLSCLJS_TEST_DOTENV") })

	svc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "process-loaded", svc.Name)
}

func TestService_CloneIsDeep(t *testing.T) {
	svc, err := Parse([]byte(exampleYAML))
	require.NoError(t, err)

	c := svc.Clone()
	c.Functions[1].Package.Artifact = "changed"
	c.Functions[0].Extra["memorySize"] = 1
	c.Cljs.Watch[0] = "other"

	assert.Empty(t, svc.Functions[1].Package.Artifact)
	assert.Equal(t, 256, svc.Functions[0].Extra["memorySize"])
	assert.Equal(t, "src", svc.Cljs.Watch[0])
}

func TestOptions_Resolve(t *testing.T) {
	assert.Equal(t, "", Options{}.Resolve())
	assert.Equal(t, "long", Options{Function: "long"}.Resolve())
	assert.Equal(t, "short", Options{F: "short"}.Resolve())
	assert.Equal(t, "short", Options{F: "short", Function: "long"}.Resolve())
}

func TestNormalizeLogSettings(t *testing.T) {
	assert.Equal(t, LogLevelDebug, NormalizeLogLevel("DEBUG"))
	assert.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	assert.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
	assert.Equal(t, LogFormatJSON, NormalizeLogFormat(" json "))
	assert.Equal(t, LogFormatText, NormalizeLogFormat(""))
}
