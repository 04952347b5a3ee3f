// Package config loads the Serverless service definition (serverless.yml) into
// the explicit Service value the cljs bridge operates on.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
)

// DefaultConfigFile is the service definition file name the host uses.
const DefaultConfigFile = "serverless.yml"

// DefaultLein is the Leiningen executable used when none is configured.
const DefaultLein = "lein"

// DefaultWatchDir is the source directory watched when custom.cljs.watch is unset.
const DefaultWatchDir = "src"

type rawService struct {
	Service  yaml.Node `yaml:"service"`
	Provider struct {
		Stage string `yaml:"stage"`
	} `yaml:"provider"`
	Functions yaml.Node `yaml:"functions"`
	Custom    struct {
		Cljs CljsConfig `yaml:"cljs"`
	} `yaml:"custom"`
}

// Load reads the service definition at path. The service root is the directory
// containing the file. Function order follows the file.
func Load(path string) (*Service, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve config path").Fatal().
			WithContext("path", path).Build()
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").
			WithContext("path", abs).Build()
	}

	dir := filepath.Dir(abs)
	for _, f := range loadEnvFiles(dir) {
		slog.Debug("Loaded environment variables", "path", f)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").Fatal().
			WithContext("path", abs).Build()
	}

	svc, err := Parse(expandEnv(data))
	if err != nil {
		return nil, err
	}
	svc.Path = dir
	svc.ConfigFile = abs
	return svc, nil
}

// Parse decodes a service definition. Path and ConfigFile are left empty.
func Parse(data []byte) (*Service, error) {
	var raw rawService
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}

	name, err := serviceName(&raw.Service)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errors.ConfigError("service name is required").Build()
	}

	svc := &Service{
		Name:  name,
		Stage: raw.Provider.Stage,
		Cljs:  raw.Custom.Cljs,
	}
	if svc.Stage == "" {
		svc.Stage = DefaultStage
	}

	svc.Functions, err = decodeFunctions(&raw.Functions, svc.Name, svc.Stage)
	if err != nil {
		return nil, err
	}

	applyCljsDefaults(&svc.Cljs)
	return svc, nil
}

// serviceName accepts both `service: name` and `service: {name: name}`.
func serviceName(node *yaml.Node) (string, error) {
	switch node.Kind {
	case 0:
		return "", nil
	case yaml.ScalarNode:
		return node.Value, nil
	case yaml.MappingNode:
		var s struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&s); err != nil {
			return "", errors.WrapError(err, errors.CategoryConfig, "invalid service block").Fatal().Build()
		}
		return s.Name, nil
	default:
		return "", errors.ConfigError("service must be a string or a mapping").
			WithContext("line", node.Line).Build()
	}
}

// decodeFunctions walks the functions mapping node pair by pair so the result
// keeps the order of the file.
func decodeFunctions(node *yaml.Node, service, stage string) ([]Function, error) {
	if node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null") {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.ConfigError("functions must be a mapping").
			WithContext("line", node.Line).Build()
	}

	fns := make([]Function, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if seen[key] {
			return nil, errors.ValidationError("duplicate function").
				WithContext("function", key).
				WithContext("line", node.Content[i].Line).Build()
		}
		seen[key] = true

		var fn Function
		body := node.Content[i+1]
		if !(body.Kind == yaml.ScalarNode && body.Tag == "!!null") {
			if err := body.Decode(&fn); err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "invalid function definition").Fatal().
					WithContext("function", key).Build()
			}
		}
		fn.Key = key
		if fn.Name == "" {
			fn.Name = fmt.Sprintf("%s-%s-%s", service, stage, key)
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

func applyCljsDefaults(c *CljsConfig) {
	if v := os.Getenv(EnvLein); v != "" {
		c.Lein = v
	}
	if c.Lein == "" {
		c.Lein = DefaultLein
	}
	if len(c.Watch) == 0 {
		c.Watch = []string{DefaultWatchDir}
	}
	if v := os.Getenv(EnvHistory); v != "" {
		c.History = v
	}
}

// HistoryPath resolves custom.cljs.history against the service root.
func (s Service) HistoryPath() string {
	if s.Cljs.History == "" || filepath.IsAbs(s.Cljs.History) {
		return s.Cljs.History
	}
	return filepath.Join(s.Path, s.Cljs.History)
}

// WatchPaths resolves custom.cljs.watch against the service root.
func (s Service) WatchPaths() []string {
	out := make([]string, 0, len(s.Cljs.Watch))
	for _, p := range s.Cljs.Watch {
		if !filepath.IsAbs(p) {
			p = filepath.Join(s.Path, p)
		}
		out = append(out, p)
	}
	return out
}
