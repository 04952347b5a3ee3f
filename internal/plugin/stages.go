package plugin

import (
	"context"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/slscljs/internal/foundation/errors"
)

// StageName identifies one step of a hook invocation.
type StageName string

const (
	StagePrepare         StageName = "prepare"
	StageEnsureOutputDir StageName = "ensure_output_dir"
	StageInvokeBuild     StageName = "invoke_build"
)

// EnsureOutputDir creates the directory holding artifact. It succeeds when the
// directory already exists.
func EnsureOutputDir(_ context.Context, artifact string) error {
	dir := filepath.Dir(artifact)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileSystemError("create output directory").WithCause(err).
			WithContext("path", dir).Build()
	}
	return nil
}
