package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyInvocationID = "invocation_id"
	KeyEvent        = "event"
	KeyService      = "service"
	KeyFunction     = "function"
	KeyArtifact     = "artifact"
	KeyStage        = "stage"
	KeyCommand      = "command"
	KeyPath         = "path"
	KeyDurationMS   = "duration_ms"
	KeyCount        = "count"
	KeyError        = "error"
)

func InvocationID(id string) slog.Attr { return slog.String(KeyInvocationID, id) }
func Event(e string) slog.Attr         { return slog.String(KeyEvent, e) }
func Service(s string) slog.Attr       { return slog.String(KeyService, s) }
func Function(f string) slog.Attr      { return slog.String(KeyFunction, f) }
func Artifact(p string) slog.Attr      { return slog.String(KeyArtifact, p) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Command(c string) slog.Attr       { return slog.String(KeyCommand, c) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }

// Duration reports d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
