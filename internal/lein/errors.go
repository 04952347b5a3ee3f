package lein

import "errors"

var (
	// ErrBinaryNotFound indicates the build tool was not found on PATH.
	ErrBinaryNotFound = errors.New("lein binary not found")
	// ErrExecutionFailed indicates the build tool exited with a non-zero status.
	ErrExecutionFailed = errors.New("lein execution failed")
)
