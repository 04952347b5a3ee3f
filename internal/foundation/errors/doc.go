// Package errors provides the classified error type used across slscljs.
//
// Every failure that reaches the command line carries a category (what broke),
// a severity and an optional bag of context values. The CLI adapter turns the
// category into a process exit code so the Serverless host can tell a broken
// serverless.yml apart from a failed Leiningen build.
//
// Example usage:
//
//	err := errors.BuildError("cljs-lambda build failed").WithCause(runErr).
//		WithContext("artifact", artifact).
//		WithContext("output", stderr).
//		Build()
package errors
