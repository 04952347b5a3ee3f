// Package plugin wires the cljs build into the Serverless packaging lifecycle.
//
// One hook invocation runs three ordered stages:
//
//	prepare            rewrite cljs handlers, compute the shared artifact path
//	ensure_output_dir  mkdir -p <service>/.serverless
//	invoke_build       lein ... cljs-lambda build :output <artifact>
//
// Prepare is pure: it takes a config.Service value and returns a rewritten copy,
// so the two lifecycle hooks never share mutable state. Any stage error aborts
// the invocation and is returned to the host unchanged; nothing is retried or
// cleaned up.
package plugin
