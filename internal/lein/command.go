// Package lein is the process boundary to Leiningen and the cljs-lambda plugin.
//
// Commands are structured (program + argv) and executed without a shell, so the
// EDN descriptor never needs shell quoting. Command.String renders the familiar
// shell form for logs.
package lein

import (
	"github.com/kballard/go-shellquote"
)

// Command is a single external process invocation.
type Command struct {
	Program string
	Args    []string
	// Dir is the working directory; empty means the current directory.
	Dir string
}

// BuildCommand returns the cljs-lambda build invocation that compiles the
// functions described by descriptor into a zip at output:
//
//	lein update-in :cljs-lambda assoc :functions '<descriptor>' -- cljs-lambda build :output <output> :quiet
func BuildCommand(program, descriptor, output string) Command {
	if program == "" {
		program = "lein"
	}
	return Command{
		Program: program,
		Args: []string{
			"update-in", ":cljs-lambda", "assoc", ":functions", descriptor,
			"--",
			"cljs-lambda", "build", ":output", output, ":quiet",
		},
	}
}

// String renders the command as a POSIX shell line for logs.
func (c Command) String() string {
	return shellquote.Join(append([]string{c.Program}, c.Args...)...)
}
