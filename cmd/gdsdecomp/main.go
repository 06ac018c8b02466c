// Command gdsdecomp is a thin demonstration front-end over package
// gdscript. Its subcommand registration (google/subcommands) and
// flag-per-command idiom is grounded on the teacher's cmd_emit_bytecode.go,
// cmd_run.go, and cmd_repl_compiled.go; the interactive "explore"
// subcommand's line editor is grounded on the same REPL idiom, with
// github.com/chzyer/readline standing in for the teacher's bare
// bufio.Scanner loop to get history and line editing for free.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&decompileCmd{}, "")
	subcommands.Register(&compileCmd{}, "")
	subcommands.Register(&identifyCmd{}, "")
	subcommands.Register(&listRevisionsCmd{}, "")
	subcommands.Register(&exploreCmd{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
