package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/nikitalita/gdsdecomp-sub001/gdscript"
)

type exploreCmd struct{}

func (*exploreCmd) Name() string     { return "explore" }
func (*exploreCmd) Synopsis() string { return "Interactive REPL over the decompiler/compiler engine" }
func (*exploreCmd) Usage() string {
	return `explore:
  Start an interactive session. Commands:
    decompile <file> [commit]   reconstruct source from a buffer
    compile <file> <commit>     compile source text under a revision
    identify <file>             rank candidate revisions
    revisions                   list every registered revision
    exit                        quit
`
}

func (*exploreCmd) SetFlags(f *flag.FlagSet) {}

func (*exploreCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gdsdecomp> ",
		HistoryFile:     "/tmp/gdsdecomp_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	e := gdscript.New()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			return subcommands.ExitSuccess
		case "revisions":
			for _, rev := range e.ListRevisions() {
				fmt.Printf("0x%x  %s\n", rev.CommitID, rev.EngineVersionMin)
			}
		case "identify":
			if len(fields) < 2 {
				fmt.Println("usage: identify <file>")
				continue
			}
			runIdentify(e, fields[1])
		case "decompile":
			if len(fields) < 2 {
				fmt.Println("usage: decompile <file> [commit]")
				continue
			}
			runDecompile(e, fields[1], fields[2:])
		case "compile":
			if len(fields) < 3 {
				fmt.Println("usage: compile <file> <commit>")
				continue
			}
			runCompile(e, fields[1], fields[2])
		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func runIdentify(e *gdscript.Engine, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, c := range e.Identify(data) {
		fmt.Printf("0x%x %s %s\n", c.Revision.CommitID, c.Outcome, c.Witness)
	}
}

func runDecompile(e *gdscript.Engine, path string, rest []string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	if len(rest) == 0 {
		fmt.Print(e.Decompile(data))
		if e.GetLastError() != "" {
			fmt.Println(e.GetLastError())
		}
		return
	}
	commitID, err := parseHex(rest[0])
	if err != nil {
		fmt.Println(err)
		return
	}
	rev := e.ResolveByCommit(commitID)
	if rev == nil {
		fmt.Println(e.GetLastError())
		return
	}
	fmt.Print(e.DecompileFor(data, rev))
	if e.GetLastError() != "" {
		fmt.Println(e.GetLastError())
	}
}

func runCompile(e *gdscript.Engine, path, commitStr string) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	commitID, err := parseHex(commitStr)
	if err != nil {
		fmt.Println(err)
		return
	}
	rev := e.ResolveByCommit(commitID)
	if rev == nil {
		fmt.Println(e.GetLastError())
		return
	}
	data := e.Compile(string(src), rev)
	if e.GetLastError() != "" {
		fmt.Println(e.GetLastError())
		return
	}
	out := path + ".gdc"
	if err := os.WriteFile(out, data, 0644); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("wrote %d bytes to %s\n", len(data), out)
}
