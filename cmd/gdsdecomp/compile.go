package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nikitalita/gdsdecomp-sub001/gdscript"
	"github.com/nikitalita/gdsdecomp-sub001/revision"
)

type compileCmd struct {
	commit  string
	version string
	out     string
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Compile GDScript source text into a revision's buffer format" }
func (*compileCmd) Usage() string {
	return `compile -commit 0x1a36141 <file.gd>:
  Writes the encoded buffer to -out, or <file>.gdc if -out is empty.
`
}

func (cmd *compileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.commit, "commit", "", "target revision by commit id (hex)")
	f.StringVar(&cmd.version, "version", "", "target revision by engine version string")
	f.StringVar(&cmd.out, "out", "", "output file path")
}

func (cmd *compileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "file not provided")
		return subcommands.ExitUsageError
	}
	if cmd.commit == "" && cmd.version == "" {
		fmt.Fprintln(os.Stderr, "one of -commit or -version is required")
		return subcommands.ExitUsageError
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	e := gdscript.New()
	var rev *revision.Descriptor
	if cmd.commit != "" {
		commitID, err := parseHex(cmd.commit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -commit: %v\n", err)
			return subcommands.ExitUsageError
		}
		rev = e.ResolveByCommit(commitID)
	} else {
		rev = e.ResolveByVersion(cmd.version, false)
	}
	if rev == nil {
		fmt.Fprintln(os.Stderr, e.GetLastError())
		return subcommands.ExitFailure
	}

	data := e.Compile(string(src), rev)
	if e.GetLastError() != "" {
		fmt.Fprintln(os.Stderr, e.GetLastError())
		return subcommands.ExitFailure
	}

	out := cmd.out
	if out == "" {
		out = args[0] + ".gdc"
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write output: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stdout, "wrote %d bytes to %s\n", len(data), out)
	return subcommands.ExitSuccess
}
