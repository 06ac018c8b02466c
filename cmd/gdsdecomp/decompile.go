package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"

	"github.com/nikitalita/gdsdecomp-sub001/gdscript"
)

type decompileCmd struct {
	commit  string
	version string
}

func (*decompileCmd) Name() string     { return "decompile" }
func (*decompileCmd) Synopsis() string { return "Reconstruct source text from a compiled .gdc buffer" }
func (*decompileCmd) Usage() string {
	return `decompile [-commit 0x1a36141 | -version 3.1.1-stable] <file.gdc>:
  Writes the reconstructed source to stdout. Without -commit or
  -version, the revision is auto-identified.
`
}

func (cmd *decompileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.commit, "commit", "", "resolve the revision by commit id (hex, e.g. 0x1a36141)")
	f.StringVar(&cmd.version, "version", "", "resolve the revision by engine version string (e.g. 3.1.1-stable)")
}

func (cmd *decompileCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "file not provided")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %v\n", err)
		return subcommands.ExitFailure
	}

	e := gdscript.New()

	if cmd.commit != "" {
		commitID, err := parseHex(cmd.commit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -commit: %v\n", err)
			return subcommands.ExitUsageError
		}
		rev := e.ResolveByCommit(commitID)
		if rev == nil {
			fmt.Fprintln(os.Stderr, e.GetLastError())
			return subcommands.ExitFailure
		}
		text := e.DecompileFor(data, rev)
		if e.GetLastError() != "" {
			fmt.Fprintln(os.Stderr, e.GetLastError())
			return subcommands.ExitFailure
		}
		fmt.Print(text)
		return subcommands.ExitSuccess
	}

	if cmd.version != "" {
		rev := e.ResolveByVersion(cmd.version, false)
		if rev == nil {
			fmt.Fprintln(os.Stderr, e.GetLastError())
			return subcommands.ExitFailure
		}
		text := e.DecompileFor(data, rev)
		if e.GetLastError() != "" {
			fmt.Fprintln(os.Stderr, e.GetLastError())
			return subcommands.ExitFailure
		}
		fmt.Print(text)
		return subcommands.ExitSuccess
	}

	text := e.Decompile(data)
	if e.GetLastError() != "" {
		fmt.Fprintln(os.Stderr, e.GetLastError())
		return subcommands.ExitFailure
	}
	fmt.Print(text)
	return subcommands.ExitSuccess
}

func parseHex(s string) (uint32, error) {
	v, err := strconv.ParseUint(trimHexPrefix(s), 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
