package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nikitalita/gdsdecomp-sub001/gdscript"
)

type identifyCmd struct{}

func (*identifyCmd) Name() string     { return "identify" }
func (*identifyCmd) Synopsis() string { return "Rank candidate revisions for a compiled .gdc buffer" }
func (*identifyCmd) Usage() string {
	return `identify <file.gdc>:
  Prints one line per candidate revision tried, with its PASS/FAIL/
  CORRUPT outcome and witness.
`
}

func (*identifyCmd) SetFlags(f *flag.FlagSet) {}

func (*identifyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	candidates := e.Identify(data)
	if len(candidates) == 0 {
		fmt.Fprintln(os.Stderr, e.GetLastError())
		return subcommands.ExitFailure
	}

	for _, c := range candidates {
		name := c.Revision.Name
		if name == "" {
			name = fmt.Sprintf("0x%x", c.Revision.CommitID)
		}
		if c.Witness != "" {
			fmt.Fprintf(os.Stdout, "%-28s %-8s %s\n", name, c.Outcome, c.Witness)
		} else {
			fmt.Fprintf(os.Stdout, "%-28s %-8s\n", name, c.Outcome)
		}
	}
	return subcommands.ExitSuccess
}
