package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nikitalita/gdsdecomp-sub001/gdscript"
)

type listRevisionsCmd struct{}

func (*listRevisionsCmd) Name() string     { return "list-revisions" }
func (*listRevisionsCmd) Synopsis() string { return "List every registered revision" }
func (*listRevisionsCmd) Usage() string {
	return `list-revisions:
  Prints commit id, engine version range, and bytecode format version
  for every revision in the registry, most recent first.
`
}

func (*listRevisionsCmd) SetFlags(f *flag.FlagSet) {}

func (*listRevisionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e := gdscript.New()
	for _, rev := range e.ListRevisions() {
		max := rev.EngineVersionMax
		if max == "" {
			max = "open"
		}
		fmt.Fprintf(os.Stdout, "0x%-10x %-16s %-16s format=%-4d variant=%d\n",
			rev.CommitID, rev.EngineVersionMin, max, rev.BytecodeVersion, rev.VariantFormatMajor)
	}
	return subcommands.ExitSuccess
}
