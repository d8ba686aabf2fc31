package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/holdings/security"
	"github.com/google/subcommands"
)

type isinCmd struct{}

func (*isinCmd) Name() string     { return "isin" }
func (*isinCmd) Synopsis() string { return "validate ISIN codes" }
func (*isinCmd) Usage() string {
	return `hx isin <code>...

  Validates the format and the check digit of each ISIN code. Spaces inside
  a code are ignored. The exit status is non-zero if any code is invalid.
`
}

func (*isinCmd) SetFlags(f *flag.FlagSet) {}

func (*isinCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one code is required.")
		return subcommands.ExitUsageError
	}
	status := subcommands.ExitSuccess
	for _, code := range f.Args() {
		isin := security.NormalizeISIN(code)
		if err := security.ValidateISIN(isin); err != nil {
			fmt.Printf("%s\tinvalid\t%v\n", isin, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s\tvalid\n", isin)
	}
	return status
}
