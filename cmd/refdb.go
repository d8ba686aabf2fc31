package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/holdings/security"
	"github.com/google/subcommands"
)

// formatEntry returns the printable block of a reference entry.
func formatEntry(e security.Entry) string {
	var b strings.Builder
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "    %-9s: %s\n", name, value)
		}
	}
	fmt.Fprintf(&b, "➡️   %s (%s)\n", e.Name, e.ISIN)
	field("Ticker", e.Ticker)
	field("Type", e.SecurityType)
	field("Sector", strings.Trim(e.Sector+" / "+e.Industry, " /"))
	field("Country", e.Country)
	field("Currency", e.Currency)
	field("Exchange", e.Exchange)
	field("CUSIP", e.CUSIP)
	field("SEDOL", e.SEDOL)
	field("FIGI", e.FIGI)
	return b.String()
}

type lookupCmd struct{}

func (*lookupCmd) Name() string     { return "refdb-lookup" }
func (*lookupCmd) Synopsis() string { return "find a security of the reference database by identifier or name" }
func (*lookupCmd) Usage() string {
	return `hx refdb-lookup <isin | ticker | cusip | sedol | figi | name>

  Looks the key up in every index of the reference database, identifiers
  first, then exact names and their known variants.
`
}

func (*lookupCmd) SetFlags(f *flag.FlagSet) {}

func (*lookupCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a key is required.")
		return subcommands.ExitUsageError
	}
	db, err := OpenReference()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference database: %v\n", err)
		return subcommands.ExitFailure
	}
	key := strings.Join(f.Args(), " ")
	e, err := db.Lookup(key)
	if errors.Is(err, security.ErrNotFound) {
		fmt.Printf("No security found for '%s'.\n", key)
		return subcommands.ExitFailure
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(formatEntry(e))
	return subcommands.ExitSuccess
}

type matchCmd struct {
	threshold float64
}

func (*matchCmd) Name() string     { return "refdb-match" }
func (*matchCmd) Synopsis() string { return "fuzzy match a security name against the reference database" }
func (*matchCmd) Usage() string {
	return `hx refdb-match [-threshold 0.6] <name>

  Prints the best matching security and the details of its score.
`
}

func (c *matchCmd) SetFlags(f *flag.FlagSet) {
	f.Float64Var(&c.threshold, "threshold", security.DefaultThreshold, "Minimum combined score of a match, in [0,1]")
}

func (c *matchCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: a name is required.")
		return subcommands.ExitUsageError
	}
	if c.threshold < 0 || c.threshold > 1 {
		fmt.Fprintln(os.Stderr, "Error: -threshold must be in [0,1].")
		return subcommands.ExitUsageError
	}
	db, err := OpenReference()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference database: %v\n", err)
		return subcommands.ExitFailure
	}
	name := strings.Join(f.Args(), " ")
	m, ok := db.FindBestMatch(name, c.threshold)
	if !ok {
		fmt.Printf("No security matches '%s' above %.2f.\n", name, c.threshold)
		return subcommands.ExitFailure
	}
	fmt.Print(formatEntry(m.Entry))
	if m.Exact {
		fmt.Printf("    %-9s: exact\n", "Score")
	} else {
		fmt.Printf("    %-9s: %.3f (containment %.2f, sequence %.2f, tokens %.2f)\n", "Score", m.Score, m.Containment, m.Sequence, m.Token)
	}
	return subcommands.ExitSuccess
}

type addCmd struct {
	entry security.Entry
}

func (*addCmd) Name() string     { return "refdb-add" }
func (*addCmd) Synopsis() string { return "add or replace a security in the reference database file" }
func (*addCmd) Usage() string {
	return `hx -refdb <file> refdb-add -isin <isin> -name <name> [-ticker ...] [-sector ...]

  Adds a security to the reference database file, replacing the entry of the
  same ISIN if any. The ISIN must be valid.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.entry.ISIN, "isin", "", "ISIN of the security (required)")
	f.StringVar(&c.entry.Name, "name", "", "Canonical name of the security (required)")
	f.StringVar(&c.entry.Ticker, "ticker", "", "Ticker symbol")
	f.StringVar(&c.entry.Sector, "sector", "", "Sector")
	f.StringVar(&c.entry.Industry, "industry", "", "Industry")
	f.StringVar(&c.entry.SecurityType, "type", "", "Security type: equity, bond, etf, fund...")
	f.StringVar(&c.entry.Country, "country", "", "Country, 2-letter code")
	f.StringVar(&c.entry.Currency, "currency", "", "Currency, 3-letter code")
	f.StringVar(&c.entry.Exchange, "exchange", "", "Exchange MIC")
	f.StringVar(&c.entry.CUSIP, "cusip", "", "CUSIP")
	f.StringVar(&c.entry.SEDOL, "sedol", "", "SEDOL")
	f.StringVar(&c.entry.FIGI, "figi", "", "FIGI")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.entry.ISIN == "" || c.entry.Name == "" {
		fmt.Fprintln(os.Stderr, "Error: -isin and -name are required.")
		return subcommands.ExitUsageError
	}
	c.entry.ISIN = security.NormalizeISIN(c.entry.ISIN)
	db, err := OpenReferenceFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference database: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := db.Add(c.entry); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err := SaveReferenceFile(db); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving reference database: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Successfully added %s to %s\n", c.entry.ISIN, *refdbFile)
	return subcommands.ExitSuccess
}

type removeCmd struct{}

func (*removeCmd) Name() string     { return "refdb-remove" }
func (*removeCmd) Synopsis() string { return "remove securities from the reference database file" }
func (*removeCmd) Usage() string {
	return `hx -refdb <file> refdb-remove <isin>...

  Removes the securities from the reference database file.
`
}

func (*removeCmd) SetFlags(f *flag.FlagSet) {}

func (*removeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one ISIN is required.")
		return subcommands.ExitUsageError
	}
	db, err := OpenReferenceFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference database: %v\n", err)
		return subcommands.ExitFailure
	}
	status := subcommands.ExitSuccess
	for _, code := range f.Args() {
		isin := security.NormalizeISIN(code)
		if !db.Remove(isin) {
			fmt.Fprintf(os.Stderr, "Warning: %s is not in %s\n", isin, *refdbFile)
			status = subcommands.ExitFailure
		}
	}
	if err := SaveReferenceFile(db); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving reference database: %v\n", err)
		return subcommands.ExitFailure
	}
	return status
}
