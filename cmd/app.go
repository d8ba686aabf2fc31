// Package cmd implements the hx command-line application: extraction of the
// holdings of portfolio documents, and maintenance of the reference database.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/holdings/logging"
	"github.com/etnz/holdings/security"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// Environment variables read by the application, possibly from a .env file.
const (
	EnvRefDB     = "HOLDINGS_REFDB"
	EnvLogLevel  = "HOLDINGS_LOG_LEVEL"
	EnvGeminiKey = "GEMINI_API_KEY"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&extractCmd{}, "documents")

	c.Register(&isinCmd{}, "reference")
	c.Register(&lookupCmd{}, "reference")
	c.Register(&matchCmd{}, "reference")
	c.Register(&addCmd{}, "reference")
	c.Register(&removeCmd{}, "reference")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var refdbFile = flag.String("refdb", "", "Path to the reference database file, merged over the builtin securities (default $"+EnvRefDB+")")
var logLevel = flag.String("log-level", "warn", "Log level: debug, info, warn or error (default $"+EnvLogLevel+")")
var logJSON = flag.Bool("log-json", false, "Log in JSON instead of text")
var model = flag.String("model", "", "Gemini model used by the vision corroboration")

// Setup loads the .env file of the working directory, if any, and configures
// the application from the flags and the environment. It must be called
// after flag.Parse.
func Setup() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: cannot read .env file: %v\n", err)
	}
	setFromEnv("refdb", EnvRefDB)
	setFromEnv("log-level", EnvLogLevel)
	logging.SetLogger(logging.New(os.Stderr, *logLevel, *logJSON))
}

// setFromEnv sets the flag from the environment variable unless it was given.
func setFromEnv(name, env string) {
	v, ok := os.LookupEnv(env)
	if !ok {
		return
	}
	given := false
	flag.Visit(func(f *flag.Flag) { given = given || f.Name == name })
	if !given {
		flag.Set(name, v)
	}
}

// OpenReference returns the builtin reference database merged with the
// -refdb file. A missing file is not an error: it is created on save.
func OpenReference() (*security.DB, error) {
	db := security.NewBuiltin()
	if *refdbFile == "" {
		return db, nil
	}
	err := db.LoadFile(*refdbFile)
	if errors.Is(err, fs.ErrNotExist) {
		logging.Logger().WithField("file", *refdbFile).Warn("reference-file-not-found")
		return db, nil
	}
	return db, err
}

// OpenReferenceFile returns the content of the -refdb file alone, the one
// modified by the maintenance commands. A missing file is an empty database.
func OpenReferenceFile() (*security.DB, error) {
	if *refdbFile == "" {
		return nil, errors.New("no reference database file, use -refdb or $" + EnvRefDB)
	}
	db := security.New()
	if err := db.LoadFile(*refdbFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return db, nil
}

// SaveReferenceFile writes db to the -refdb file.
func SaveReferenceFile(db *security.DB) error {
	return db.SaveFile(*refdbFile)
}
