package cmd

import (
	"flag"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// fileFlags are the flags naming a file.
var fileFlags = map[string]complete.Predictor{
	"refdb": predict.Files("*.json"),
}

// documentArgs are the argument predictors of the commands reading documents.
var documentArgs = map[string]complete.Predictor{
	"extract": predict.Or(predict.Files("*.xlsx"), predict.Files("*.json"), predict.Files("*.png"), predict.Files("*.jpg"), predict.Dirs("*")),
}

// Completion returns the shell completion of the commands registered in cdr,
// with the flags they define.
//
// Run `COMP_INSTALL=1 hx` to install it in the shell.
func Completion(cdr *subcommands.Commander, top *flag.FlagSet) *complete.Command {
	root := &complete.Command{
		Sub:   make(map[string]*complete.Command),
		Flags: flagPredictors(top),
	}
	cdr.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(fs)
		sub := &complete.Command{Flags: flagPredictors(fs), Args: documentArgs[c.Name()]}
		if sub.Args == nil {
			sub.Args = predict.Something
		}
		root.Sub[c.Name()] = sub
	})
	return root
}

func flagPredictors(fs *flag.FlagSet) map[string]complete.Predictor {
	flags := make(map[string]complete.Predictor)
	fs.VisitAll(func(f *flag.Flag) {
		switch {
		case fileFlags[f.Name] != nil:
			flags[f.Name] = fileFlags[f.Name]
		case isBool(f):
			flags[f.Name] = predict.Nothing
		default:
			flags[f.Name] = predict.Something
		}
	})
	return flags
}

func isBool(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
