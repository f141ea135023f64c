package main

import (
	"os"

	"github.com/journalstat-dev/journalstat/internal/pkg/cli"
	"github.com/journalstat-dev/journalstat/internal/pkg/logs"
	"github.com/journalstat-dev/journalstat/internal/pkg/sigs"
	"github.com/journalstat-dev/journalstat/internal/pkg/ux"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"
)

var vars = kong.Vars{
	"inputHelp":         ux.HelpInput,
	"topTalkersHelp":    ux.HelpTop,
	"largeMessagesHelp": ux.HelpLarge,
	"unitHelp":          ux.HelpUnit,
	"patternHelp":       ux.HelpPattern,
	"recursiveHelp":     ux.HelpRecursive,
	"workersHelp":       ux.HelpWorkers,
	"levelHelp":         ux.HelpLevel,
	"quietHelp":         ux.HelpQuiet,
	"versionHelp":       ux.HelpVersion,
}

func main() {

	var (
		ctx    = sigs.InitSignals()
		parser = kong.Must(
			&cli.Options,
			kong.Name(ux.ProcessName()),
			kong.Description(ux.AppDesc),
			kong.UsageOnError(),
			kong.Vars(vars),
		)
		err error
	)

	// Run kongplete.Complete to handle completion requests
	kongplete.Complete(parser,
		kongplete.WithPredictor("file", complete.PredictFiles("*")),
	)

	kong.Parse(&cli.Options, vars)

	logOpts := []logs.InitOpt{
		logs.WithLevel(cli.Options.Level),
		logs.WithPretty(),
	}

	// Initialize logger first before any other logging
	logs.InitLogger(logOpts...)

	if err = cli.InitAndExecute(ctx); err != nil {
		os.Exit(1)
	}
}
