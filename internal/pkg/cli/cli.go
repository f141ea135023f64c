package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/journalstat-dev/journalstat/internal/pkg/config"
	"github.com/journalstat-dev/journalstat/internal/pkg/journal"
	"github.com/journalstat-dev/journalstat/internal/pkg/resolve"
	"github.com/journalstat-dev/journalstat/internal/pkg/stats"
	"github.com/journalstat-dev/journalstat/internal/pkg/ux"
	"github.com/rs/zerolog/log"
)

// The numeric flags are pointers so an explicit zero (-t 0, -w 0) still
// overrides a nonzero config value.
var Options struct {
	Input         string `short:"i" type:"path" help:"${inputHelp}"`
	TopTalkers    *int   `short:"t" help:"${topTalkersHelp}"`
	LargeMessages *int   `short:"m" help:"${largeMessagesHelp}"`
	Unit          string `short:"u" help:"${unitHelp}"`
	Pattern       string `short:"p" help:"${patternHelp}"`
	Recursive     bool   `short:"R" help:"${recursiveHelp}"`
	Workers       *int   `short:"w" help:"${workersHelp}"`
	Level         string `short:"l" help:"${levelHelp}"`
	Quiet         bool   `short:"q" help:"${quietHelp}"`
	Version       bool   `short:"v" help:"${versionHelp}"`
}

var (
	defaultConfigDir = filepath.Join(os.Getenv("HOME"), ".journalstat")
)

const (
	configFile = "config.yaml"
)

func InitAndExecute(ctx context.Context) error {
	var (
		c   *config.Config
		err error
	)

	if Options.Version {
		ux.PrintVersion()
		return nil
	}

	if c, err = config.LoadConfig(defaultConfigDir, configFile); err != nil {
		log.Error().Err(err).Msg("Failed to load config")
		ux.ConfigError(err)
		return err
	}

	if Options.Input == "" {
		ux.PrintUsage()
		return os.ErrInvalid
	}

	set := mergeSettings(c)

	filter, err := stats.NewFilter(Options.Unit, Options.Pattern)
	if err != nil {
		log.Error().Err(err).Str("pattern", Options.Pattern).Msg("Failed to compile filter")
		ux.ConfigError(err)
		return err
	}

	files, err := resolve.Resolve(Options.Input, resolve.WithRecursive(set.recursive))
	if err != nil {
		log.Error().Err(err).Str("input", Options.Input).Msg("Failed to resolve input")
		ux.DataError(err)
		return err
	}

	var (
		pw         = ux.RootProgress(len(files))
		renderExit = make(chan struct{})
		sopts      = []stats.ScannerOptT{
			stats.WithFilter(filter),
			stats.WithWorkers(set.workers),
		}
	)

	if !Options.Quiet {
		sopts = append(sopts, stats.WithProgress(ux.NewScanProgress(pw)))
		go func() {
			pw.Render()
			renderExit <- struct{}{}
		}()
	}

	scanner, err := stats.NewScanner(set.topN, set.largeN, openJournal, sopts...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create scanner")
		ux.ConfigError(err)
		return err
	}

	result, err := scanner.Scan(ctx, files)
	if err != nil {
		log.Error().Err(err).Msg("Failed to scan journal files")
		ux.DataError(err)
		return err
	}

	if !Options.Quiet {
		pw.Stop()

		select {
		case <-ctx.Done():
		case <-renderExit:
		}
	}

	ux.NewReport(Options.Input, result).Render(os.Stdout, os.Stderr)

	return nil
}

func openJournal(path string) (stats.RecordSource, error) {
	return journal.Open(path)
}

type settingsT struct {
	topN      int
	largeN    int
	workers   int
	recursive bool
}

// mergeSettings applies flag-over-config precedence. A flag that was given
// wins even when its value is zero, so -t 0 disables a ranking the config
// enables and -w 1 forces a sequential scan.
func mergeSettings(c *config.Config) settingsT {
	s := settingsT{
		topN:      c.TopTalkers,
		largeN:    c.LargeMessages,
		workers:   c.Workers,
		recursive: c.Recursive || Options.Recursive,
	}

	if Options.TopTalkers != nil {
		s.topN = *Options.TopTalkers
	}
	if Options.LargeMessages != nil {
		s.largeN = *Options.LargeMessages
	}
	if Options.Workers != nil {
		s.workers = *Options.Workers
	}

	return s
}
