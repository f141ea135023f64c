// Package stat is the embedding API: analyze journal files without the
// CLI surface.
package stat

import (
	"context"

	"github.com/journalstat-dev/journalstat/internal/pkg/journal"
	"github.com/journalstat-dev/journalstat/internal/pkg/resolve"
	"github.com/journalstat-dev/journalstat/internal/pkg/stats"
	"github.com/rs/zerolog/log"
)

type Options struct {
	// Input is a journal file or a directory containing *.journal files.
	Input string

	// TopTalkers and LargeMessages size the two rankings. A value of zero
	// disables that ranking; at least one must be positive.
	TopTalkers    int
	LargeMessages int

	// Unit restricts counting to records from one systemd unit.
	Unit string

	// Pattern restricts counting to messages matching a regular expression.
	Pattern string

	// Recursive descends into subdirectories of Input.
	Recursive bool

	// Workers scans this many files concurrently. Zero or one scans
	// sequentially.
	Workers int
}

// Analyze scans the journal files named by opts.Input and returns the
// rankings. Unreadable files are skipped and reported in Result.Errors.
func Analyze(ctx context.Context, opts Options) (*stats.Result, error) {

	filter, err := stats.NewFilter(opts.Unit, opts.Pattern)
	if err != nil {
		log.Error().Err(err).Str("pattern", opts.Pattern).Msg("Failed to compile filter")
		return nil, err
	}

	files, err := resolve.Resolve(opts.Input, resolve.WithRecursive(opts.Recursive))
	if err != nil {
		log.Error().Err(err).Str("input", opts.Input).Msg("Failed to resolve input")
		return nil, err
	}

	scanner, err := stats.NewScanner(
		opts.TopTalkers,
		opts.LargeMessages,
		func(path string) (stats.RecordSource, error) {
			return journal.Open(path)
		},
		stats.WithFilter(filter),
		stats.WithWorkers(opts.Workers),
	)
	if err != nil {
		return nil, err
	}

	return scanner.Scan(ctx, files)
}
