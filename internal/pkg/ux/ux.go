package ux

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/journalstat-dev/journalstat/internal/pkg/stats"
	"github.com/journalstat-dev/journalstat/internal/pkg/verz"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	AppDesc             = "journalstat summarizes systemd journal files: the services that log the most and the largest messages on disk."
	ErrorCategoryData   = "Data"
	ErrorCategoryConfig = "Config"
)

const (
	lineRefer     = "Report issues at https://github.com/journalstat-dev/journalstat"
	usageFmt      = "Usage: %s -i PATH [flags]\n"
	usageHelp     = "See --help for more information\n\n"
	usageExamples = "Examples:\n"
	usageExample1 = "  %s -i /var/log/journal -t 20\n"
	usageExample2 = "  %s -i system.journal -m 10 -u sshd.service\n"
	versionTmpl   = "%s %s %s %s/%s %s\n"
)

var (
	HelpInput     = "Path to a journal file or a directory of journal files"
	HelpTop       = "Report the N most frequent messages"
	HelpLarge     = "Report the N largest messages"
	HelpUnit      = "Only count records from this systemd unit"
	HelpPattern   = "Only count messages matching this regular expression"
	HelpRecursive = "Descend into subdirectories when the input is a directory"
	HelpWorkers   = "Scan this many journal files concurrently"
	HelpLevel     = "Print logs at this level to stderr"
	HelpQuiet     = "Quiet mode, do not print progress"
	HelpVersion   = "Print version and exit"
)

func PrintVersion() {
	fmt.Printf(versionTmpl, ProcessName(), verz.Semver(), verz.Githash, runtime.GOOS, runtime.GOARCH, verz.Date)
	fmt.Println(lineRefer)
}

func PrintUsage() {
	fmt.Fprintf(os.Stdout, usageFmt, ProcessName())
	fmt.Fprint(os.Stdout, usageHelp)
	fmt.Fprint(os.Stdout, usageExamples)
	fmt.Fprintf(os.Stdout, usageExample1, ProcessName())
	fmt.Fprintf(os.Stdout, usageExample2, ProcessName())
}

func RootProgress(nFiles int) progress.Writer {
	pw := progress.NewWriter()

	colors := progress.StyleColors{
		Message: text.Colors{text.FgHiWhite},
		Stats:   text.Colors{text.FgHiBlue, text.Bold},
		Time:    text.Colors{text.FgHiMagenta, text.Bold},
	}

	pw.SetAutoStop(false)
	pw.SetMessageLength(32)
	pw.SetNumTrackersExpected(nFiles)
	pw.SetOutputWriter(os.Stderr)
	pw.SetSortBy(progress.SortByNone)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerLength(25)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 200)
	pw.Style().Colors = colors
	pw.Style().Options.TimeDonePrecision = time.Millisecond
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Time = true

	return pw
}

// ScanProgressT feeds per-file scan events into a progress writer. Safe for
// concurrent use; parallel scans report from multiple goroutines.
type ScanProgressT struct {
	mu       sync.Mutex
	pw       progress.Writer
	trackers map[string]*progress.Tracker
}

func NewScanProgress(pw progress.Writer) *ScanProgressT {
	return &ScanProgressT{
		pw:       pw,
		trackers: make(map[string]*progress.Tracker),
	}
}

func (s *ScanProgressT) FileStart(path string, entries uint64) {
	tracker := &progress.Tracker{
		Message: fmt.Sprintf("Reading %s", filepath.Base(path)),
		Total:   int64(entries),
		Units: progress.Units{
			Notation:         " entries",
			NotationPosition: progress.UnitsNotationPositionAfter,
			Formatter:        progress.FormatNumber,
		},
	}

	s.mu.Lock()
	s.trackers[path] = tracker
	s.mu.Unlock()

	s.pw.AppendTracker(tracker)
}

func (s *ScanProgressT) FileRecords(path string, n int64) {
	s.mu.Lock()
	tracker := s.trackers[path]
	s.mu.Unlock()

	if tracker != nil {
		tracker.Increment(n)
	}
}

func (s *ScanProgressT) FileDone(path string, err error) {
	s.mu.Lock()
	tracker := s.trackers[path]
	s.mu.Unlock()

	if tracker == nil {
		return
	}

	if err != nil {
		tracker.MarkAsErrored()
	} else {
		tracker.MarkAsDone()
	}
}

var _ stats.ProgressI = (*ScanProgressT)(nil)

func DataError(err error) error {
	return CategoryError(ErrorCategoryData, err)
}

func ConfigError(err error) error {
	return CategoryError(ErrorCategoryConfig, err)
}

func CategoryError(category string, err error) error {
	fmt.Fprintf(os.Stderr, "%s error: %v\n", category, err)
	return err
}

func Error(err error) error {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}

func ProcessName() string {
	return filepath.Base(os.Args[0])
}
