package stats

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Per-file ordinal space. Ordinals are fileIndex<<ordShift | recordIndex,
// with file indexes taken from the deterministic traversal order, so they
// are stable no matter how files are scheduled across workers.
const ordShift = 40

var (
	ErrNoRanking       = errors.New("no ranking requested")
	ErrNoReadableFiles = errors.New("no input file could be read")
)

// FileError records one skipped input file.
type FileError struct {
	Path string
	Err  error
}

// ProgressI receives scan progress callbacks. Implementations must be safe
// for concurrent use when the scanner runs parallel workers.
type ProgressI interface {
	FileStart(path string, entries uint64)
	FileRecords(path string, n int64)
	FileDone(path string, err error)
}

// Result holds both finalized rankings plus scan bookkeeping.
type Result struct {
	TopTalkers    []FrequencyEntry
	LargeMessages []SizeEntry
	// Distinct is the number of distinct message keys counted, 0 when the
	// top-talkers ranking is disabled.
	Distinct     int
	FilesScanned int
	FilesSkipped int
	Records      int64
	Matched      int64
	Errors       []FileError
}

// ScannerT drives filtered records from every input file into both
// aggregators and finalizes the rankings. A ranking with n == 0 is never
// instantiated, so a disabled ranking costs nothing.
type ScannerT struct {
	topN    int
	largeN  int
	filter  *Filter
	open    OpenFunc
	workers int
	prog    ProgressI
}

type ScannerOptT func(*ScannerT)

func WithFilter(f *Filter) ScannerOptT {
	return func(s *ScannerT) {
		s.filter = f
	}
}

// WithWorkers enables parallel per-file scanning when n > 1. Results are
// identical to a sequential scan because partial aggregations merge
// commutatively and tie-breaks use ordinals, not arrival order.
func WithWorkers(n int) ScannerOptT {
	return func(s *ScannerT) {
		if n > 1 {
			s.workers = n
		}
	}
}

func WithProgress(p ProgressI) ScannerOptT {
	return func(s *ScannerT) {
		s.prog = p
	}
}

func NewScanner(topN, largeN int, open OpenFunc, opts ...ScannerOptT) (*ScannerT, error) {
	if topN <= 0 && largeN <= 0 {
		return nil, ErrNoRanking
	}

	s := &ScannerT{
		topN:    topN,
		largeN:  largeN,
		open:    open,
		workers: 1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Scan aggregates every file in paths. A file that cannot be opened or
// decoded is reported in Result.Errors and skipped whole: a mid-read failure
// discards the file's already-read records, so results do not depend on the
// worker count. The scan continues with the remaining files. Cancellation
// stops between files and still finalizes rankings from the files processed
// so far.
func (s *ScannerT) Scan(ctx context.Context, paths []string) (*Result, error) {
	if s.workers > 1 && len(paths) > 1 {
		return s.scanParallel(ctx, paths)
	}
	return s.scanSequential(ctx, paths)
}

func (s *ScannerT) scanSequential(ctx context.Context, paths []string) (*Result, error) {
	var (
		merged = s.newPartial()
		res    = &Result{}
	)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			log.Warn().Err(err).Msg("Scan cancelled. Finalizing partial rankings...")
			break
		}

		// Each file scans into its own partial, merged only on success. A
		// file that fails mid-read therefore contributes nothing, the same
		// as in the parallel path.
		p := s.newPartial()
		if err := s.scanFile(path, i, p); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to scan journal. Continue...")
			res.Errors = append(res.Errors, FileError{Path: path, Err: err})
			if s.prog != nil {
				s.prog.FileDone(path, err)
			}
			continue
		}

		merged.merge(p)
		res.FilesScanned++
		if s.prog != nil {
			s.prog.FileDone(path, nil)
		}
	}

	return s.finalize(merged, res)
}

func (s *ScannerT) scanParallel(ctx context.Context, paths []string) (*Result, error) {
	type jobT struct {
		idx  int
		path string
	}

	var (
		res      = &Result{}
		partials = make([]*partialT, len(paths))
		fileErrs = make([]error, len(paths))
		jobs     = make(chan jobT)
	)

	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < s.workers; w++ {
		g.Go(func() error {
			for job := range jobs {
				p := s.newPartial()

				if err := s.scanFile(job.path, job.idx, p); err != nil {
					log.Warn().Err(err).Str("path", job.path).Msg("Failed to scan journal. Continue...")
					fileErrs[job.idx] = err
					if s.prog != nil {
						s.prog.FileDone(job.path, err)
					}
					continue
				}

				partials[job.idx] = p
				if s.prog != nil {
					s.prog.FileDone(job.path, nil)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(jobs)
		for i, path := range paths {
			select {
			case jobs <- jobT{idx: i, path: path}:
			case <-gctx.Done():
				// Stop dispatching; in-flight files drain normally.
				return nil
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := s.newPartial()
	for i := range paths {
		switch {
		case partials[i] != nil:
			merged.merge(partials[i])
			res.FilesScanned++
		case fileErrs[i] != nil:
			res.Errors = append(res.Errors, FileError{Path: paths[i], Err: fileErrs[i]})
		}
	}

	return s.finalize(merged, res)
}

func (s *ScannerT) scanFile(path string, fileIdx int, p *partialT) error {
	src, err := s.open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if s.prog != nil {
		s.prog.FileStart(path, src.Entries())
	}

	var (
		base = uint64(fileIdx) << ordShift
		n    uint64
	)

	for {
		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		rec.Ord = base | (n & (1<<ordShift - 1))
		n++
		p.records++

		if s.prog != nil {
			s.prog.FileRecords(path, 1)
		}

		if !s.filter.Admit(rec) {
			continue
		}
		p.matched++

		if p.talkers != nil {
			p.talkers.Observe(rec)
		}
		if p.largest != nil {
			p.largest.Observe(rec)
		}
	}

	return nil
}

func (s *ScannerT) finalize(p *partialT, res *Result) (*Result, error) {
	res.FilesSkipped = len(res.Errors)

	if res.FilesScanned == 0 && res.FilesSkipped > 0 {
		errList := make([]error, 0, len(res.Errors)+1)
		errList = append(errList, ErrNoReadableFiles)
		for _, fe := range res.Errors {
			errList = append(errList, fe.Err)
		}
		return nil, errors.Join(errList...)
	}

	res.Records = p.records
	res.Matched = p.matched

	if p.talkers != nil {
		res.Distinct = p.talkers.Distinct()
		res.TopTalkers = p.talkers.Finalize(s.topN)
	}
	if p.largest != nil {
		res.LargeMessages = p.largest.Finalize()
	}

	return res, nil
}

// partialT is one worker's private aggregation state.
type partialT struct {
	talkers *TalkersT
	largest *LargestT
	records int64
	matched int64
}

func (s *ScannerT) newPartial() *partialT {
	p := &partialT{}
	if s.topN > 0 {
		p.talkers = NewTalkers()
	}
	if s.largeN > 0 {
		p.largest = NewLargest(s.largeN)
	}
	return p
}

func (p *partialT) merge(o *partialT) {
	if p.talkers != nil {
		p.talkers.Merge(o.talkers)
	}
	if p.largest != nil {
		p.largest.Merge(o.largest)
	}
	p.records += o.records
	p.matched += o.matched
}
