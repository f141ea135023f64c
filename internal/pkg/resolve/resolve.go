// Package resolve expands a user supplied input path into the ordered
// list of journal files to scan.
package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrorNoInput = errors.New("no journal files found")
)

const journalExt = ".journal"

type OptT func(o *optsT)

type optsT struct {
	recursive bool
}

// WithRecursive descends into subdirectories when the input is a directory.
func WithRecursive(v bool) OptT {
	return func(o *optsT) {
		o.recursive = v
	}
}

func parseOpts(opts ...OptT) optsT {
	var o optsT
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resolve returns the journal files named by path, sorted lexicographically.
// A file path is returned as-is regardless of extension; a directory yields
// its *.journal children.
func Resolve(path string, opts ...OptT) ([]string, error) {
	o := parseOpts(opts...)

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	if o.recursive {
		files, err = walkDir(path)
	} else {
		files, err = listDir(path)
	}
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrorNoInput, path)
	}

	slices.Sort(files)

	log.Debug().
		Str("path", path).
		Int("files", len(files)).
		Msg("Resolved input")

	return files, nil
}

func listDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !isJournal(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

func walkDir(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subdirectories are skipped, not fatal.
			log.Warn().
				Err(err).
				Str("path", path).
				Msg("Cannot read directory entry. Continue...")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && isJournal(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

func isJournal(name string) bool {
	return strings.HasSuffix(name, journalExt)
}
