package stats

import (
	"regexp"
)

// Filter admits records that satisfy an optional unit equality and an
// optional message pattern, combined with logical AND. The pattern runs over
// the raw message bytes via regexp.Match, so payloads that are not valid
// UTF-8 are matched byte-wise and never cause a runtime error.
type Filter struct {
	unit    string
	pattern *regexp.Regexp
}

// NewFilter compiles the filter once. A malformed pattern fails here, before
// any file is opened.
func NewFilter(unit, pattern string) (*Filter, error) {
	f := &Filter{unit: unit}

	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.pattern = re
	}

	return f, nil
}

// Admit reports whether rec passes every configured filter. A nil filter
// admits everything.
func (f *Filter) Admit(rec *Record) bool {
	if f == nil {
		return true
	}

	if f.unit != "" && rec.Unit != f.unit {
		return false
	}

	if f.pattern != nil && !f.pattern.Match(rec.Message) {
		return false
	}

	return true
}
