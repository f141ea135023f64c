package stats

import (
	"sort"
)

// FrequencyEntry is one row of the top-talkers ranking.
type FrequencyEntry struct {
	// Key is the exact message text the count groups on.
	Key string
	// Process is the _COMM of the first record seen for this key.
	Process string
	Count   uint64
	Ord     uint64
}

// TalkersT counts occurrences per distinct message text. The map is
// deliberately unbounded in the number of distinct keys: exact frequency
// ranking needs a full count, and capping cardinality would silently corrupt
// the result. Bounding memory here means switching to a sketch, which is an
// explicit non-goal.
type TalkersT struct {
	counts map[string]*FrequencyEntry
}

func NewTalkers() *TalkersT {
	return &TalkersT{
		counts: make(map[string]*FrequencyEntry),
	}
}

// Observe increments the count for the record's message, inserting a new
// entry on first sight.
func (t *TalkersT) Observe(rec *Record) {
	key := string(rec.Message)

	if e, ok := t.counts[key]; ok {
		e.Count++
		return
	}

	t.counts[key] = &FrequencyEntry{
		Key:     key,
		Process: rec.Process,
		Count:   1,
		Ord:     rec.Ord,
	}
}

// Merge folds other into t. Counts sum per key and the entry with the
// smallest ordinal keeps the tie-break position and display process, so the
// merge is commutative and associative.
func (t *TalkersT) Merge(other *TalkersT) {
	for key, oe := range other.counts {
		e, ok := t.counts[key]
		if !ok {
			t.counts[key] = oe
			continue
		}

		e.Count += oe.Count
		if oe.Ord < e.Ord {
			e.Ord = oe.Ord
			e.Process = oe.Process
		}
	}
}

// Distinct reports the number of distinct keys seen so far.
func (t *TalkersT) Distinct() int {
	return len(t.counts)
}

// Finalize returns at most n entries, most frequent first. Equal counts rank
// by earliest observation.
func (t *TalkersT) Finalize(n int) []FrequencyEntry {
	if n <= 0 {
		return nil
	}

	out := make([]FrequencyEntry, 0, len(t.counts))
	for _, e := range t.counts {
		out = append(out, *e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Ord < out[j].Ord
	})

	if len(out) > n {
		out = out[:n]
	}

	return out
}
