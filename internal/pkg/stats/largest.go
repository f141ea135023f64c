package stats

import (
	"container/heap"
	"sort"
)

// SizeEntry is one row of the large-messages ranking.
type SizeEntry struct {
	Unit     string
	Process  string
	Message  []byte
	Size     int64
	Realtime int64
	Ord      uint64
}

// LargestT keeps the n largest records seen so far in a fixed-capacity
// min-heap, so memory stays O(n) regardless of how many records the inputs
// hold. The heap root is always the entry that would lose next: smallest
// size, and among equal sizes the latest ordinal, so an equal-size
// challenger at the boundary never displaces the incumbent.
type LargestT struct {
	capacity int
	entries  sizeHeap
}

func NewLargest(n int) *LargestT {
	return &LargestT{
		capacity: n,
		entries:  make(sizeHeap, 0, max(n, 0)),
	}
}

// Observe offers a record to the ranking.
func (l *LargestT) Observe(rec *Record) {
	l.observe(SizeEntry{
		Unit:     rec.Unit,
		Process:  rec.Process,
		Message:  rec.Message,
		Size:     rec.Size,
		Realtime: rec.Realtime,
		Ord:      rec.Ord,
	})
}

func (l *LargestT) observe(e SizeEntry) {
	if l.capacity <= 0 {
		return
	}

	if len(l.entries) < l.capacity {
		heap.Push(&l.entries, e)
		return
	}

	// Keep the best n by (size desc, ordinal asc). In a streaming scan an
	// equal-size challenger always carries a later ordinal and is dropped,
	// which is the first-seen rule; during a merge an equal-size entry with
	// an earlier ordinal must displace the incumbent so merged results stay
	// identical to a single pass.
	root := l.entries[0]
	if e.Size > root.Size || (e.Size == root.Size && e.Ord < root.Ord) {
		l.entries[0] = e
		heap.Fix(&l.entries, 0)
	}
}

// Held reports how many entries the ranking currently retains.
func (l *LargestT) Held() int {
	return len(l.entries)
}

// Merge re-observes other's entries in observation order, which keeps the
// tie-break identical to a single-pass scan over the same records.
func (l *LargestT) Merge(other *LargestT) {
	entries := append([]SizeEntry(nil), other.entries...)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Ord < entries[j].Ord
	})

	for _, e := range entries {
		l.observe(e)
	}
}

// Finalize returns the held entries, largest first. Equal sizes rank by
// earliest observation.
func (l *LargestT) Finalize() []SizeEntry {
	out := append([]SizeEntry(nil), l.entries...)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Ord < out[j].Ord
	})

	return out
}

type sizeHeap []SizeEntry

func (h sizeHeap) Len() int { return len(h) }

func (h sizeHeap) Less(i, j int) bool {
	if h[i].Size != h[j].Size {
		return h[i].Size < h[j].Size
	}
	return h[i].Ord > h[j].Ord
}

func (h sizeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *sizeHeap) Push(x any) { *h = append(*h, x.(SizeEntry)) }

func (h *sizeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
