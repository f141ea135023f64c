package stats

// Record is one journal entry reduced to the fields the rankings need. A
// record is consumed by the filter and both aggregators as it is produced;
// nothing outside the large-messages heap retains a reference to it.
type Record struct {
	// Unit is the systemd unit that produced the entry, empty if unknown.
	Unit string
	// Process is the _COMM field, empty if unknown.
	Process string
	// Message is the raw MESSAGE payload. Not guaranteed to be valid UTF-8.
	Message []byte
	// Size is the serialized entry size in bytes: the sum of all field
	// payload lengths, so it can exceed len(Message).
	Size int64
	// Realtime is the entry wallclock timestamp in microseconds since epoch.
	// Used only for display; never for ranking correctness.
	Realtime int64
	// Ord is the deterministic observation ordinal assigned by the scanner.
	// Ranking ties resolve on Ord, which makes results independent of
	// worker scheduling.
	Ord uint64
}

// RecordSource yields the records of a single journal file.
type RecordSource interface {
	// Next returns the next record or io.EOF at end of file.
	Next() (*Record, error)
	Close() error
	// Entries reports the total entry count per the container header.
	// Zero means unknown.
	Entries() uint64
}

// OpenFunc opens a record source for one input file. The scanner takes it
// as a parameter so tests can inject synthetic sources.
type OpenFunc func(path string) (RecordSource, error)
