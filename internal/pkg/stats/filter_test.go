package stats

import (
	"testing"
)

func TestFilterAdmit(t *testing.T) {
	rec := &Record{
		Unit:    "sshd.service",
		Message: []byte("Accepted publickey for root"),
	}

	tests := map[string]struct {
		unit    string
		pattern string
		want    bool
	}{
		"no filters":          {want: true},
		"unit match":          {unit: "sshd.service", want: true},
		"unit mismatch":       {unit: "cron.service", want: false},
		"pattern match":       {pattern: "publickey", want: true},
		"pattern mismatch":    {pattern: "password", want: false},
		"both match":          {unit: "sshd.service", pattern: "Accepted", want: true},
		"unit only mismatch":  {unit: "cron.service", pattern: "Accepted", want: false},
		"regex only mismatch": {unit: "sshd.service", pattern: "denied", want: false},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			f, err := NewFilter(test.unit, test.pattern)
			if err != nil {
				t.Fatalf("compile filter: %v", err)
			}
			if got := f.Admit(rec); got != test.want {
				t.Errorf("admit = %v, want %v", got, test.want)
			}
		})
	}
}

func TestFilterBadPattern(t *testing.T) {
	if _, err := NewFilter("", "(unclosed"); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
}

func TestFilterNonUTF8Message(t *testing.T) {
	f, err := NewFilter("", "abc")
	if err != nil {
		t.Fatalf("compile filter: %v", err)
	}

	// Invalid UTF-8 bytes must neither panic nor error, just not match
	// non-literal patterns.
	rec := &Record{Message: []byte{0xff, 0xfe, 'a', 'b', 'c', 0x80}}
	if !f.Admit(rec) {
		t.Error("literal should match inside non-UTF8 payload")
	}

	f2, err := NewFilter("", "xyz")
	if err != nil {
		t.Fatalf("compile filter: %v", err)
	}
	if f2.Admit(rec) {
		t.Error("pattern should not match")
	}
}

func TestNilFilterAdmitsEverything(t *testing.T) {
	var f *Filter
	if !f.Admit(&Record{Message: []byte("anything")}) {
		t.Error("nil filter must admit")
	}
}
