package timez

import (
	"testing"
	"time"
)

func TestRealtimeToTime(t *testing.T) {
	// 2024-01-15T10:30:00.123456Z
	usec := time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC).UnixMicro()

	got := RealtimeToTime(usec)
	if got.Year() != 2024 || got.Nanosecond() != 123456000 {
		t.Errorf("got %v", got)
	}
}

func TestFormatRealtime(t *testing.T) {
	usec := time.Date(2024, 1, 15, 10, 30, 0, 123456000, time.UTC).UnixMicro()

	if got := FormatRealtime(usec); got != "Jan 15 10:30:00.123456" {
		t.Errorf("got %q", got)
	}

	if got := FormatRealtime(0); got != "" {
		t.Errorf("zero stamp = %q, want empty", got)
	}
}
