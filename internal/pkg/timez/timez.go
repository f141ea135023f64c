// Package timez converts journal realtime stamps, which are microseconds
// since the Unix epoch, into display form.
package timez

import (
	"errors"
	"time"
)

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

const (
	displayFormat = "Jan _2 15:04:05.000000"
)

func RealtimeToTime(usec int64) time.Time {
	return time.UnixMicro(usec).UTC()
}

// FormatRealtime renders a realtime stamp the way journalctl does. Zero
// stamps render empty; some entries carry no clock.
func FormatRealtime(usec int64) string {
	if usec <= 0 {
		return ""
	}
	return RealtimeToTime(usec).Format(displayFormat)
}
