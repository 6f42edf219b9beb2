package csvio

import (
	"strconv"
	"strings"
	"time"
)

// Both dialects share the Italian wall-clock convention dd/mm/yyyy
// hh:mm:ss. Seconds are optional on input; "-" and the empty string mean
// absent. Timestamps are local wall-clock, no zone handling.

const timeLayout = "02/01/2006 15:04:05"

// FormatTime renders t in the export convention, or "" for nil.
func FormatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

// ParseTime decodes a timestamp field. It returns nil for absent or
// unparsable values rather than an error: a bad timestamp just leaves
// the field empty, it never fails the row.
func ParseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}

	fields := strings.Fields(s)
	if len(fields) < 2 {
		return nil
	}

	dateParts := strings.Split(fields[0], "/")
	if len(dateParts) < 3 {
		return nil
	}
	day, err1 := strconv.Atoi(dateParts[0])
	month, err2 := strconv.Atoi(dateParts[1])
	year, err3 := strconv.Atoi(dateParts[2])

	timeParts := strings.Split(fields[1], ":")
	if len(timeParts) < 2 {
		return nil
	}
	hour, err4 := strconv.Atoi(timeParts[0])
	minute, err5 := strconv.Atoi(timeParts[1])
	sec := 0
	if len(timeParts) > 2 {
		sec, _ = strconv.Atoi(timeParts[2])
	}

	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			return nil
		}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.Local)
	return &t
}
