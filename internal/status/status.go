package status

import (
	"strings"
)

// Bucket is a coarse age band extracted from the duration part of a
// container status line. Buckets are ordered, so two of them can be
// compared directly to tell whether a container's reported age moved.
type Bucket int

const (
	BucketSeconds Bucket = iota
	BucketMinutes
	BucketHours
	BucketWeeks
	BucketMonths
	BucketYears
)

func (b Bucket) String() string {
	switch b {
	case BucketSeconds:
		return "seconds"
	case BucketMinutes:
		return "minutes"
	case BucketHours:
		return "hours"
	case BucketWeeks:
		return "weeks"
	case BucketMonths:
		return "months"
	case BucketYears:
		return "years"
	}
	return "unknown"
}

// ParsedStatus is the phase and age bucket carried by a docker status
// line such as "Up 5 minutes" or "Exited (0) 2 hours ago".
type ParsedStatus struct {
	Phase  string
	Bucket Bucket
}

// bucketByUnit maps the duration words docker prints to buckets. Day
// spans and the singular week/month/year forms are not mapped, so a
// status carrying one of them fails to parse.
var bucketByUnit = map[string]Bucket{
	"second":  BucketSeconds,
	"seconds": BucketSeconds,
	"minute":  BucketMinutes,
	"minutes": BucketMinutes,
	"hour":    BucketHours,
	"hours":   BucketHours,
	"weeks":   BucketWeeks,
	"months":  BucketMonths,
	"years":   BucketYears,
}

// Parse extracts the phase and age bucket from a container status line.
//
// The phase is the first whitespace-delimited token. For running
// containers the line ends with the duration unit ("Up 3 minutes"),
// while every other phase appends "ago" ("Exited (137) 2 hours ago"),
// so the unit is taken from the last or second-to-last position
// accordingly.
func Parse(text string) (ParsedStatus, error) {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return ParsedStatus{}, NewMalformedStatusError(text)
	}

	phase := parts[0]

	var unitIdx int
	if phase == "Up" {
		unitIdx = len(parts) - 1
	} else {
		unitIdx = len(parts) - 2
	}
	if unitIdx < 0 {
		// Single-token statuses like "Created" or "Dead" carry no duration.
		return ParsedStatus{}, NewMalformedStatusError(text)
	}

	unit := parts[unitIdx]
	bucket, ok := bucketByUnit[unit]
	if !ok {
		return ParsedStatus{}, NewUnknownUnitError(unit)
	}

	return ParsedStatus{Phase: phase, Bucket: bucket}, nil
}
