package booking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// interval is a half-open [Start, End) range in minutes since midnight.
type interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open minute intervals [a1,a2) and [b1,b2)
// intersect. Touching boundaries do not overlap: [9:00,9:30) and [9:30,10:00)
// are compatible. Every conflict decision in the engine (initial check,
// alternative generation, commit-time re-check) goes through this predicate.
func Overlaps(a1, a2, b1, b2 int) bool {
	return a1 < b2 && b1 < a2
}

// ParseClock converts "HH:MM" (or "HH:MM:SS" as stored by Postgres time
// columns) to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("booking: invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("booking: invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("booking: invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("booking: clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// subtract removes cut from each interval in base, splitting where needed.
// Result keeps chronological order.
func subtract(base []interval, cut interval) []interval {
	if cut.End <= cut.Start {
		return base
	}
	out := make([]interval, 0, len(base)+1)
	for _, iv := range base {
		if !Overlaps(iv.Start, iv.End, cut.Start, cut.End) {
			out = append(out, iv)
			continue
		}
		if cut.Start > iv.Start {
			out = append(out, interval{Start: iv.Start, End: cut.Start})
		}
		if cut.End < iv.End {
			out = append(out, interval{Start: cut.End, End: iv.End})
		}
	}
	return out
}

// sortIntervals orders intervals chronologically in place.
func sortIntervals(ivs []interval) {
	sort.Slice(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
}
