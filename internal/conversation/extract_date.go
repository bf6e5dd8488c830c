package conversation

import (
	"regexp"
	"strings"
	"time"
)

// DateSource records which rule resolved the date. The engine persists the
// date back into the session only for SourceMessage and SourceSession, never
// for a freshly defaulted value, so a carried context is not overwritten by
// a degenerate default.
type DateSource string

const (
	SourceMessage DateSource = "message"
	SourceSession DateSource = "session"
	SourceHistory DateSource = "history"
	SourceDefault DateSource = "default"
)

var (
	afterTomorrowRE = regexp.MustCompile(`depois\s+de\s+amanha`)
	tomorrowRE      = regexp.MustCompile(`\bamanha\b`)
	todayRE         = regexp.MustCompile(`\bhoje\b`)
	dayOfMonthRE    = regexp.MustCompile(`\bdia\s+(\d{1,2})\b`)
)

// weekday vocabulary, unaccented (normalizeText form). Longer names first so
// "segunda-feira" is not half-matched by looser tokens.
var weekdayWords = []struct {
	word string
	day  time.Weekday
}{
	{"segunda", time.Monday},
	{"terca", time.Tuesday},
	{"quarta", time.Wednesday},
	{"quinta", time.Thursday},
	{"sexta", time.Friday},
	{"sabado", time.Saturday},
	{"domingo", time.Sunday},
}

// ExtractDate resolves the booking date with a strict priority order:
// explicit reference in the current message, the session's carried date,
// a reference found in history (newest first, "hoje" excluded since a
// historical "today" is stale), and finally today.
func ExtractDate(message string, history []ChatMessage, carried *time.Time, now time.Time) (time.Time, DateSource) {
	if d, ok := dateFromText(message, now, true); ok {
		return d, SourceMessage
	}

	if carried != nil {
		return *carried, SourceSession
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != ChatRoleUser {
			continue
		}
		if d, ok := dateFromText(history[i].Content, now, false); ok {
			return d, SourceHistory
		}
	}

	return startOfDay(now), SourceDefault
}

// dateFromText applies the in-message date rules in order: relative terms
// ("depois de amanhã" before "amanhã" since the former contains the latter),
// weekday names, then "dia N".
func dateFromText(text string, now time.Time, includeToday bool) (time.Time, bool) {
	norm := normalizeText(text)
	today := startOfDay(now)

	if afterTomorrowRE.MatchString(norm) {
		return today.AddDate(0, 0, 2), true
	}
	if tomorrowRE.MatchString(norm) {
		return today.AddDate(0, 0, 1), true
	}
	if includeToday && todayRE.MatchString(norm) {
		return today, true
	}

	for _, w := range weekdayWords {
		if !strings.Contains(norm, w.word) {
			continue
		}
		return nextWeekday(today, w.day), true
	}

	if m := dayOfMonthRE.FindStringSubmatch(norm); m != nil {
		n := atoi(m[1])
		if n >= 1 && n <= 31 {
			return dayOfMonth(today, n), true
		}
	}

	return time.Time{}, false
}

// nextWeekday resolves the next future occurrence of a weekday. A request
// for today's own weekday means next week, never today.
func nextWeekday(today time.Time, target time.Weekday) time.Time {
	delta := (int(target) - int(today.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return today.AddDate(0, 0, delta)
}

// dayOfMonth resolves "dia N": day N of the current month when still ahead,
// otherwise day N of the next month (December rolls into January).
func dayOfMonth(today time.Time, n int) time.Time {
	year, month := today.Year(), today.Month()
	if n < today.Day() {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return time.Date(year, month, n, 0, 0, 0, 0, today.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
