package conversation

import (
	"fmt"
	"regexp"
	"strconv"
)

// TimeMatch is a resolved time-of-day. Ambiguous marks a bare "às N" with
// N in [1,7] and no period qualifier; the engine asks a clarifying question
// for those instead of guessing.
type TimeMatch struct {
	Clock     string
	Ambiguous bool
}

// Ordered (pattern, resolver) rules. Evaluated top to bottom, first match
// wins: specific phrases must be tested before the generic ones that would
// swallow them. Patterns run against normalizeText output, so they are
// written unaccented.
var timeRules = []struct {
	re      *regexp.Regexp
	resolve func(m []string) *TimeMatch
}{
	// meio-dia / meia-noite
	{
		regexp.MustCompile(`meio[\s-]?dia`),
		func(_ []string) *TimeMatch { return &TimeMatch{Clock: "12:00"} },
	},
	{
		regexp.MustCompile(`meia[\s-]?noite`),
		func(_ []string) *TimeMatch { return &TimeMatch{Clock: "00:00"} },
	},
	// spelled-out hour + period: "quatro da tarde"
	{
		regexp.MustCompile(`\b(uma|duas|tres|quatro|cinco|seis|sete|oito|nove|dez|onze|doze)\s+(?:horas?\s+)?da\s+(manha|tarde|noite)\b`),
		func(m []string) *TimeMatch {
			return clockFor(hourWords[m[1]], 0, m[2])
		},
	},
	// digit + period: "às 4 da tarde", "4:30 da tarde", "12 da manhã"
	{
		regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(?:horas?\s+)?da\s+(manha|tarde|noite)\b`),
		func(m []string) *TimeMatch {
			return clockFor(atoi(m[1]), atoi(m[2]), m[3])
		},
	},
	// literal "HH:MM" or "HHhMM" (also bare "10h")
	{
		regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`),
		func(m []string) *TimeMatch {
			return clockFor(atoi(m[1]), atoi(m[2]), "")
		},
	},
	{
		regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`),
		func(m []string) *TimeMatch {
			return clockFor(atoi(m[1]), atoi(m[2]), "")
		},
	},
	// "N horas"
	{
		regexp.MustCompile(`\b(\d{1,2})\s+horas?\b`),
		func(m []string) *TimeMatch {
			return clockFor(atoi(m[1]), 0, "")
		},
	},
	// bare "às N" with no period qualifier. Ambiguous for N in [1,7].
	{
		regexp.MustCompile(`\bas\s+(\d{1,2})\b`),
		func(m []string) *TimeMatch {
			h := atoi(m[1])
			tm := clockFor(h, 0, "")
			if tm != nil && h >= 1 && h <= 7 {
				tm.Ambiguous = true
			}
			return tm
		},
	},
}

// A standalone period word answers the clarifying question asked for an
// ambiguous hour. "amanha" never matches: the boundary requires "manha" as
// its own word.
var periodOnlyRE = regexp.MustCompile(`\b(?:d[ae]\s+)?(manha|tarde|noite)\b`)

var hourWords = map[string]int{
	"uma": 1, "duas": 2, "tres": 3, "quatro": 4, "cinco": 5, "seis": 6,
	"sete": 7, "oito": 8, "nove": 9, "dez": 10, "onze": 11, "doze": 12,
}

// ExtractTime resolves a time-of-day from free text, or nil when none is
// present or the matched value is out of range.
func ExtractTime(text string) *TimeMatch {
	norm := normalizeText(text)
	for _, rule := range timeRules {
		m := rule.re.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		return rule.resolve(m)
	}
	return nil
}

// ExtractPeriod returns the day-period qualifier present in text ("manha",
// "tarde" or "noite"), or "" when none is mentioned.
func ExtractPeriod(text string) string {
	m := periodOnlyRE.FindStringSubmatch(normalizeText(text))
	if m == nil {
		return ""
	}
	return m[1]
}

// ResolvePeriod applies a period answer to a previously ambiguous clock
// value: "04:00" plus "tarde" resolves to 16:00. Nil when the clock cannot
// be parsed.
func ResolvePeriod(clock, period string) *TimeMatch {
	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return nil
	}
	return clockFor(hour, minute, period)
}

// clockFor applies the 12h-to-24h adjustment and range validation shared by
// every rule: period in {tarde, noite} adds 12 to hours below 12, and
// "12 da manhã" maps to midnight. Out-of-range values are discarded.
func clockFor(hour, minute int, period string) *TimeMatch {
	switch period {
	case "tarde", "noite":
		if hour < 12 {
			hour += 12
		}
	case "manha":
		if hour == 12 {
			hour = 0
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil
	}
	return &TimeMatch{Clock: clockString(hour, minute)}
}

func clockString(hour, minute int) string {
	hh := strconv.Itoa(hour)
	if hour < 10 {
		hh = "0" + hh
	}
	mm := strconv.Itoa(minute)
	if minute < 10 {
		mm = "0" + mm
	}
	return hh + ":" + mm
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
