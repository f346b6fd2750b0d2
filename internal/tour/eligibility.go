// Package tour derives tour-booking eligibility from the operator's
// free-text tour-date notice.
package tour

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The notice is free-form admin input. Two conventional phrasings carry a
// cutoff; anything else falls back to tomorrow so the booking flow is never
// blocked by a malformed notice.
var (
	whitespaceRe    = regexp.MustCompile(`[\s\x{00A0}]+`)
	expiresBeforeRe = regexp.MustCompile(`(?i)expires before ([a-z]+)\.? (\d+)(?:st|nd|rd|th)?`)
	expiresOnRe     = regexp.MustCompile(`(?i)expires on ([a-z]+)\.? (\d+)(?:st|nd|rd|th)?`)
)

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// MinimumTourDate returns the earliest selectable tour date for the given
// notice text. "expires before <Month> <Day>" yields that exact day;
// "expires on <Month> <Day>" yields the day after. The year is always
// today's year; the notice never carries one. If no cutoff can be parsed the
// minimum is tomorrow. The returned date sits at midday to keep calendar
// comparisons clear of timezone boundaries. Never fails.
func MinimumTourDate(notice string, today time.Time) time.Time {
	if d, ok := NoticeCutoff(notice, today); ok {
		return d
	}

	return midday(today.AddDate(0, 0, 1))
}

// NoticeCutoff reports the earliest selectable tour date the notice names,
// and whether it names one at all.
func NoticeCutoff(notice string, today time.Time) (time.Time, bool) {
	normalized := strings.TrimSpace(whitespaceRe.ReplaceAllString(notice, " "))

	if d, ok := parseCutoff(expiresBeforeRe, normalized, today.Year()); ok {
		return d, true
	}
	if d, ok := parseCutoff(expiresOnRe, normalized, today.Year()); ok {
		return d.AddDate(0, 0, 1), true
	}

	return time.Time{}, false
}

func parseCutoff(re *regexp.Regexp, notice string, year int) (time.Time, bool) {
	m := re.FindStringSubmatch(notice)
	if m == nil {
		return time.Time{}, false
	}

	token := strings.ToLower(m[1])
	if len(token) < 3 {
		return time.Time{}, false
	}

	month, ok := months[token[:3]]
	if !ok {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, false
	}

	d := time.Date(year, month, day, 12, 0, 0, 0, time.Local)
	// time.Date normalizes out-of-range days (Sep 32 becomes Oct 2); a
	// shifted result means the day was not a real calendar day.
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}

	return d, true
}

func midday(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}
