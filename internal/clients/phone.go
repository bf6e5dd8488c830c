package clients

import "strings"

// NormalizePhone strips everything but digits and keeps the trailing 11 (or
// 10) digits, which is how Brazilian numbers are compared regardless of
// country code or formatting noise ("+55 (11) 98888-7777" and "11988887777"
// must match).
func NormalizePhone(value string) string {
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) > 11 {
		d = d[len(d)-11:]
	}
	return d
}

// MatchKey reduces a phone to the last 10 digits used for profile lookup,
// so 11-digit mobiles and 10-digit landlines compare on a common suffix.
func MatchKey(value string) string {
	d := NormalizePhone(value)
	if len(d) > 10 {
		d = d[len(d)-10:]
	}
	return d
}
