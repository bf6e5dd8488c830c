package conversation

import (
	"fmt"
	"strings"
	"time"
)

// BusinessLocation resolves the fixed business timezone. All "now" math in
// the engine (weekday resolution, date rollover, session expiry) runs in this
// zone regardless of the caller's locale. Falls back to a fixed UTC-3 offset
// when tzdata is unavailable.
func BusinessLocation(name string) *time.Location {
	if name == "" {
		name = "America/Sao_Paulo"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("-03", -3*60*60)
	}
	return loc
}

var weekdayNamesPT = [7]string{
	"domingo",
	"segunda-feira",
	"terça-feira",
	"quarta-feira",
	"quinta-feira",
	"sexta-feira",
	"sábado",
}

var monthNamesPT = [13]string{
	"",
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatDateLong renders a date the way the recap shows it, e.g.
// "terça-feira, 2 de setembro".
func FormatDateLong(d time.Time) string {
	return fmt.Sprintf("%s, %d de %s",
		weekdayNamesPT[d.Weekday()], d.Day(), monthNamesPT[d.Month()])
}

// FormatDateISO renders the wire form "2006-01-02".
func FormatDateISO(d time.Time) string {
	return d.Format("2006-01-02")
}

// deaccent folds the accented characters that appear in pt-BR scheduling
// vocabulary so one unaccented pattern matches both spellings.
var deaccent = strings.NewReplacer(
	"á", "a", "à", "a", "â", "a", "ã", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

// normalizeText lowercases and strips accents for pattern matching.
func normalizeText(s string) string {
	return deaccent.Replace(strings.ToLower(s))
}
