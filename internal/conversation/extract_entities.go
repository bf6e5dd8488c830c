package conversation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/barbearia-labs/barber-ai-platform/internal/booking"
	"github.com/barbearia-labs/barber-ai-platform/internal/clients"
)

// ExtractEmployee matches a known employee name inside the message, then
// scans history newest-first. Matching is a case-insensitive substring test.
func ExtractEmployee(message string, history []ChatMessage, employees []booking.Employee) *booking.Employee {
	if e := employeeIn(message, employees); e != nil {
		return e
	}
	for i := len(history) - 1; i >= 0; i-- {
		if e := employeeIn(history[i].Content, employees); e != nil {
			return e
		}
	}
	return nil
}

func employeeIn(text string, employees []booking.Employee) *booking.Employee {
	norm := normalizeText(text)
	for i := range employees {
		if name := normalizeText(employees[i].Name); name != "" && strings.Contains(norm, name) {
			return &employees[i]
		}
	}
	return nil
}

// ExtractService matches a known service name the same way employees are
// matched: current message first, then history newest-first.
func ExtractService(message string, history []ChatMessage, services []booking.Service) *booking.Service {
	if s := serviceIn(message, services); s != nil {
		return s
	}
	for i := len(history) - 1; i >= 0; i-- {
		if s := serviceIn(history[i].Content, services); s != nil {
			return s
		}
	}
	return nil
}

func serviceIn(text string, services []booking.Service) *booking.Service {
	norm := normalizeText(text)
	for i := range services {
		if name := normalizeText(services[i].Name); name != "" && strings.Contains(norm, name) {
			return &services[i]
		}
	}
	return nil
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)meu\s+nome\s+(?:e|é)\s+([\p{L}]+(?:\s+[\p{L}]+)?)`),
	regexp.MustCompile(`(?i)me\s+chamo\s+([\p{L}]+(?:\s+[\p{L}]+)?)`),
	regexp.MustCompile(`(?i)\bsou\s+(?:o|a)\s+([\p{L}]+(?:\s+[\p{L}]+)?)`),
}

// ExtractName pulls a client name out of self-introduction phrases. A
// profile match by phone overrides whatever this returns.
func ExtractName(message string, history []ChatMessage) string {
	if n := nameIn(message); n != "" {
		return n
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != ChatRoleUser {
			continue
		}
		if n := nameIn(history[i].Content); n != "" {
			return n
		}
	}
	return ""
}

func nameIn(text string) string {
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return titleCase(m[1])
		}
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ExtractPhone finds a Brazilian phone number (10 or 11 digits after
// normalization) in the message, then in history newest-first.
func ExtractPhone(message string, history []ChatMessage) string {
	if p := phoneIn(message); p != "" {
		return p
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != ChatRoleUser {
			continue
		}
		if p := phoneIn(history[i].Content); p != "" {
			return p
		}
	}
	return ""
}

var phoneRunRE = regexp.MustCompile(`[\d()+\-.\s]{10,}`)

func phoneIn(text string) string {
	for _, run := range phoneRunRE.FindAllString(text, -1) {
		if d := clients.NormalizePhone(run); len(d) >= 10 {
			return d
		}
	}
	return ""
}
