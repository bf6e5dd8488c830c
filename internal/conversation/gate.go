package conversation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/barbearia-labs/barber-ai-platform/internal/booking"
)

// GateState is the position of a conversation in the booking state machine.
type GateState int

const (
	// StateCollecting means at least one required field is still missing.
	StateCollecting GateState = iota
	// StateAwaitingConfirmation means all fields are present and a recap
	// was (or is about to be) shown; an explicit affirmative is required.
	StateAwaitingConfirmation
	// StateConfirmed means the user affirmed the recap; the turn proceeds
	// to commit.
	StateConfirmed
)

// Draft accumulates the fields a booking needs before it can be committed.
type Draft struct {
	ClientName    string
	ClientPhone   string
	Service       *booking.Service
	Employee      *booking.Employee
	Date          *time.Time
	Clock         string
	TimeAmbiguous bool
}

// MissingFields lists what is still unknown, in the order the recap shows
// fields. Employee is not listed: with no named barber the engine picks one.
func (d Draft) MissingFields() []string {
	var missing []string
	if d.Service == nil {
		missing = append(missing, "serviço")
	}
	if d.Date == nil {
		missing = append(missing, "data")
	}
	if d.Clock == "" || d.TimeAmbiguous {
		missing = append(missing, "horário")
	}
	if d.ClientName == "" {
		missing = append(missing, "nome")
	}
	if d.ClientPhone == "" {
		missing = append(missing, "telefone")
	}
	return missing
}

// Complete reports whether every required field is present and unambiguous.
func (d Draft) Complete() bool {
	return len(d.MissingFields()) == 0
}

// confirmationWords is the fixed affirmative set. Membership is checked on
// normalized text; anything else keeps the gate in AwaitingConfirmation.
var confirmationWords = []string{
	"sim",
	"confirmo",
	"confirma",
	"esta certo",
	"correto",
	"pode criar",
	"ta bom",
	"ok",
	"isso mesmo",
	"exato",
	"perfeito",
}

// Short tokens need word boundaries so "simpatia" or "tokyo" do not confirm
// a booking.
var shortConfirmRE = regexp.MustCompile(`\b(sim|ok)\b`)

// IsConfirmation reports whether the message contains an explicit
// affirmative from the fixed keyword set.
func IsConfirmation(message string) bool {
	norm := normalizeText(message)
	if shortConfirmRE.MatchString(norm) {
		return true
	}
	for _, w := range confirmationWords {
		if w == "sim" || w == "ok" {
			continue
		}
		if strings.Contains(norm, w) {
			return true
		}
	}
	return false
}

// successMarkers are phrases that assert a booking happened. They gate two
// things: the reply guard refuses to emit them while fields are missing, and
// delta tracking resets when one appears after the last recap (a completed
// booking means the next request is a new attempt, not an edit).
var successMarkers = []string{
	"confirmado",
	"agendamento criado",
	"esta agendado",
	"marquei",
	"reservado",
}

func containsSuccessMarker(text string) bool {
	norm := normalizeText(text)
	for _, m := range successMarkers {
		if strings.Contains(norm, m) {
			return true
		}
	}
	return false
}

// Recap field labels. BuildRecap writes them and parseRecap reads them back,
// so delta detection diffs against exactly what the user saw.
const (
	recapServiceLabel  = "Serviço:"
	recapEmployeeLabel = "Profissional:"
	recapDateLabel     = "Data:"
	recapTimeLabel     = "Horário:"
	recapNameLabel     = "Nome:"
	recapPhoneLabel    = "Telefone:"
)

// BuildRecap renders the structured confirmation request for a complete
// draft.
func BuildRecap(d Draft) string {
	var b strings.Builder
	b.WriteString("Confirma os dados do agendamento?\n\n")
	fmt.Fprintf(&b, "%s %s\n", recapServiceLabel, d.Service.Name)
	fmt.Fprintf(&b, "%s %s\n", recapEmployeeLabel, d.Employee.Name)
	fmt.Fprintf(&b, "%s %s\n", recapDateLabel, FormatDateLong(*d.Date))
	fmt.Fprintf(&b, "%s %s\n", recapTimeLabel, d.Clock)
	fmt.Fprintf(&b, "%s %s\n", recapNameLabel, d.ClientName)
	fmt.Fprintf(&b, "%s %s\n", recapPhoneLabel, d.ClientPhone)
	b.WriteString("\nResponda \"sim\" para confirmar.")
	return b.String()
}

// recapFields is a recap parsed back out of its own message text.
type recapFields struct {
	Service  string
	Employee string
	Date     string
	Time     string
}

func parseRecap(text string) (recapFields, bool) {
	var rf recapFields
	found := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, recapServiceLabel):
			rf.Service = strings.TrimSpace(strings.TrimPrefix(line, recapServiceLabel))
			found = true
		case strings.HasPrefix(line, recapEmployeeLabel):
			rf.Employee = strings.TrimSpace(strings.TrimPrefix(line, recapEmployeeLabel))
		case strings.HasPrefix(line, recapDateLabel):
			rf.Date = strings.TrimSpace(strings.TrimPrefix(line, recapDateLabel))
		case strings.HasPrefix(line, recapTimeLabel):
			rf.Time = strings.TrimSpace(strings.TrimPrefix(line, recapTimeLabel))
		}
	}
	return rf, found && rf.Time != ""
}

// LastRecap finds the most recent recap in history, unless a success marker
// appears after it. A marker after the recap means that booking attempt
// finished; the current exchange is a new one and must not be diffed against
// the old recap.
func LastRecap(history []ChatMessage) *recapFields {
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		if msg.Role != ChatRoleAssistant {
			continue
		}
		if containsSuccessMarker(msg.Content) {
			return nil
		}
		if rf, ok := parseRecap(msg.Content); ok {
			return &rf
		}
	}
	return nil
}

// Delta is the set of fields that changed between the prior recap and the
// newly resolved draft.
type Delta struct {
	Service  bool
	Employee bool
	Date     bool
	Time     bool
}

func (d Delta) Any() bool {
	return d.Service || d.Employee || d.Date || d.Time
}

// DiffRecap compares a complete draft against the recap the user last saw.
func DiffRecap(prev recapFields, d Draft) Delta {
	return Delta{
		Service:  prev.Service != d.Service.Name,
		Employee: prev.Employee != d.Employee.Name,
		Date:     prev.Date != FormatDateLong(*d.Date),
		Time:     prev.Time != d.Clock,
	}
}

var questionCues = []string{
	"tem horario",
	"disponivel",
	"rola",
	"consegue",
	"pode ser",
	"da pra",
}

// ReadsAsQuestion reports whether the utterance asks about availability
// rather than instructs an edit. Delta replies are phrased as an answer for
// questions and as an acknowledgment otherwise.
func ReadsAsQuestion(message string) bool {
	norm := normalizeText(strings.TrimSpace(message))
	if strings.HasSuffix(norm, "?") {
		return true
	}
	for _, cue := range questionCues {
		if strings.Contains(norm, cue) {
			return true
		}
	}
	return false
}

// DeltaReply phrases the changed fields only. Question-shaped utterances get
// an answer ("Sim, 15:00 está livre"); edits get an acknowledgment.
func DeltaReply(delta Delta, d Draft, asQuestion bool) string {
	var changes []string
	if delta.Time {
		changes = append(changes, fmt.Sprintf("%s está livre", d.Clock))
	}
	if delta.Date {
		changes = append(changes, FormatDateLong(*d.Date))
	}
	if delta.Service {
		changes = append(changes, d.Service.Name)
	}
	if delta.Employee {
		changes = append(changes, "com "+d.Employee.Name)
	}

	joined := strings.Join(changes, ", ")
	if asQuestion {
		return fmt.Sprintf("Sim, %s. Responda \"sim\" para confirmar.", joined)
	}
	return fmt.Sprintf("Alterado: %s. Responda \"sim\" para confirmar.", joined)
}
