package conversation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/barbearia-labs/barber-ai-platform/internal/booking"
)

func draftFixture() Draft {
	d := day(2026, 9, 8) // a Tuesday
	return Draft{
		ClientName:  "João",
		ClientPhone: "11988887777",
		Service:     &booking.Service{ID: uuid.New(), Name: "Corte", DurationMinutes: 30},
		Employee:    &booking.Employee{ID: uuid.New(), Name: "Carlos"},
		Date:        &d,
		Clock:       "14:00",
	}
}

func TestIsConfirmation(t *testing.T) {
	yes := []string{
		"sim", "Sim, pode ser", "confirmo", "confirma aí", "está certo",
		"correto", "pode criar", "tá bom", "ok", "isso mesmo", "exato", "perfeito",
	}
	for _, msg := range yes {
		if !IsConfirmation(msg) {
			t.Errorf("%q should confirm", msg)
		}
	}

	no := []string{"talvez", "não", "deixa eu ver", "simpatia", "quero mudar o horário"}
	for _, msg := range no {
		if IsConfirmation(msg) {
			t.Errorf("%q should not confirm", msg)
		}
	}
}

func TestMissingFields(t *testing.T) {
	d := draftFixture()
	if !d.Complete() {
		t.Fatalf("fixture should be complete, missing %v", d.MissingFields())
	}

	d.ClientPhone = ""
	d.Clock = ""
	missing := d.MissingFields()
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing fields, got %v", missing)
	}

	d = draftFixture()
	d.TimeAmbiguous = true
	if d.Complete() {
		t.Fatal("ambiguous time must not count as a known time")
	}
}

func TestRecapRoundTrip(t *testing.T) {
	d := draftFixture()
	recap := BuildRecap(d)

	rf, ok := parseRecap(recap)
	if !ok {
		t.Fatalf("recap did not parse:\n%s", recap)
	}
	if rf.Service != "Corte" || rf.Employee != "Carlos" || rf.Time != "14:00" {
		t.Fatalf("unexpected fields: %+v", rf)
	}
	if rf.Date != FormatDateLong(*d.Date) {
		t.Fatalf("date field %q, want %q", rf.Date, FormatDateLong(*d.Date))
	}
}

func TestLastRecapStopsAtSuccessMarker(t *testing.T) {
	recap := BuildRecap(draftFixture())
	history := []ChatMessage{
		{Role: ChatRoleAssistant, Content: recap},
		{Role: ChatRoleUser, Content: "sim"},
		{Role: ChatRoleAssistant, Content: "Agendamento confirmado! Até terça."},
		{Role: ChatRoleUser, Content: "quero marcar outro corte"},
	}

	// The completed booking ends that attempt; the old recap must not be
	// treated as the baseline for the new one.
	if rf := LastRecap(history); rf != nil {
		t.Fatalf("expected nil after success marker, got %+v", rf)
	}

	if rf := LastRecap(history[:2]); rf == nil {
		t.Fatal("recap with no marker after it should be found")
	}
}

func TestDiffRecap(t *testing.T) {
	d := draftFixture()
	prev, _ := parseRecap(BuildRecap(d))

	if delta := DiffRecap(prev, d); delta.Any() {
		t.Fatalf("identical draft should produce no delta: %+v", delta)
	}

	d.Clock = "15:00"
	delta := DiffRecap(prev, d)
	if !delta.Time || delta.Date || delta.Service || delta.Employee {
		t.Fatalf("expected time-only delta, got %+v", delta)
	}
}

func TestReadsAsQuestion(t *testing.T) {
	questions := []string{"pode ser às 15?", "tem horário amanhã", "está disponível sexta", "rola de manhã?"}
	for _, msg := range questions {
		if !ReadsAsQuestion(msg) {
			t.Errorf("%q should read as a question", msg)
		}
	}
	if ReadsAsQuestion("muda para às 15") {
		t.Error("edit instruction should not read as a question")
	}
}

func TestDeltaReplyPhrasing(t *testing.T) {
	d := draftFixture()
	d.Clock = "15:00"
	delta := Delta{Time: true}

	answer := DeltaReply(delta, d, true)
	if !strings.HasPrefix(answer, "Sim, 15:00 está livre") {
		t.Fatalf("question phrasing: got %q", answer)
	}
	if strings.Contains(answer, "Carlos") || strings.Contains(answer, "Corte") {
		t.Fatalf("unchanged fields must not appear in the delta sentence: %q", answer)
	}

	ack := DeltaReply(delta, d, false)
	if !strings.HasPrefix(ack, "Alterado:") {
		t.Fatalf("edit phrasing: got %q", ack)
	}
}

func TestFormatDateLong(t *testing.T) {
	d := time.Date(2026, time.September, 8, 0, 0, 0, 0, time.UTC)
	if got := FormatDateLong(d); got != "terça-feira, 8 de setembro" {
		t.Fatalf("got %q", got)
	}
}
