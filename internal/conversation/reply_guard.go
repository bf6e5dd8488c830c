package conversation

import (
	"fmt"
	"strings"
)

// GuardResult reports what the reply guard did to a generated reply.
type GuardResult struct {
	// Overridden is true when the generated text claimed success while the
	// structured state says the booking is not committed.
	Overridden bool
	// Reply is the text to send: the original when clean, a replacement
	// when overridden.
	Reply string
}

// GuardReply enforces the rule that narrative output never asserts a booking
// while the structured state disagrees. The LLM's text is advisory; success
// and failure derive only from structured checks. When the generated reply
// contains a success phrase and fields are still missing (or no commit
// happened this turn), the text is discarded and replaced with an honest
// request for the missing data.
func GuardReply(generated string, missing []string, committed bool) GuardResult {
	if committed || !containsSuccessMarker(generated) {
		return GuardResult{Reply: generated}
	}
	return GuardResult{
		Overridden: true,
		Reply:      missingFieldsReply(missing),
	}
}

func missingFieldsReply(missing []string) string {
	if len(missing) == 0 {
		return "Ainda não confirmei o agendamento. Responda \"sim\" para confirmar."
	}
	return fmt.Sprintf(
		"Ainda preciso de alguns dados para agendar: %s. Pode me informar?",
		strings.Join(missing, ", "))
}
