package conversation

import (
	"strings"
	"testing"
)

func TestGuardReplyOverridesHallucinatedSuccess(t *testing.T) {
	hallucinated := []string{
		"Pronto, está agendado para amanhã!",
		"Confirmado! Te espero às 10.",
		"Seu agendamento foi criado. Agendamento criado com sucesso.",
		"Já marquei seu horário.",
		"Horário reservado!",
	}
	missing := []string{"telefone"}

	for _, reply := range hallucinated {
		res := GuardReply(reply, missing, false)
		if !res.Overridden {
			t.Errorf("%q should be overridden while fields are missing", reply)
			continue
		}
		if containsSuccessMarker(res.Reply) {
			t.Errorf("replacement still claims success: %q", res.Reply)
		}
		if !strings.Contains(res.Reply, "telefone") {
			t.Errorf("replacement should ask for the missing field: %q", res.Reply)
		}
	}
}

func TestGuardReplyPassesCleanText(t *testing.T) {
	res := GuardReply("Claro! Qual o seu telefone?", []string{"telefone"}, false)
	if res.Overridden {
		t.Fatal("clean reply should pass through")
	}
	if res.Reply != "Claro! Qual o seu telefone?" {
		t.Fatalf("reply mutated: %q", res.Reply)
	}
}

func TestGuardReplyAllowsSuccessAfterCommit(t *testing.T) {
	res := GuardReply("Agendamento confirmado!", nil, true)
	if res.Overridden {
		t.Fatal("a real commit may be announced")
	}
}
