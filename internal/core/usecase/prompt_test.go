package usecase

import (
	"strings"
	"testing"
)

func TestPromptTemplateRenderSubstitutesVars(t *testing.T) {
	tmpl := NewPromptTemplate("Q: {question}\nC: {context}")
	got := tmpl.Render(map[string]string{
		"question": "what?",
		"context":  "because",
	})
	if got != "Q: what?\nC: because" {
		t.Fatalf("Render() = %q", got)
	}
}

func TestDefaultQAPromptHasPlaceholders(t *testing.T) {
	tmpl := DefaultQAPrompt()
	if tmpl.IsZero() {
		t.Fatalf("default prompt must not be empty")
	}
	rendered := tmpl.Render(map[string]string{"context": "CTX-MARK", "question": "Q-MARK"})
	if !strings.Contains(rendered, "CTX-MARK") || !strings.Contains(rendered, "Q-MARK") {
		t.Fatalf("default prompt missing placeholders: %q", rendered)
	}
	if strings.Contains(rendered, "{context}") || strings.Contains(rendered, "{question}") {
		t.Fatalf("unsubstituted placeholder left in %q", rendered)
	}
}
