package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
)

type modelFake struct {
	prompts  []string
	response string
	echo     bool
	err      error
}

func (m *modelFake) Complete(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if m.echo {
		return prompt, nil
	}
	return m.response, nil
}

func TestSynthesizeStuffSingleCall(t *testing.T) {
	model := &modelFake{response: "done"}
	synth, err := newSynthesizer(model, ChainTypeStuff, PromptTemplate{}, ChainTypeConfig{})
	if err != nil {
		t.Fatalf("newSynthesizer() error = %v", err)
	}

	docs := []domain.Document{{Content: "alpha"}, {Content: "beta"}}
	answer, aux, err := synth.Synthesize(context.Background(), docs, "why?")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if answer != "done" {
		t.Fatalf("answer = %q", answer)
	}
	if len(model.prompts) != 1 {
		t.Fatalf("expected one model call, got %d", len(model.prompts))
	}
	prompt := model.prompts[0]
	if !strings.Contains(prompt, "Context:\nalpha") || !strings.Contains(prompt, "Context:\nbeta") {
		t.Fatalf("assembled context missing from prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "why?") {
		t.Fatalf("question missing from prompt: %q", prompt)
	}
	if len(aux) != 0 {
		t.Fatalf("stuff strategy should carry no auxiliary data, got %v", aux)
	}
}

func TestSynthesizeStuffEmptyDocuments(t *testing.T) {
	model := &modelFake{response: "no context answer"}
	synth, _ := newSynthesizer(model, ChainTypeStuff, PromptTemplate{}, ChainTypeConfig{})

	answer, _, err := synth.Synthesize(context.Background(), nil, "q")
	if err != nil {
		t.Fatalf("Synthesize() with no documents error = %v", err)
	}
	if answer != "no context answer" {
		t.Fatalf("answer = %q", answer)
	}
	if strings.Contains(model.prompts[0], "Context:") {
		t.Fatalf("empty document set must yield empty context, prompt = %q", model.prompts[0])
	}
}

func TestSynthesizeRefineCallsPerDocument(t *testing.T) {
	model := &modelFake{response: "refined"}
	synth, _ := newSynthesizer(model, ChainTypeRefine, PromptTemplate{}, ChainTypeConfig{})

	docs := []domain.Document{{Content: "one"}, {Content: "two"}, {Content: "three"}}
	answer, aux, err := synth.Synthesize(context.Background(), docs, "q")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if answer != "refined" {
		t.Fatalf("answer = %q", answer)
	}
	if len(model.prompts) != 3 {
		t.Fatalf("expected 3 model calls (initial + 2 refine), got %d", len(model.prompts))
	}
	if !strings.Contains(model.prompts[1], "existing answer") && !strings.Contains(model.prompts[1], "refined") {
		t.Fatalf("refine prompt missing prior answer: %q", model.prompts[1])
	}
	steps, ok := aux[auxIntermediateStepsKey].([]string)
	if !ok || len(steps) != 3 {
		t.Fatalf("expected 3 intermediate steps, got %v", aux)
	}
}

func TestSynthesizeMapReduceCallsPerDocumentPlusReduce(t *testing.T) {
	model := &modelFake{response: "out"}
	synth, _ := newSynthesizer(model, ChainTypeMapReduce, PromptTemplate{}, ChainTypeConfig{})

	docs := []domain.Document{{Content: "one"}, {Content: "two"}}
	_, aux, err := synth.Synthesize(context.Background(), docs, "q")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(model.prompts) != 3 {
		t.Fatalf("expected 2 map calls + 1 reduce call, got %d", len(model.prompts))
	}
	steps, ok := aux[auxIntermediateStepsKey].([]string)
	if !ok || len(steps) != 2 {
		t.Fatalf("expected 2 map extracts, got %v", aux)
	}
}

func TestNewSynthesizerRejectsUnknownChainType(t *testing.T) {
	_, err := newSynthesizer(&modelFake{}, ChainType("summarize"), PromptTemplate{}, ChainTypeConfig{})
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSynthesizePropagatesModelError(t *testing.T) {
	modelErr := errors.New("model offline")
	synth, _ := newSynthesizer(&modelFake{err: modelErr}, ChainTypeStuff, PromptTemplate{}, ChainTypeConfig{})

	_, _, err := synth.Synthesize(context.Background(), []domain.Document{{Content: "x"}}, "q")
	if !errors.Is(err, modelErr) {
		t.Fatalf("expected model error to propagate, got %v", err)
	}
}
