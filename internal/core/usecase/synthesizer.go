package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
	"github.com/kirillkom/retrieval-qa/internal/core/ports"
)

// ChainType names the strategy used to combine retrieved documents into
// completion-model calls.
type ChainType string

const (
	// ChainTypeStuff stuffs all documents into a single prompt.
	ChainTypeStuff ChainType = "stuff"
	// ChainTypeRefine seeds an answer from the first document and refines
	// it with each subsequent one.
	ChainTypeRefine ChainType = "refine"
	// ChainTypeMapReduce extracts relevant text per document, then composes
	// the final answer from the extracts in one reduce call.
	ChainTypeMapReduce ChainType = "map_reduce"
)

const auxIntermediateStepsKey = "intermediate_steps"

// ChainTypeConfig carries the extra prompts used by multi-pass strategies.
// Zero-value templates select the built-in defaults.
type ChainTypeConfig struct {
	RefinePrompt PromptTemplate
	MapPrompt    PromptTemplate
	ReducePrompt PromptTemplate
}

// Synthesizer turns retrieved documents plus a question into answer text via
// the completion model. It never retries; backend failures surface unchanged.
type Synthesizer struct {
	model     ports.CompletionModel
	chainType ChainType

	prompt       PromptTemplate
	refinePrompt PromptTemplate
	mapPrompt    PromptTemplate
	reducePrompt PromptTemplate
}

func newSynthesizer(model ports.CompletionModel, chainType ChainType, prompt PromptTemplate, cfg ChainTypeConfig) (*Synthesizer, error) {
	if model == nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "build synthesizer",
			errors.New("completion model is required"))
	}
	switch chainType {
	case ChainTypeStuff, ChainTypeRefine, ChainTypeMapReduce:
	default:
		return nil, domain.WrapError(domain.ErrConfiguration, "build synthesizer",
			fmt.Errorf("chain type %q not allowed", chainType))
	}

	s := &Synthesizer{
		model:        model,
		chainType:    chainType,
		prompt:       prompt,
		refinePrompt: cfg.RefinePrompt,
		mapPrompt:    cfg.MapPrompt,
		reducePrompt: cfg.ReducePrompt,
	}
	if s.prompt.IsZero() {
		s.prompt = DefaultQAPrompt()
	}
	if s.refinePrompt.IsZero() {
		s.refinePrompt = defaultRefinePrompt()
	}
	if s.mapPrompt.IsZero() {
		s.mapPrompt = defaultMapPrompt()
	}
	if s.reducePrompt.IsZero() {
		s.reducePrompt = defaultReducePrompt()
	}
	return s, nil
}

// Synthesize produces the answer text. The auxiliary map carries
// implementation-specific metadata: intermediate step outputs for the
// multi-pass strategies, nothing for the single-pass one.
func (s *Synthesizer) Synthesize(ctx context.Context, docs []domain.Document, question string) (string, map[string]any, error) {
	switch s.chainType {
	case ChainTypeRefine:
		return s.synthesizeRefine(ctx, docs, question)
	case ChainTypeMapReduce:
		return s.synthesizeMapReduce(ctx, docs, question)
	default:
		return s.synthesizeStuff(ctx, docs, question)
	}
}

func (s *Synthesizer) synthesizeStuff(ctx context.Context, docs []domain.Document, question string) (string, map[string]any, error) {
	prompt := s.prompt.Render(map[string]string{
		"context":  AssembleDocuments(docs),
		"question": question,
	})
	answer, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("complete: %w", err)
	}
	return answer, map[string]any{}, nil
}

func (s *Synthesizer) synthesizeRefine(ctx context.Context, docs []domain.Document, question string) (string, map[string]any, error) {
	var initial []domain.Document
	if len(docs) > 0 {
		initial = docs[:1]
	}

	answer, _, err := s.synthesizeStuff(ctx, initial, question)
	if err != nil {
		return "", nil, err
	}

	steps := []string{answer}
	for _, doc := range docs[len(initial):] {
		prompt := s.refinePrompt.Render(map[string]string{
			"question":        question,
			"existing_answer": answer,
			"context":         AssembleDocuments([]domain.Document{doc}),
		})
		answer, err = s.model.Complete(ctx, prompt)
		if err != nil {
			return "", nil, fmt.Errorf("refine: %w", err)
		}
		steps = append(steps, answer)
	}
	return answer, map[string]any{auxIntermediateStepsKey: steps}, nil
}

func (s *Synthesizer) synthesizeMapReduce(ctx context.Context, docs []domain.Document, question string) (string, map[string]any, error) {
	extracts := make([]string, 0, len(docs))
	for _, doc := range docs {
		prompt := s.mapPrompt.Render(map[string]string{
			"context":  AssembleDocuments([]domain.Document{doc}),
			"question": question,
		})
		extract, err := s.model.Complete(ctx, prompt)
		if err != nil {
			return "", nil, fmt.Errorf("map document: %w", err)
		}
		extracts = append(extracts, extract)
	}

	prompt := s.reducePrompt.Render(map[string]string{
		"context":  strings.Join(extracts, documentSeparator),
		"question": question,
	})
	answer, err := s.model.Complete(ctx, prompt)
	if err != nil {
		return "", nil, fmt.Errorf("reduce: %w", err)
	}
	return answer, map[string]any{auxIntermediateStepsKey: extracts}, nil
}
