package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
	"github.com/kirillkom/retrieval-qa/internal/core/ports"
)

const (
	// DefaultInputKey names the question entry in Run's input map.
	DefaultInputKey = "query"
	// DefaultOutputKey names the answer entry in Run's output map.
	DefaultOutputKey = "result"
	// SourceDocumentsKey names the optional source-documents output entry.
	SourceDocumentsKey = "source_documents"
)

// QAPipeline answers a question from documents fetched by its source. All
// wiring is fixed at construction; instances hold no mutable state, so
// concurrent calls are safe as long as the backing model and retrieval
// backend are.
type QAPipeline struct {
	source *DocumentSource
	synth  *Synthesizer

	inputKey              string
	outputKey             string
	returnSourceDocuments bool
}

// Config wires a pipeline. Exactly one of Retriever or VectorStore must be
// set; Retrieval applies only to the vector-store case. Unrecognized
// combinations are rejected at construction, not ignored.
type Config struct {
	Retriever   ports.Retriever
	VectorStore ports.VectorStore
	Retrieval   RetrievalConfig

	InputKey              string
	OutputKey             string
	ReturnSourceDocuments bool
}

// NewFromLanguageModel builds a pipeline over the default single-pass
// document assembly. An empty prompt selects the default answer template.
func NewFromLanguageModel(model ports.CompletionModel, prompt PromptTemplate, cfg Config) (*QAPipeline, error) {
	synth, err := newSynthesizer(model, ChainTypeStuff, prompt, ChainTypeConfig{})
	if err != nil {
		return nil, err
	}
	return build(synth, cfg)
}

// NewFromChainType builds a pipeline over a named document assembly strategy.
func NewFromChainType(model ports.CompletionModel, chainType ChainType, ctCfg ChainTypeConfig, cfg Config) (*QAPipeline, error) {
	synth, err := newSynthesizer(model, chainType, PromptTemplate{}, ctCfg)
	if err != nil {
		return nil, err
	}
	return build(synth, cfg)
}

func build(synth *Synthesizer, cfg Config) (*QAPipeline, error) {
	var (
		source *DocumentSource
		err    error
	)
	switch {
	case cfg.Retriever != nil && cfg.VectorStore != nil:
		return nil, domain.WrapError(domain.ErrConfiguration, "build pipeline",
			errors.New("retriever and vector store are mutually exclusive"))
	case cfg.Retriever != nil:
		if !cfg.Retrieval.isZero() {
			return nil, domain.WrapError(domain.ErrConfiguration, "build pipeline",
				errors.New("retrieval config applies only to a vector store"))
		}
		source, err = NewRetrieverSource(cfg.Retriever)
	case cfg.VectorStore != nil:
		source, err = NewVectorSearchSource(cfg.VectorStore, cfg.Retrieval)
	default:
		return nil, domain.WrapError(domain.ErrConfiguration, "build pipeline",
			errors.New("a retriever or vector store is required"))
	}
	if err != nil {
		return nil, err
	}

	inputKey := cfg.InputKey
	if inputKey == "" {
		inputKey = DefaultInputKey
	}
	outputKey := cfg.OutputKey
	if outputKey == "" {
		outputKey = DefaultOutputKey
	}

	return &QAPipeline{
		source:                source,
		synth:                 synth,
		inputKey:              inputKey,
		outputKey:             outputKey,
		returnSourceDocuments: cfg.ReturnSourceDocuments,
	}, nil
}

// Run executes one retrieve-then-synthesize pass over the input map. The
// output always holds the answer under the output key and, when enabled, the
// fetched documents under SourceDocumentsKey. No partial results: either both
// steps complete or the call fails entirely.
func (p *QAPipeline) Run(ctx context.Context, inputs map[string]any) (map[string]any, error) {
	raw, ok := inputs[p.inputKey]
	if !ok {
		return nil, domain.WrapError(domain.ErrMissingInput, "run pipeline",
			fmt.Errorf("input key %q is required", p.inputKey))
	}
	question, ok := raw.(string)
	if !ok {
		return nil, domain.WrapError(domain.ErrMissingInput, "run pipeline",
			fmt.Errorf("input key %q must hold a string", p.inputKey))
	}

	docs, err := p.source.Fetch(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	answer, _, err := p.synth.Synthesize(ctx, docs, question)
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	out := map[string]any{p.outputKey: answer}
	if p.returnSourceDocuments {
		out[SourceDocumentsKey] = docs
	}
	return out, nil
}

// Answer is the single-question convenience over Run.
func (p *QAPipeline) Answer(ctx context.Context, question string) (*domain.Answer, error) {
	out, err := p.Run(ctx, map[string]any{p.inputKey: question})
	if err != nil {
		return nil, err
	}

	// Run always stores the synthesized answer as a string under the
	// output key.
	answer := &domain.Answer{Text: out[p.outputKey].(string)}
	if docs, ok := out[SourceDocumentsKey].([]domain.Document); ok {
		answer.Sources = docs
	}
	return answer, nil
}
