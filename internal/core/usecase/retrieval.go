package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
	"github.com/kirillkom/retrieval-qa/internal/core/ports"
)

const defaultTopK = 4

// RetrievalConfig governs vector-store document selection. Extra carries
// backend-specific search parameters forwarded untouched to the store.
type RetrievalConfig struct {
	K     int
	Mode  domain.SearchMode
	Extra map[string]any
}

func (c RetrievalConfig) normalize() RetrievalConfig {
	out := c
	if out.K <= 0 {
		out.K = defaultTopK
	}
	if out.Mode == "" {
		out.Mode = domain.SearchModeSimilarity
	}
	return out
}

func (c RetrievalConfig) validate() error {
	switch c.Mode {
	case domain.SearchModeSimilarity, domain.SearchModeDiversity:
		return nil
	default:
		return domain.WrapError(domain.ErrConfiguration, "retrieval config",
			fmt.Errorf("search mode %q not allowed", c.Mode))
	}
}

func (c RetrievalConfig) isZero() bool {
	return c.K == 0 && c.Mode == "" && len(c.Extra) == 0
}

type sourceKind int

const (
	sourceRetriever sourceKind = iota
	sourceVectorSearch
)

// DocumentSource selects the candidate documents for one question. It is a
// tagged variant over an external retriever and vector-store search; ordering
// returned by the backend is preserved as-is.
type DocumentSource struct {
	kind      sourceKind
	retriever ports.Retriever
	store     ports.VectorStore
	cfg       RetrievalConfig
}

// NewRetrieverSource delegates document selection entirely to the retriever.
func NewRetrieverSource(retriever ports.Retriever) (*DocumentSource, error) {
	if retriever == nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "retriever source",
			errors.New("retriever is required"))
	}
	return &DocumentSource{kind: sourceRetriever, retriever: retriever}, nil
}

// NewVectorSearchSource selects documents through vector-store search. The
// search mode is validated here, not at fetch time.
func NewVectorSearchSource(store ports.VectorStore, cfg RetrievalConfig) (*DocumentSource, error) {
	if store == nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "vector search source",
			errors.New("vector store is required"))
	}
	cfg = cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &DocumentSource{kind: sourceVectorSearch, store: store, cfg: cfg}, nil
}

func (s *DocumentSource) Fetch(ctx context.Context, question string) ([]domain.Document, error) {
	switch s.kind {
	case sourceRetriever:
		return s.retriever.GetRelevantDocuments(ctx, question)
	case sourceVectorSearch:
		switch s.cfg.Mode {
		case domain.SearchModeSimilarity:
			return s.store.SimilaritySearch(ctx, question, s.cfg.K, s.cfg.Extra)
		case domain.SearchModeDiversity:
			return s.store.MaxMarginalRelevanceSearch(ctx, question, s.cfg.K, s.cfg.Extra)
		default:
			// Unreachable after construction-time validation.
			return nil, domain.WrapError(domain.ErrInvalidConfiguration, "fetch documents",
				fmt.Errorf("search mode %q not allowed", s.cfg.Mode))
		}
	default:
		return nil, domain.WrapError(domain.ErrInvalidConfiguration, "fetch documents",
			errors.New("unknown document source"))
	}
}
