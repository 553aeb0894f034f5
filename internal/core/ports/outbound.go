package ports

import (
	"context"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
)

// CompletionModel is a black-box text completion service. One prompt in, one
// synchronous text completion out; no streaming is observed at this layer.
type CompletionModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Embedder builds a vector for query text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever returns documents relevant to a question. The backend owns all
// ranking and limiting logic.
type Retriever interface {
	GetRelevantDocuments(ctx context.Context, question string) ([]domain.Document, error)
}

// VectorStore performs nearest-neighbor search over an opaque index. Both
// methods share a signature and differ only in ranking policy. The extra map
// carries backend-specific search parameters.
type VectorStore interface {
	SimilaritySearch(ctx context.Context, question string, k int, extra map[string]any) ([]domain.Document, error)
	MaxMarginalRelevanceSearch(ctx context.Context, question string, k int, extra map[string]any) ([]domain.Document, error)
}
