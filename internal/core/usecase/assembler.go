package usecase

import (
	"strings"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
)

const (
	documentHeader    = "Context:\n"
	documentSeparator = "\n\n"
)

// AssembleDocuments joins retrieved documents into one grounding-context
// block, each document prefixed with a fixed header, in input order. An empty
// slice yields an empty string: synthesis then proceeds without grounding.
func AssembleDocuments(docs []domain.Document) string {
	if len(docs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, documentHeader+doc.Content)
	}
	return strings.Join(parts, documentSeparator)
}
