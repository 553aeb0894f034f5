package ports

import (
	"context"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for retrieval-augmented answering.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (*domain.Answer, error)
}
