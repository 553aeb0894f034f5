package bootstrap

import (
	"context"
	"testing"

	"github.com/kirillkom/retrieval-qa/internal/config"
	"github.com/kirillkom/retrieval-qa/internal/core/domain"
	"github.com/kirillkom/retrieval-qa/internal/core/ports"
	"github.com/kirillkom/retrieval-qa/internal/core/usecase"
)

type modelStub struct{}

func (modelStub) Complete(context.Context, string) (string, error) { return "", nil }

func TestRetrievalConfigDiversityForwardsZeroLambda(t *testing.T) {
	cfg := config.Config{
		QATopK:       4,
		QASearchMode: "diversity",
		QAMMRFetchK:  10,
		QAMMRLambda:  0,
	}

	rc := retrievalConfig(cfg)
	if rc.Mode != domain.SearchModeDiversity {
		t.Fatalf("expected diversity mode, got %q", rc.Mode)
	}
	lambda, ok := rc.Extra["lambda"].(float64)
	if !ok {
		t.Fatalf("expected lambda forwarded, got %v", rc.Extra)
	}
	if lambda != 0 {
		t.Fatalf("expected pure-diversity lambda 0, got %v", lambda)
	}
	if rc.Extra["fetch_k"] != 10 {
		t.Fatalf("expected fetch_k forwarded, got %v", rc.Extra)
	}
}

func TestRetrievalConfigSimilarityOmitsMMRParams(t *testing.T) {
	cfg := config.Config{
		QATopK:           6,
		QASearchMode:     "similarity",
		QAMMRFetchK:      10,
		QAMMRLambda:      0.5,
		QAFilterCategory: "news",
	}

	rc := retrievalConfig(cfg)
	if rc.K != 6 {
		t.Fatalf("expected k=6, got %d", rc.K)
	}
	if _, ok := rc.Extra["lambda"]; ok {
		t.Fatalf("similarity mode must not carry lambda: %v", rc.Extra)
	}
	if _, ok := rc.Extra["fetch_k"]; ok {
		t.Fatalf("similarity mode must not carry fetch_k: %v", rc.Extra)
	}
	if rc.Extra["filter_category"] != "news" {
		t.Fatalf("expected category filter forwarded, got %v", rc.Extra)
	}
}

func TestBuildPipelineRejectsUnknownChainType(t *testing.T) {
	var model ports.CompletionModel = modelStub{}
	_, err := buildPipeline(model, config.Config{QAChainType: "summarize"}, usecase.Config{
		Retriever: retrieverStub{},
	})
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

type retrieverStub struct{}

func (retrieverStub) GetRelevantDocuments(context.Context, string) ([]domain.Document, error) {
	return nil, nil
}
