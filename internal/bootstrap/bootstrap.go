package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/retrieval-qa/internal/config"
	"github.com/kirillkom/retrieval-qa/internal/core/domain"
	"github.com/kirillkom/retrieval-qa/internal/core/ports"
	"github.com/kirillkom/retrieval-qa/internal/core/usecase"
	"github.com/kirillkom/retrieval-qa/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/retrieval-qa/internal/infrastructure/resilience"
	"github.com/kirillkom/retrieval-qa/internal/infrastructure/retriever/postgres"
	"github.com/kirillkom/retrieval-qa/internal/infrastructure/vector/qdrant"
)

// App holds the wired application graph.
type App struct {
	Config config.Config
	QA     ports.QuestionAnswerer

	closeFn func()
}

// New wires the document source, the language model and the QA pipeline from
// configuration. The returned App owns the backend connections; callers must
// Close it on shutdown.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())
	model := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)

	pipelineCfg := usecase.Config{
		ReturnSourceDocuments: cfg.QAReturnSources,
	}
	closeFn := func() {}

	switch cfg.QASource {
	case "vector":
		store := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, model)
		pipelineCfg.VectorStore = store
		pipelineCfg.Retrieval = retrievalConfig(cfg)
	case "retriever":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		retriever := postgres.NewRetriever(db, cfg.RetrieverLimit)
		if err := retriever.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		pipelineCfg.Retriever = retriever
		closeFn = func() { _ = db.Close() }
	default:
		return nil, domain.WrapError(domain.ErrConfiguration, "bootstrap",
			fmt.Errorf("qa source %q not allowed, want vector or retriever", cfg.QASource))
	}

	qa, err := buildPipeline(model, cfg, pipelineCfg)
	if err != nil {
		closeFn()
		return nil, err
	}

	return &App{
		Config:  cfg,
		QA:      qa,
		closeFn: closeFn,
	}, nil
}

func buildPipeline(model ports.CompletionModel, cfg config.Config, pipelineCfg usecase.Config) (*usecase.QAPipeline, error) {
	switch cfg.QAChainType {
	case "", string(usecase.ChainTypeStuff):
		return usecase.NewFromLanguageModel(model, usecase.PromptTemplate{}, pipelineCfg)
	case string(usecase.ChainTypeRefine), string(usecase.ChainTypeMapReduce):
		return usecase.NewFromChainType(model, usecase.ChainType(cfg.QAChainType), usecase.ChainTypeConfig{}, pipelineCfg)
	default:
		return nil, domain.WrapError(domain.ErrConfiguration, "bootstrap",
			errors.New("chain type "+cfg.QAChainType+" not allowed"))
	}
}

func retrievalConfig(cfg config.Config) usecase.RetrievalConfig {
	rc := usecase.RetrievalConfig{
		K:    cfg.QATopK,
		Mode: domain.SearchMode(cfg.QASearchMode),
	}

	extra := map[string]any{}
	if cfg.QAFilterCategory != "" {
		extra["filter_category"] = cfg.QAFilterCategory
	}
	if rc.Mode == domain.SearchModeDiversity {
		if cfg.QAMMRFetchK > 0 {
			extra["fetch_k"] = cfg.QAMMRFetchK
		}
		// Lambda zero is a valid pure-diversity setting, so the configured
		// value is always forwarded.
		extra["lambda"] = cfg.QAMMRLambda
	}
	if len(extra) > 0 {
		rc.Extra = extra
	}
	return rc
}

// Close releases backend connections.
func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
