package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("QA_CONFIG_FILE", "")
	t.Setenv("QA_SOURCE", "")
	t.Setenv("QA_TOP_K", "")
	t.Setenv("QA_SEARCH_MODE", "")
	t.Setenv("QA_CHAIN_TYPE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QASource != "vector" {
		t.Fatalf("expected default source vector, got %q", cfg.QASource)
	}
	if cfg.QATopK != 4 {
		t.Fatalf("expected default top k 4, got %d", cfg.QATopK)
	}
	if cfg.QASearchMode != "similarity" {
		t.Fatalf("expected default search mode similarity, got %q", cfg.QASearchMode)
	}
	if cfg.QAChainType != "stuff" {
		t.Fatalf("expected default chain type stuff, got %q", cfg.QAChainType)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("QA_CONFIG_FILE", "")
	t.Setenv("QA_SOURCE", "retriever")
	t.Setenv("QA_TOP_K", "8")
	t.Setenv("QA_SEARCH_MODE", "diversity")
	t.Setenv("QA_MMR_LAMBDA", "0.3")
	t.Setenv("QA_RETURN_SOURCES", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QASource != "retriever" {
		t.Fatalf("expected source override, got %q", cfg.QASource)
	}
	if cfg.QATopK != 8 {
		t.Fatalf("expected top k 8, got %d", cfg.QATopK)
	}
	if cfg.QASearchMode != "diversity" {
		t.Fatalf("expected search mode diversity, got %q", cfg.QASearchMode)
	}
	if cfg.QAMMRLambda != 0.3 {
		t.Fatalf("expected lambda 0.3, got %f", cfg.QAMMRLambda)
	}
	if cfg.QAReturnSources {
		t.Fatalf("expected return sources disabled")
	}
}

func TestLoadYAMLFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "qa_top_k: 6\nqa_search_mode: diversity\napi_port: \"9999\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("QA_CONFIG_FILE", path)
	t.Setenv("QA_SEARCH_MODE", "similarity")
	t.Setenv("QA_TOP_K", "")
	t.Setenv("API_PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.QATopK != 6 {
		t.Fatalf("expected file value 6, got %d", cfg.QATopK)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("expected file port 9999, got %q", cfg.APIPort)
	}
	if cfg.QASearchMode != "similarity" {
		t.Fatalf("env must override file, got %q", cfg.QASearchMode)
	}
}
