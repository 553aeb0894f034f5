package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
	"github.com/kirillkom/retrieval-qa/internal/core/ports"
)

const (
	defaultFetchK    = 20
	defaultMMRLambda = 0.5
)

// Client searches a Qdrant collection and implements the vector-store port.
// The question is embedded through the configured embedder; everything else
// about the index is opaque to this adapter's callers.
type Client struct {
	baseURL    string
	collection string
	embedder   ports.Embedder
	httpClient *http.Client
}

func New(baseURL, collection string, embedder ports.Embedder) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		embedder:   embedder,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// searchParams are the recognized backend-specific extra parameters. Unknown
// keys are rejected rather than ignored.
type searchParams struct {
	filterCategory string
	scoreThreshold float64
	fetchK         int
	lambda         float64
}

func parseSearchParams(extra map[string]any) (searchParams, error) {
	params := searchParams{fetchK: defaultFetchK, lambda: defaultMMRLambda}
	for key, value := range extra {
		switch key {
		case "filter_category":
			s, ok := value.(string)
			if !ok {
				return params, domain.WrapError(domain.ErrInvalidInput, "search params",
					fmt.Errorf("filter_category must be a string"))
			}
			params.filterCategory = s
		case "score_threshold":
			f, ok := toFloat64(value)
			if !ok {
				return params, domain.WrapError(domain.ErrInvalidInput, "search params",
					fmt.Errorf("score_threshold must be a number"))
			}
			params.scoreThreshold = f
		case "fetch_k":
			f, ok := toFloat64(value)
			if !ok || f < 1 {
				return params, domain.WrapError(domain.ErrInvalidInput, "search params",
					fmt.Errorf("fetch_k must be a positive number"))
			}
			params.fetchK = int(f)
		case "lambda":
			f, ok := toFloat64(value)
			if !ok || f < 0 || f > 1 {
				return params, domain.WrapError(domain.ErrInvalidInput, "search params",
					fmt.Errorf("lambda must be a number in [0,1]"))
			}
			params.lambda = f
		default:
			return params, domain.WrapError(domain.ErrInvalidInput, "search params",
				fmt.Errorf("unsupported search param %q", key))
		}
	}
	return params, nil
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// SimilaritySearch returns the k nearest documents ranked purely by cosine
// relevance to the question.
func (c *Client) SimilaritySearch(ctx context.Context, question string, k int, extra map[string]any) ([]domain.Document, error) {
	params, err := parseSearchParams(extra)
	if err != nil {
		return nil, err
	}

	queryVector, err := c.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := c.search(ctx, queryVector, k, params, false)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, p.toDocument())
	}
	return docs, nil
}

// MaxMarginalRelevanceSearch fetches a wider candidate set with vectors and
// selects k documents balancing relevance against redundancy.
func (c *Client) MaxMarginalRelevanceSearch(ctx context.Context, question string, k int, extra map[string]any) ([]domain.Document, error) {
	params, err := parseSearchParams(extra)
	if err != nil {
		return nil, err
	}
	fetchK := params.fetchK
	if fetchK < k {
		fetchK = k
	}

	queryVector, err := c.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := c.search(ctx, queryVector, fetchK, params, true)
	if err != nil {
		return nil, err
	}

	selected := maxMarginalRelevance(queryVector, points, params.lambda, k)
	docs := make([]domain.Document, 0, len(selected))
	for _, p := range selected {
		docs = append(docs, p.toDocument())
	}
	return docs, nil
}

type scoredPoint struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
	Vector  []float32      `json:"vector"`
}

func (p scoredPoint) toDocument() domain.Document {
	text := ""
	metadata := make(map[string]any, len(p.Payload))
	for key, value := range p.Payload {
		if key == "text" {
			text, _ = value.(string)
			continue
		}
		metadata[key] = value
	}
	metadata["score"] = p.Score
	return domain.Document{Content: text, Metadata: metadata}
}

func (c *Client) search(ctx context.Context, queryVector []float32, limit int, params searchParams, withVectors bool) ([]scoredPoint, error) {
	reqBody := map[string]any{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}
	if withVectors {
		reqBody["with_vector"] = true
	}
	if params.scoreThreshold > 0 {
		reqBody["score_threshold"] = params.scoreThreshold
	}
	if params.filterCategory != "" {
		reqBody["filter"] = map[string]any{
			"must": []map[string]any{
				{
					"key": "category",
					"match": map[string]any{
						"value": params.filterCategory,
					},
				},
			},
		}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(respBody)); msg != "" {
			return nil, fmt.Errorf("qdrant search status: %s: %s", resp.Status, msg)
		}
		return nil, fmt.Errorf("qdrant search status: %s", resp.Status)
	}

	var searchResp struct {
		Result []scoredPoint `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return searchResp.Result, nil
}
