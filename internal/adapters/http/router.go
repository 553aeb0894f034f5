package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/retrieval-qa/internal/config"
	"github.com/kirillkom/retrieval-qa/internal/core/domain"
	"github.com/kirillkom/retrieval-qa/internal/core/ports"
	"github.com/kirillkom/retrieval-qa/internal/observability/metrics"
)

type Router struct {
	qa      ports.QuestionAnswerer
	metrics *metrics.ServerMetrics
	cfg     config.Config
}

func NewRouter(qa ports.QuestionAnswerer, m *metrics.ServerMetrics, cfg config.Config) *Router {
	return &Router{qa: qa, metrics: m, cfg: cfg}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/qa/query", rt.query)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, 100*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Result          string            `json:"result"`
	SourceDocuments []domain.Document `json:"source_documents,omitempty"`
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req queryRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field 'query' is required"})
		return
	}

	start := time.Now()
	answer, err := rt.qa.Answer(r.Context(), req.Query)
	if err != nil {
		rt.observeQuery("error", 0, time.Since(start))
		status := mapErrorToHTTPStatus(err)
		writeJSON(w, status, map[string]string{"error": publicErrorMessage(err, status)})
		return
	}
	rt.observeQuery("ok", len(answer.Sources), time.Since(start))

	writeJSON(w, http.StatusOK, queryResponse{
		Result:          answer.Text,
		SourceDocuments: answer.Sources,
	})
}

func (rt *Router) observeQuery(outcome string, sources int, duration time.Duration) {
	if rt.metrics != nil {
		rt.metrics.ObserveQuery(outcome, sources, duration)
	}
}

func publicErrorMessage(err error, status int) string {
	if status >= 500 && !errors.Is(err, domain.ErrTemporary) {
		return "internal error"
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
