package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/retrieval-qa/internal/core/domain"
)

// Retriever answers "get relevant documents" with Postgres full-text search.
// It owns ranking and limiting; callers treat it as an opaque retrieval
// backend.
type Retriever struct {
	db    *sql.DB
	limit int
}

func NewRetriever(db *sql.DB, limit int) *Retriever {
	if limit <= 0 {
		limit = 4
	}
	return &Retriever{db: db, limit: limit}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *Retriever) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS qa_documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	content TEXT NOT NULL,
	tsv TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', content)) STORED,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_qa_documents_tsv ON qa_documents USING GIN (tsv);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *Retriever) GetRelevantDocuments(ctx context.Context, question string) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT d.id, d.title, d.source, d.content, ts_rank_cd(d.tsv, q.query) AS rank
FROM qa_documents d, websearch_to_tsquery('english', $1) q(query)
WHERE d.tsv @@ q.query
ORDER BY rank DESC, d.id
LIMIT $2
`, question, r.limit)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var id, title, source, content string
		var rank float64
		if err := rows.Scan(&id, &title, &source, &content, &rank); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, domain.Document{
			Content: content,
			Metadata: map[string]any{
				"id":     id,
				"title":  title,
				"source": source,
				"rank":   rank,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
