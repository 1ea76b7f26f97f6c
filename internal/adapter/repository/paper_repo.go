package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"research-assistant/internal/domain"
)

type paperRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewPaperRepository creates a PaperRepository over the given table.
func NewPaperRepository(pool *pgxpool.Pool, table string) domain.PaperRepository {
	return &paperRepository{pool: pool, table: table}
}

func (r *paperRepository) BulkInsert(ctx context.Context, papers []domain.Paper) error {
	if len(papers) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(papers))
	for i, p := range papers {
		rows[i] = []interface{}{
			p.ID,
			p.PaperID,
			p.Title,
			p.Authors,
			p.Categories,
			p.Year,
			p.Abstract,
			p.Content,
			p.Embedding,
			p.CreatedAt,
		}
	}

	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{r.table},
		[]string{"id", "paper_id", "title", "authors", "categories", "year", "abstract", "content", "embedding", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert papers: %w", err)
	}

	return nil
}

func (r *paperRepository) SearchByEmbedding(ctx context.Context, queryVector []float32, topK int) ([]domain.SearchResult, error) {
	query := fmt.Sprintf(`
		SELECT content, paper_id, title, authors, categories, year,
		       1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, r.table)

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(queryVector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func (r *paperRepository) SearchByEmbeddingFiltered(ctx context.Context, queryVector []float32, keywords []string, topK int) ([]domain.SearchResult, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("keyword filter requires at least one keyword")
	}

	// Any keyword matching either the title or abstract qualifies a row.
	query := fmt.Sprintf(`
		SELECT content, paper_id, title, authors, categories, year,
		       1 - (embedding <=> $1) AS score
		FROM %s
		WHERE EXISTS (
			SELECT 1 FROM unnest($2::text[]) AS kw
			WHERE title ILIKE '%%' || kw || '%%' OR abstract ILIKE '%%' || kw || '%%'
		)
		ORDER BY embedding <=> $1
		LIMIT $3
	`, r.table)

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(queryVector), keywords, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query papers with keyword filter: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func (r *paperRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", r.table)
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count papers: %w", err)
	}
	return count, nil
}

func scanResults(rows pgx.Rows) ([]domain.SearchResult, error) {
	var results []domain.SearchResult
	for rows.Next() {
		var res domain.SearchResult
		if err := rows.Scan(
			&res.Document,
			&res.Metadata.PaperID,
			&res.Metadata.Title,
			&res.Metadata.Authors,
			&res.Metadata.Categories,
			&res.Metadata.Year,
			&res.Score,
		); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

var _ domain.PaperRepository = (*paperRepository)(nil)
