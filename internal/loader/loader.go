package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"

	"research-assistant/internal/domain"
)

// MaxPapers caps how much of the dataset one run ingests.
const MaxPapers = 2000

// skipThreshold is the document count above which the corpus is treated
// as already loaded.
const skipThreshold = 100

// defaultYear labels the dataset snapshot; the source file has no
// per-paper year field.
const defaultYear = 2020

// Config holds one ingestion run's parameters.
type Config struct {
	DataPath    string
	BatchSize   int
	Concurrency int
	DryRun      bool
}

// Loader ingests an arXiv JSON dump into the paper repository.
type Loader struct {
	papers   domain.PaperRepository
	embedder domain.Embedder
	logger   *slog.Logger
}

// New creates a Loader.
func New(papers domain.PaperRepository, embedder domain.Embedder, logger *slog.Logger) *Loader {
	return &Loader{papers: papers, embedder: embedder, logger: logger}
}

// rawPaper mirrors one record in the dataset file.
type rawPaper struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Authors    string `json:"authors"`
	Categories string `json:"categories"`
	Abstract   string `json:"abstract"`
}

// Run reads the dataset, embeds each batch and bulk-inserts the papers.
// A corpus that already holds more than skipThreshold documents is left
// untouched.
func (l *Loader) Run(ctx context.Context, cfg Config) error {
	count, err := l.papers.Count(ctx)
	if err != nil {
		l.logger.Warn("count_check_failed", slog.String("error", err.Error()))
	} else if count > skipThreshold {
		l.logger.Info("corpus_already_loaded", slog.Int64("count", count))
		return nil
	}

	records, err := readDataset(cfg.DataPath)
	if err != nil {
		return err
	}
	if len(records) > MaxPapers {
		records = records[:MaxPapers]
	}
	l.logger.Info("dataset_read",
		slog.String("path", cfg.DataPath),
		slog.Int("papers", len(records)))

	if cfg.DryRun {
		l.logger.Info("dry_run_complete", slog.Int("would_insert", len(records)))
		return nil
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	inserted := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]
		inserted += len(batch)

		g.Go(func() error {
			return l.insertBatch(ctx, batch)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	l.logger.Info("ingestion_complete", slog.Int("inserted", inserted))
	return nil
}

func (l *Loader) insertBatch(ctx context.Context, batch []rawPaper) error {
	texts := make([]string, len(batch))
	for i, rec := range batch {
		texts[i] = documentText(rec)
	}

	vectors, err := l.embedder.Encode(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
	}

	now := time.Now()
	papers := make([]domain.Paper, len(batch))
	for i, rec := range batch {
		papers[i] = domain.Paper{
			ID:         uuid.New(),
			PaperID:    rec.ID,
			Title:      strings.TrimSpace(rec.Title),
			Authors:    strings.TrimSpace(rec.Authors),
			Categories: strings.TrimSpace(rec.Categories),
			Year:       defaultYear,
			Abstract:   strings.TrimSpace(rec.Abstract),
			Content:    texts[i],
			Embedding:  pgvector.NewVector(vectors[i]),
			CreatedAt:  now,
		}
	}

	if err := l.papers.BulkInsert(ctx, papers); err != nil {
		return err
	}

	l.logger.Info("batch_inserted", slog.Int("size", len(papers)))
	return nil
}

// documentText renders one paper as the text blob that gets embedded and
// searched.
func documentText(rec rawPaper) string {
	var sb strings.Builder
	sb.WriteString("Title: ")
	sb.WriteString(strings.TrimSpace(rec.Title))
	sb.WriteString("\n")
	if authors := strings.TrimSpace(rec.Authors); authors != "" {
		sb.WriteString("Authors: ")
		sb.WriteString(authors)
		sb.WriteString("\n")
	}
	if categories := strings.TrimSpace(rec.Categories); categories != "" {
		sb.WriteString("Categories: ")
		sb.WriteString(categories)
		sb.WriteString("\n")
	}
	sb.WriteString("Abstract: ")
	sb.WriteString(strings.TrimSpace(rec.Abstract))
	return sb.String()
}

func readDataset(path string) ([]rawPaper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var records []rawPaper
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return records, nil
}
