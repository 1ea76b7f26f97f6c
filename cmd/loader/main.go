package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"research-assistant/internal/adapter/embedding"
	"research-assistant/internal/adapter/repository"
	"research-assistant/internal/domain"
	"research-assistant/internal/infra"
	"research-assistant/internal/infra/config"
	"research-assistant/internal/loader"
)

var (
	version = "dev"

	// Global flags
	verbose bool

	// Run command flags
	dataPath    string
	batchSize   int
	concurrency int
	dryRun      bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "loader",
	Short:   "Ingest the arXiv dataset into the paper corpus",
	Version: version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Embed and insert the dataset",
	Long: `Read the arXiv JSON dump, embed each paper and bulk-insert the
batches into PostgreSQL. Loading is skipped when the corpus already
holds documents.

Examples:
  # Load with defaults from the environment
  loader run

  # Load a specific file with larger batches
  loader run --data ./data/filtered_arxiv_2020.json --batch-size 200

  # See what would be inserted
  loader run --dry-run`,
	RunE: runLoad,
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show the current corpus size",
	RunE:  showCount,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	runCmd.Flags().StringVar(&dataPath, "data", "", "dataset path (defaults to DATA_PATH)")
	runCmd.Flags().IntVar(&batchSize, "batch-size", 0, "papers per batch (defaults to BATCH_SIZE)")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of concurrent batches")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the dataset without inserting")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(countCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func connect(ctx context.Context, cfg *config.Config) (domain.PaperRepository, func(), error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := infra.NewPostgresDB(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to db: %w", err)
	}
	return repository.NewPaperRepository(pool, cfg.PapersTable), pool.Close, nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg := config.Load()

	if dataPath == "" {
		dataPath = cfg.DataPath
	}
	if batchSize == 0 {
		batchSize = cfg.BatchSize
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down...", slog.String("signal", sig.String()))
		cancel()
	}()

	papers, closePool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	embedder := embedding.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, cfg.EmbeddingTimeout)

	logger.Info("starting load",
		slog.String("data_path", dataPath),
		slog.Int("batch_size", batchSize),
		slog.Int("concurrency", concurrency),
		slog.Bool("dry_run", dryRun),
	)

	l := loader.New(papers, embedder, logger)
	if err := l.Run(ctx, loader.Config{
		DataPath:    dataPath,
		BatchSize:   batchSize,
		Concurrency: concurrency,
		DryRun:      dryRun,
	}); err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("load interrupted")
			return nil
		}
		return fmt.Errorf("run load: %w", err)
	}

	return nil
}

func showCount(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx := context.Background()
	papers, closePool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePool()

	count, err := papers.Count(ctx)
	if err != nil {
		return fmt.Errorf("count papers: %w", err)
	}

	fmt.Printf("Corpus contains %d papers\n", count)
	return nil
}
