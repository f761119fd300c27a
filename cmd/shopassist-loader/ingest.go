package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopassist/internal/backend"
	"github.com/kailas-cloud/shopassist/internal/config"
	"github.com/kailas-cloud/shopassist/internal/domain"
	logpkg "github.com/kailas-cloud/shopassist/internal/logger"
	"github.com/kailas-cloud/shopassist/internal/metrics"
	openaiTransport "github.com/kailas-cloud/shopassist/internal/transport/openai"
	ingestuc "github.com/kailas-cloud/shopassist/internal/usecase/ingest"
)

type ingestOptions struct {
	file      string
	recreate  bool
	dryRun    bool
	batchSize int
}

func newIngestCmd(root *rootOptions) *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Embed and store the records of a seed file",
		Example: `  shopassist-loader ingest --file seed/market.yaml
  shopassist-loader ingest --file seed/market.yaml --recreate
  shopassist-loader ingest --file seed/market.yaml --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIngest(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "seed YAML file (required)")
	cmd.Flags().BoolVar(&opts.recreate, "recreate", false, "drop and recreate indexes or tables before loading")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and validate the seed without writing")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", ingestuc.DefaultBatchSize, "texts per embedding request")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runIngest(cmd *cobra.Command, root *rootOptions, opts *ingestOptions) error {
	seed, err := readSeed(opts.file)
	if err != nil {
		return err
	}
	if err := seed.Validate(); err != nil {
		return err
	}
	if opts.dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "seed ok: %d shops, %d knowledge entries\n", len(seed.Shops), len(seed.Knowledge))
		return nil
	}

	cfg, err := root.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is not set: %w", domain.ErrServiceUnavailable)
	}

	logger, err := logpkg.NewLogger(root.env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	metrics.RegisterServiceMetrics()

	store, err := backend.Open(ctx, &cfg)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer store.Close()

	svc := ingestuc.New(documentEmbedder(&cfg), store, store.Schema).WithBatchSize(opts.batchSize)
	rep, err := svc.Load(ctx, seed, opts.recreate)
	if err != nil {
		return fmt.Errorf("ingest %s: %w", opts.file, err)
	}

	logger.Info("Seed loaded",
		zap.String("file", opts.file),
		zap.String("driver", store.Driver),
		zap.Int("shops", rep.Shops),
		zap.Int("knowledge", rep.Knowledge),
		zap.Int("embedding_tokens", rep.Tokens),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "loaded %d shops, %d knowledge entries (%d tokens)\n",
		rep.Shops, rep.Knowledge, rep.Tokens)
	return nil
}

func readSeed(path string) (*ingestuc.Seed, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	return ingestuc.ParseSeed(f)
}

// documentEmbedder applies the document-side instruction for asymmetric models.
func documentEmbedder(cfg *config.Config) domain.BatchEmbedder {
	base := openaiTransport.NewEmbedder(openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if cfg.Embedding.DocumentInstruction != "" {
		return domain.NewDocumentEmbedder(base, domain.Instruction(cfg.Embedding.DocumentInstruction))
	}
	return base
}
