package commands

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/smartfind/smartfind-go/internal/catalog"
	"github.com/smartfind/smartfind-go/internal/ingestion"
	"github.com/smartfind/smartfind-go/internal/logging"
	"github.com/smartfind/smartfind-go/internal/rag"
)

// NewIngestCmd constructs the `smartfind ingest` command, which tags,
// embeds, and indexes the cleaned document CSV into the Qdrant vector store.
func NewIngestCmd() *cobra.Command {
	var input string
	var tagRate float64

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Index cleaned product documents into the vector store",
		Long: `Tag, embed, and upsert the cleaned document CSV produced by
'smartfind extract' into the Qdrant vector store.

Each product is tagged by the chat model (rate-limited to spare the
backend), embedded, and upserted as a single batch. Tag extraction and
embedding degrade gracefully; only a vector store failure aborts the run.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: ecommerce-products)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  MODEL_PROVIDER       Chat backend for tagging: ollama, openai, azure, gemini
  EMBEDDING_*          Embedding backend overrides (see README)

Examples:
  smartfind ingest --input documents.csv
  smartfind ingest -i data/documents.csv --tag-rate 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			docs, err := catalog.ReadDocuments(input)
			if err != nil {
				return fmt.Errorf("ingest: reading documents: %w", err)
			}
			log.Info("loaded documents", slog.Int("count", len(docs)))

			chat, _, err := buildChatModel(ctx)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			emb, dims, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			qcfg := qdrantConfigFromEnv(dims)
			vectorStore, err := rag.NewQdrantStore(ctx, qcfg)
			if err != nil {
				return fmt.Errorf("ingest: failed to connect to Qdrant at %s:%d: %w", qcfg.Host, qcfg.Port, err)
			}
			defer vectorStore.Close()
			log.Info("qdrant store ready",
				slog.String("host", qcfg.Host),
				slog.Int("port", qcfg.Port),
				slog.String("collection", qcfg.Collection),
			)

			pipeline, err := ingestion.NewPipeline(chat, emb, vectorStore, &ingestion.Config{
				TagRequestsPerSecond: tagRate,
				Registerer:           prometheus.NewRegistry(),
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			log.Info("starting ingestion", slog.Int("documents", len(docs)))

			if err := pipeline.Ingest(ctx, docs, func(msg string) {
				log.Info(msg)
			}); err != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", err)
			}

			log.Info("ingestion complete", slog.Int("documents", len(docs)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "documents.csv", "Cleaned document CSV path")
	cmd.Flags().Float64Var(&tagRate, "tag-rate", 0, "Tag-extraction requests per second (default 2)")

	return cmd
}
