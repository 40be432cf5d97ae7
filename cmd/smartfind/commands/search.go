package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartfind/smartfind-go/internal/logging"
	"github.com/smartfind/smartfind-go/internal/search"
	"github.com/smartfind/smartfind-go/internal/store"
)

// NewSearchCmd constructs the `smartfind search` command, which runs one
// query through the full pipeline and prints the markdown report.
func NewSearchCmd() *cobra.Command {
	var useReranker bool
	var useTags bool
	var topK int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the product catalog and print a research report",
		Long: `Run a natural language product query through the full pipeline:
tag extraction, metadata-filtered vector retrieval, optional cross-encoder
reranking, and LLM report synthesis. The markdown report is printed to
stdout and recorded in the search history.

Examples:
  smartfind search "lego for a 6 year old"
  smartfind search --rerank "wireless headphones under 100"
  smartfind search --tags=false "unusual birthday gift ideas"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			query := args[0]

			chat, _, err := buildChatModel(ctx)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			emb, dims, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			pipeline, err := search.New(&search.Config{
				Chat:      chat,
				Embedder:  emb,
				OpenStore: storeOpener(dims),
				Reranker:  buildReranker(log),
				TopK:      topK,
			})
			if err != nil {
				return fmt.Errorf("search: failed to create pipeline: %w", err)
			}

			report, err := pipeline.Search(ctx, query, useReranker, useTags)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			history, closeHistory := openHistory(log)
			defer closeHistory()
			if history != nil {
				rec := store.SearchRecord{
					Query:        query,
					UsedTags:     useTags,
					UsedReranker: useReranker,
					Report:       report,
				}
				if err := history.Append(ctx, rec); err != nil {
					log.Warn("history: append failed", slog.Any("error", err))
				}
			}

			fmt.Fprintln(os.Stdout, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&useReranker, "rerank", false, "Re-score results with the Cohere cross-encoder")
	cmd.Flags().BoolVar(&useTags, "tags", true, "Extract query tags and filter retrieval by them")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of candidates to retrieve (default 5)")

	return cmd
}
