package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/smartfind/smartfind-go/internal/ingestion"
	"github.com/smartfind/smartfind-go/internal/logging"
)

// NewExtractCmd constructs the `smartfind extract` command, which turns the
// raw catalog CSV into the cleaned RAG document CSV consumed by ingest.
func NewExtractCmd() *cobra.Command {
	var input string
	var output string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract cleaned RAG documents from a raw catalog CSV",
		Long: `Read a raw product catalog CSV, drop rows missing retrieval-relevant
fields, and write one cleaned markdown document per surviving product.

The output CSV (uniq_id, product_name, price, rating, customer_reviews,
rag_document) is the input to 'smartfind ingest'. Price and rating values
that cannot be parsed are recorded as absent rather than failing the run.

Examples:
  smartfind extract --input products.csv --output documents.csv
  smartfind extract -i data/amazon_co-ecommerce_sample.csv -o data/documents.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			written, err := ingestion.ExtractFeatures(ctx, input, output)
			if err != nil {
				return fmt.Errorf("extract: %w", err)
			}

			log.Info("extract complete",
				slog.String("output", output),
				slog.Int("documents", written),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "products.csv", "Raw catalog CSV path")
	cmd.Flags().StringVarP(&output, "output", "o", "documents.csv", "Cleaned document CSV path")

	return cmd
}
