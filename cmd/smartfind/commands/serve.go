package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/qdrant/go-client/qdrant"
	"github.com/spf13/cobra"

	"github.com/smartfind/smartfind-go/internal/logging"
	"github.com/smartfind/smartfind-go/internal/search"
	"github.com/smartfind/smartfind-go/internal/server"
	"github.com/smartfind/smartfind-go/internal/tracing"
)

// NewServeCmd constructs the `smartfind serve` command, which starts the
// HTTP API for product search.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SmartFind HTTP API",
		Long: `Start the SmartFind HTTP server on localhost.

The server exposes POST /api/search for running queries, GET /api/history
for past searches, liveness and readiness probes, and Prometheus metrics
on GET /metrics.

Examples:
  smartfind serve
  smartfind serve --port 9090
  MODEL_PROVIDER=azure smartfind serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			chat, chatModel, err := buildChatModel(ctx)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			emb, dims, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			pipeline, err := search.New(&search.Config{
				Chat:      chat,
				Embedder:  emb,
				OpenStore: storeOpener(dims),
				Reranker:  buildReranker(log),
				TopK:      getEnvInt("SEARCH_TOP_K", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create pipeline: %w", err)
			}

			history, closeHistory := openHistory(log)
			defer closeHistory()

			pingers := buildPingers(chatModel, log)

			srv, err := server.New(pipeline, history, &server.Config{
				Host:            host,
				Port:            port,
				Logger:          log,
				Pingers:         pingers,
				APIKey:          os.Getenv("SMARTFIND_API_KEY"),
				MetricsRegistry: prometheus.NewRegistry(),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}

// buildPingers assembles the readiness probes for GET /api/ready: the chat
// backend and Qdrant. A Qdrant client that cannot even be constructed is
// reported at startup and skipped — readiness then covers the LLM only.
func buildPingers(chatModel model.ToolCallingChatModel, log *slog.Logger) []server.Pinger {
	backend := getEnvOrDefault("MODEL_PROVIDER", "openai")
	pingers := []server.Pinger{server.NewLLMPinger(chatModel, backend)}
	if qp := qdrantPinger(log); qp != nil {
		pingers = append(pingers, qp)
	}
	return pingers
}

// qdrantPinger constructs the Qdrant readiness probe from the environment.
func qdrantPinger(log *slog.Logger) server.Pinger {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:   getEnvInt("QDRANT_PORT", 6334),
		APIKey: os.Getenv("QDRANT_API_KEY"),
		UseTLS: os.Getenv("QDRANT_TLS") == "true",
	})
	if err != nil {
		log.Warn("readiness: could not create Qdrant client, probe disabled", slog.Any("error", err))
		return nil
	}
	return server.NewQdrantPinger(client)
}
