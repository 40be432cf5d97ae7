// Package commands defines all Cobra CLI commands for the smartfind binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartfind/smartfind-go/internal/audit"
	"github.com/smartfind/smartfind-go/internal/config"
	"github.com/smartfind/smartfind-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "smartfind",
		Short: "SmartFind — AI-powered product research over your catalog",
		Long: `SmartFind is a retrieval-augmented product research assistant.

It ingests a product catalog CSV into a Qdrant vector store, tags every
product with an LLM, and answers natural language shopping queries with a
comparative research report built from vector retrieval, optional
cross-encoder reranking, and LLM synthesis.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.smartfind/config.yaml).
See 'smartfind --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.smartfind/config.yaml)")

	root.AddCommand(
		NewExtractCmd(),
		NewIngestCmd(),
		NewSearchCmd(),
		NewServeCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
