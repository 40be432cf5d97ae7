// Command smartfind is the entry point for the SmartFind product research
// assistant. It provides a CLI (via Cobra) for catalog ingestion and product
// search, plus an optional HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/smartfind/smartfind-go/cmd/smartfind/commands"
)

func main() {
	// Load .env if present; real env vars are never overwritten.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
