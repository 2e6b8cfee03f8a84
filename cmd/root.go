package cmd

import (
	"fmt"
	"os"

	"github.com/darisbot/daris-cli/internal/config"
	"github.com/darisbot/daris-cli/internal/embeddings"
	"github.com/darisbot/daris-cli/internal/retrieval"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "daris",
	Short:        "daris — semantic search over textbook passages",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `daris indexes textbook passages with embeddings and answers
similarity queries, with quality scoring and a keyword fallback for terse
queries. Index state is cached under the configured cache directory for
instant warm starts.`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newEngine wires config → embeddings provider → retrieval engine. Every
// command that touches the index goes through here.
func newEngine(cfg *config.Config) (*retrieval.Engine, error) {
	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		return nil, err
	}
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return nil, err
	}
	return retrieval.New(cfg.CacheDir, prov), nil
}

// loadConfig loads daris.yaml with a hint to run init when it is missing.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'daris init' first.", err)
	}
	return cfg, nil
}
