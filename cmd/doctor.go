package cmd

import (
	"fmt"
	"os"

	"github.com/darisbot/daris-cli/internal/config"
	"github.com/darisbot/daris-cli/internal/embeddings"
	"github.com/darisbot/daris-cli/internal/retrieval/index"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that daris's configuration, embeddings credentials, and cache
directory are in a usable state. Run this when something seems wrong.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true

	printSection("daris doctor")

	// ── Config ────────────────────────────────────────────────────────────────
	fmt.Println("\n[ Config ]")
	cfg, err := config.Load()
	if err != nil {
		printErr(fmt.Sprintf("config: %v — run 'daris init'", err))
		return fmt.Errorf("environment is not ready")
	}
	printOK("daris.yaml loaded")

	if _, err := os.Stat(cfg.CorpusPath); err != nil {
		printWarn(fmt.Sprintf("corpus file not found: %s", cfg.CorpusPath))
	} else {
		printOK(fmt.Sprintf("corpus file present: %s", cfg.CorpusPath))
	}

	// ── Embeddings ────────────────────────────────────────────────────────────
	fmt.Println("\n[ Embeddings ]")
	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		printErr(fmt.Sprintf("embeddings config: %v", err))
		allOK = false
	} else if _, err := embeddings.NewFromConfig(embCfg); err != nil {
		printErr(err.Error())
		allOK = false
	} else {
		printOK(fmt.Sprintf("provider configured: %s (model %s)", embCfg.Provider, embCfg.Model))
		if embCfg.APIKey == "" {
			printWarn("DARIS_EMBEDDINGS_API_KEY is empty")
		}
	}

	// ── Cache snapshot ────────────────────────────────────────────────────────
	fmt.Println("\n[ Cache snapshot ]")
	snap, status, loadErr := index.Load(cfg.CacheDir)
	switch status {
	case index.StatusLoaded:
		printOK(fmt.Sprintf("snapshot loaded: %d passages, dim %d, model %s",
			snap.Manifest.Count, snap.Manifest.Dim, snap.Manifest.ModelID))
		if embCfg != nil && embCfg.Model != "" && snap.Manifest.ModelID != "openai:"+embCfg.Model {
			printWarn(fmt.Sprintf("snapshot was built with %s but %s is configured — run 'daris clear' then 'daris index'",
				snap.Manifest.ModelID, "openai:"+embCfg.Model))
		}
	case index.StatusAbsent:
		printSkip(fmt.Sprintf("no snapshot yet (%s) — run 'daris index'", cfg.CacheDir))
	case index.StatusCorrupt:
		printWarn(fmt.Sprintf("snapshot is corrupt and will be rebuilt on next index: %v", loadErr))
	}

	fmt.Println()
	if !allOK {
		return fmt.Errorf("environment is not ready — fix the issues above")
	}
	fmt.Println("  ✓  all checks passed")
	return nil
}
