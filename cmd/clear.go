package cmd

import (
	"fmt"

	"github.com/darisbot/daris-cli/internal/retrieval/index"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached index snapshot",
	Long: `Remove the on-disk index snapshot and embedding cache. The next
'daris index' run rebuilds from the corpus. Required after changing the
embedding model, since cached vectors are tied to it.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	// No engine here: clear must work even with broken embeddings config.
	if err := index.Remove(cfg.CacheDir); err != nil {
		return err
	}
	printOK(fmt.Sprintf("cache cleared: %s", cfg.CacheDir))
	return nil
}
