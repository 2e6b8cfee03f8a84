package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and cache statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	printSection("daris stats")
	s := eng.Stats()
	fmt.Printf("  Indexed passages:   %d\n", s.TotalTexts)
	fmt.Printf("  Index entries:      %d\n", s.IndexSize)
	fmt.Printf("  Cached embeddings:  %d\n", s.CacheSize)
	fmt.Printf("  Snapshot on disk:   %v (%s)\n", s.CacheExists, cfg.CacheDir)

	if status, loadErr := eng.LoadStatus(); loadErr != nil {
		printWarn(fmt.Sprintf("snapshot %s: %v", status, loadErr))
	}
	return nil
}
