package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/darisbot/daris-cli/internal/retrieval"
	"github.com/spf13/cobra"
)

var (
	flagSearchK        int
	flagSearchMinScore float64
	flagSearchSubject  string
	flagSearchKeywords bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed passages by semantic similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchK, "k", 0, "Number of results to show (default from daris.yaml)")
	searchCmd.Flags().Float64Var(&flagSearchMinScore, "min-score", -1, "Minimum similarity score to include (default from daris.yaml)")
	searchCmd.Flags().StringVar(&flagSearchSubject, "subject", "", "Only return passages from this subject")
	searchCmd.Flags().BoolVar(&flagSearchKeywords, "keywords", false, "Use the keyword fallback when similarity search under-delivers")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	query := strings.Join(args, " ")

	k := cfg.Search.DefaultK
	if cmd.Flags().Changed("k") {
		k = flagSearchK
	}
	minScore := cfg.Search.DefaultMinScore
	if cmd.Flags().Changed("min-score") {
		minScore = flagSearchMinScore
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var results []retrieval.Result
	if flagSearchKeywords {
		results, err = eng.SearchWithKeywords(ctx, query, k, flagSearchSubject)
	} else {
		results, err = eng.Search(ctx, query, k, minScore, flagSearchSubject)
	}
	if err != nil {
		return err
	}

	printResults(query, flagSearchSubject, results)
	return nil
}

func printResults(query, subject string, results []retrieval.Result) {
	fmt.Printf("\ndaris search %q\n", query)
	if subject != "" {
		fmt.Printf("subject: %s\n", subject)
	}
	fmt.Printf("\nResults (%d found):\n", len(results))
	if len(results) == 0 {
		printInfo("no passages matched — try 'daris search --keywords' or a lower --min-score")
		return
	}

	for i, r := range results {
		fmt.Printf("\n%d. [%.3f / %s]  %s — %s (p. %d)\n",
			i+1, r.Score, r.Relevance, r.Metadata.Subject, r.Metadata.Chapter, r.Metadata.Page)
		fmt.Printf("   quality %.2f (keywords %.2f, length %.2f, diversity %.2f)\n",
			r.Quality.OverallScore, r.Quality.KeywordMatch, r.Quality.LengthScore, r.Quality.DiversityScore)
		fmt.Printf("   %s\n", snippet(r.Text, 200))
	}
}

// snippet truncates text to limit runes for terminal display.
func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
