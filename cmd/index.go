package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/darisbot/daris-cli/internal/corpus"
	"github.com/spf13/cobra"
)

var (
	flagIndexCorpus string
	flagIndexForce  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the passage index from the corpus",
	Long: `Load the corpus file, embed every passage, and build the similarity
index. When the cached index already covers an identical corpus the build is
skipped; --force wipes the cache first.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&flagIndexCorpus, "corpus", "", "Corpus file to index (default: corpus_path from daris.yaml)")
	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "Rebuild even if the corpus is unchanged")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	corpusPath := cfg.CorpusPath
	if flagIndexCorpus != "" {
		corpusPath = flagIndexCorpus
	}

	passages, err := corpus.Load(corpusPath)
	if err != nil {
		return err
	}
	if len(passages) == 0 {
		return fmt.Errorf("corpus %s contains no usable passages", corpusPath)
	}
	printInfo(fmt.Sprintf("loaded %d passages from %s", len(passages), corpusPath))

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if flagIndexForce {
		if err := eng.ClearCache(); err != nil {
			return err
		}
		eng, err = newEngine(cfg)
		if err != nil {
			return err
		}
		printInfo("cache wiped, rebuilding from scratch")
	}

	texts, metadata := corpus.Split(passages)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	before := eng.Stats()
	if err := eng.BuildIndex(ctx, texts, metadata); err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	after := eng.Stats()

	if before.IndexSize == after.IndexSize && before.IndexSize > 0 && !flagIndexForce {
		printSkip("index already covers this corpus, nothing to do")
	} else {
		printOK(fmt.Sprintf("index built: %d passages, %d cached embeddings", after.IndexSize, after.CacheSize))
	}
	return nil
}
