package cmd

import (
	"fmt"
	"os"

	"github.com/darisbot/daris-cli/internal/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the daris config directory and default settings",
	Long: `Initialize ~/.daris/ with a default daris.yaml and a .env template
for the embeddings credentials. Existing files are left untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	darisDir, err := config.DarisDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(darisDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", darisDir, err)
	}
	printOK(fmt.Sprintf("daris directory ready: %s", darisDir))

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK(fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip(fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	dotenvPath, err := config.DotEnvPath()
	if err != nil {
		return err
	}
	printOK(fmt.Sprintf("Dotenv template ready: %s", dotenvPath))

	fmt.Println("\n✓  daris init complete. Fill in the embeddings keys, then run 'daris index'.")
	return nil
}
