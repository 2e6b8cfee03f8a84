package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Search holds the default query parameters applied when the caller does not
// override them.
type Search struct {
	DefaultK        int     `yaml:"default_k"`
	DefaultMinScore float64 `yaml:"default_min_score"`
	MinQuality      float64 `yaml:"min_quality"`
}

// Config is the in-memory representation of ~/.daris/daris.yaml.
type Config struct {
	CorpusPath string `yaml:"corpus_path"`
	CacheDir   string `yaml:"cache_dir"`
	Search     Search `yaml:"search,omitempty"`
}

// DarisDir returns the absolute path to ~/.daris/.
func DarisDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".daris"), nil
}

// ConfigPath returns the absolute path to ~/.daris/daris.yaml.
func ConfigPath() (string, error) {
	dir, err := DarisDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "daris.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first daris init.
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		CorpusPath: filepath.Join(home, ".daris", "corpus.json"),
		CacheDir:   filepath.Join(home, ".daris", "rag_cache"),
		Search: Search{
			DefaultK:        5,
			DefaultMinScore: 0.4,
			MinQuality:      0.3,
		},
	}, nil
}

// Load reads and parses ~/.daris/daris.yaml.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	// Expand ~ in paths at load time.
	cfg.CorpusPath, err = ExpandPath(cfg.CorpusPath)
	if err != nil {
		return nil, err
	}
	cfg.CacheDir, err = ExpandPath(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save marshals cfg and writes it to ~/.daris/daris.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Search.DefaultK <= 0 {
		cfg.Search.DefaultK = 5
	}
	if cfg.Search.DefaultMinScore <= 0 {
		cfg.Search.DefaultMinScore = 0.4
	}
	if cfg.Search.MinQuality <= 0 {
		cfg.Search.MinQuality = 0.3
	}
}
