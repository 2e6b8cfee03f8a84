package index

import "github.com/darisbot/daris-cli/internal/corpus"

// Manifest describes a persisted snapshot and how to interpret it.
type Manifest struct {
	IndexVersion int    `json:"index_version"`
	CreatedAt    string `json:"created_at"`
	ModelID      string `json:"model_id"`
	Dim          int    `json:"dim"`
	Count        int    `json:"count"`
	CorpusHash   string `json:"corpus_hash"`
	VectorFile   string `json:"vector_file"`
	TextsFile    string `json:"texts_file"`
	MetadataFile string `json:"metadata_file"`
	CacheFile    string `json:"cache_file"`
}

// Snapshot is the full persisted state of a retrieval engine: the index, the
// parallel text/metadata sequences, and the embedding cache contents.
type Snapshot struct {
	Manifest   Manifest
	Index      *Index
	Texts      []string
	Metadata   []corpus.Metadata
	Embeddings map[string][]float32
}
