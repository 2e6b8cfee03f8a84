package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/darisbot/daris-cli/internal/corpus"
)

// Status classifies the outcome of a snapshot load.
type Status int

const (
	// StatusAbsent means no snapshot (or an incomplete set of artifacts)
	// exists. Cold start.
	StatusAbsent Status = iota
	// StatusLoaded means all required artifacts were read and are mutually
	// consistent.
	StatusLoaded
	// StatusCorrupt means a required artifact existed but failed to parse or
	// the artifacts disagree. Callers treat this like Absent; the cause is
	// reported alongside for diagnostics.
	StatusCorrupt
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusCorrupt:
		return "corrupt"
	default:
		return "absent"
	}
}

// Load reads a snapshot from dir.
//
// The manifest, vectors, texts, and metadata artifacts are all required; if
// any is missing the snapshot is Absent. A parse failure or a consistency
// mismatch yields Corrupt with the cause, never a hard failure: a bad snapshot
// just means rebuilding from the content store. The embedding-cache artifact
// is optional; when missing or unreadable the cache starts empty.
func Load(dir string) (*Snapshot, Status, error) {
	required := []string{manifestFile, vectorsFile, textsFile, metadataFile}
	for _, name := range required {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			if os.IsNotExist(err) {
				return nil, StatusAbsent, nil
			}
			return nil, StatusCorrupt, fmt.Errorf("cannot stat %s: %w", name, err)
		}
	}

	var m Manifest
	mb, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, StatusCorrupt, fmt.Errorf("cannot read manifest: %w", err)
	}
	if err := json.Unmarshal(mb, &m); err != nil {
		return nil, StatusCorrupt, fmt.Errorf("invalid manifest JSON: %w", err)
	}
	if m.Dim <= 0 {
		return nil, StatusCorrupt, fmt.Errorf("invalid dim in manifest: %d", m.Dim)
	}

	texts, err := loadTexts(filepath.Join(dir, textsFile))
	if err != nil {
		return nil, StatusCorrupt, err
	}
	metadata, err := loadMetadata(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, StatusCorrupt, err
	}
	if len(texts) != m.Count || len(metadata) != m.Count {
		return nil, StatusCorrupt, fmt.Errorf("artifact count mismatch: manifest=%d texts=%d metadata=%d",
			m.Count, len(texts), len(metadata))
	}

	flat, err := loadVectors(filepath.Join(dir, vectorsFile), m.Count, m.Dim)
	if err != nil {
		return nil, StatusCorrupt, err
	}
	ix, err := fromFlat(m.Dim, flat)
	if err != nil {
		return nil, StatusCorrupt, err
	}

	embeddings := loadEmbeddingCache(filepath.Join(dir, cacheFile))

	snap := &Snapshot{
		Manifest:   m,
		Index:      ix,
		Texts:      texts,
		Metadata:   metadata,
		Embeddings: embeddings,
	}
	return snap, StatusLoaded, nil
}

// Exists reports whether a snapshot manifest is present in dir. It does not
// validate the snapshot.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, manifestFile))
	return err == nil
}

// Remove deletes all snapshot artifacts from dir. Missing artifacts are not
// an error.
func Remove(dir string) error {
	for _, name := range []string{manifestFile, vectorsFile, textsFile, metadataFile, cacheFile} {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cannot remove %s: %w", name, err)
		}
	}
	return nil
}

func loadTexts(path string) ([]string, error) {
	out := []string{}
	err := scanJSONLines(path, func(line []byte) error {
		var s string
		if err := json.Unmarshal(line, &s); err != nil {
			return fmt.Errorf("invalid texts JSONL: %w", err)
		}
		out = append(out, s)
		return nil
	})
	return out, err
}

func loadMetadata(path string) ([]corpus.Metadata, error) {
	out := []corpus.Metadata{}
	err := scanJSONLines(path, func(line []byte) error {
		var md corpus.Metadata
		if err := json.Unmarshal(line, &md); err != nil {
			return fmt.Errorf("invalid metadata JSONL: %w", err)
		}
		out = append(out, md)
		return nil
	})
	return out, err
}

func scanJSONLines(path string, each func([]byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := each(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return nil
}

func loadVectors(path string, count, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file: %w", err)
	}
	expected := int64(count) * int64(dim) * 4
	if st.Size() != expected {
		return nil, fmt.Errorf("vector file size mismatch: got %d want %d (count=%d dim=%d)",
			st.Size(), expected, count, dim)
	}

	out := make([]float32, count*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors: %w", err)
	}
	return out, nil
}

// loadEmbeddingCache best-effort reads the optional cache artifact. A missing
// or unparsable cache costs recomputation, not a failed load.
func loadEmbeddingCache(path string) map[string][]float32 {
	b, err := os.ReadFile(path)
	if err != nil {
		return map[string][]float32{}
	}
	var out map[string][]float32
	if err := json.Unmarshal(b, &out); err != nil || out == nil {
		return map[string][]float32{}
	}
	return out
}
