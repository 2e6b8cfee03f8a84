package index

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot artifact file names, co-located under the cache directory.
const (
	manifestFile = "manifest.json"
	vectorsFile  = "vectors.f32"
	textsFile    = "texts.jsonl"
	metadataFile = "metadata.jsonl"
	cacheFile    = "embeddings_cache.json"
)

// Write persists a snapshot to dir. Each artifact is written to a temp file
// and renamed into place to keep the corruption window small; a file lock
// serializes concurrent writers.
func Write(dir string, snap *Snapshot) error {
	if snap == nil || snap.Index == nil {
		return fmt.Errorf("nothing to write: snapshot has no index")
	}
	if snap.Index.Size() != len(snap.Texts) || len(snap.Texts) != len(snap.Metadata) {
		return fmt.Errorf("snapshot inconsistency: index=%d texts=%d metadata=%d",
			snap.Index.Size(), len(snap.Texts), len(snap.Metadata))
	}

	m := snap.Manifest
	if m.IndexVersion == 0 {
		m.IndexVersion = 1
	}
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	m.Dim = snap.Index.Dim()
	m.Count = snap.Index.Size()
	m.VectorFile = vectorsFile
	m.TextsFile = textsFile
	m.MetadataFile = metadataFile
	m.CacheFile = cacheFile

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache dir %s: %w", dir, err)
	}

	unlock, err := acquireSnapshotLock(dir, 5*time.Second)
	if err != nil {
		return err
	}
	defer unlock()

	if err := writeJSONLines(filepath.Join(dir, textsFile), len(snap.Texts), func(i int) (any, error) {
		return snap.Texts[i], nil
	}); err != nil {
		return fmt.Errorf("cannot write texts: %w", err)
	}

	if err := writeJSONLines(filepath.Join(dir, metadataFile), len(snap.Metadata), func(i int) (any, error) {
		return snap.Metadata[i], nil
	}); err != nil {
		return fmt.Errorf("cannot write metadata: %w", err)
	}

	if err := writeAtomic(filepath.Join(dir, vectorsFile), func(f *os.File) error {
		return binary.Write(f, binary.LittleEndian, snap.Index.vectors)
	}); err != nil {
		return fmt.Errorf("cannot write vectors: %w", err)
	}

	cb, err := json.Marshal(snap.Embeddings)
	if err != nil {
		return fmt.Errorf("cannot marshal embedding cache: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, cacheFile), func(f *os.File) error {
		_, werr := f.Write(cb)
		return werr
	}); err != nil {
		return fmt.Errorf("cannot write embedding cache: %w", err)
	}

	// Manifest last: a readable manifest implies the other artifacts were
	// fully written.
	mb, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, manifestFile), func(f *os.File) error {
		_, werr := f.Write(mb)
		return werr
	}); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	return nil
}

// writeAtomic writes a file via a temp sibling and rename.
func writeAtomic(path string, fill func(*os.File) error) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := fill(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// writeJSONLines writes n records as one JSON document per line.
func writeJSONLines(path string, n int, record func(int) (any, error)) error {
	return writeAtomic(path, func(f *os.File) error {
		bw := bufio.NewWriter(f)
		for i := 0; i < n; i++ {
			rec, err := record(i)
			if err != nil {
				return err
			}
			line, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if _, err := bw.Write(line); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		return bw.Flush()
	})
}
