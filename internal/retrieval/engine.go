package retrieval

import (
	"context"
	"fmt"
	"sort"

	"github.com/darisbot/daris-cli/internal/corpus"
	"github.com/darisbot/daris-cli/internal/embeddings"
	"github.com/darisbot/daris-cli/internal/retrieval/index"
)

// Over-fetch factor for vector search: post-filtering (min score, subject)
// discards candidates, so the index is asked for more than k.
const overFetch = 5

// fallbackMinScore is the similarity floor used by the keyword fallback path.
const fallbackMinScore = 0.3

// Engine owns the retrieval state: the vector index, the parallel
// text/metadata sequences, and the embedding cache. texts[i], metadata[i],
// and the index entry at position i always describe the same passage; all
// three are mutated only in lockstep, by appending.
//
// BuildIndex and AddPassages must not run concurrently with each other or
// with Search: one ingestion pass completes before queries are served.
// Search itself only reads index state (the embedding cache tolerates
// concurrent use).
type Engine struct {
	provider embeddings.Provider
	cache    *embeddings.Cache
	index    *index.Index
	texts    []string
	metadata []corpus.Metadata
	cacheDir string

	corpusHash string
	loadStatus index.Status
	loadErr    error
}

// New constructs an engine rooted at cacheDir and attempts a warm start from
// an existing snapshot. A missing or corrupt snapshot is not an error: the
// engine starts cold and LoadStatus reports what happened.
func New(cacheDir string, provider embeddings.Provider) *Engine {
	e := &Engine{
		provider: provider,
		cache:    embeddings.NewCache(provider),
		index:    index.New(),
		cacheDir: cacheDir,
	}

	snap, status, err := index.Load(cacheDir)
	e.loadStatus, e.loadErr = status, err
	if status == index.StatusLoaded {
		e.index = snap.Index
		e.texts = snap.Texts
		e.metadata = snap.Metadata
		e.cache = embeddings.NewCacheWithEntries(provider, snap.Embeddings)
		e.corpusHash = snap.Manifest.CorpusHash
	}
	return e
}

// LoadStatus reports how the warm-start attempt went; the error is non-nil
// only for corrupt snapshots and describes the cause.
func (e *Engine) LoadStatus() (index.Status, error) {
	return e.loadStatus, e.loadErr
}

// BuildIndex embeds all texts and rebuilds the index wholesale, then
// persists a snapshot. When a live index already covers an identical corpus
// (by content hash) the build is skipped.
func (e *Engine) BuildIndex(ctx context.Context, texts []string, metadata []corpus.Metadata) error {
	if len(texts) != len(metadata) {
		return fmt.Errorf("texts and metadata length mismatch: %d vs %d", len(texts), len(metadata))
	}
	if len(texts) == 0 {
		return fmt.Errorf("no texts to index")
	}

	hash := corpus.Hash(texts)
	if e.index.Size() > 0 && hash == e.corpusHash {
		return nil
	}

	vectors, err := e.embedAll(ctx, texts)
	if err != nil {
		return err
	}
	if err := e.index.Build(vectors); err != nil {
		return err
	}

	e.texts = append([]string(nil), texts...)
	e.metadata = append([]corpus.Metadata(nil), metadata...)
	e.corpusHash = hash
	return e.save()
}

// AddPassages appends new passages to an existing index without re-embedding
// prior entries, then persists the updated snapshot.
func (e *Engine) AddPassages(ctx context.Context, texts []string, metadata []corpus.Metadata) error {
	if len(texts) != len(metadata) {
		return fmt.Errorf("texts and metadata length mismatch: %d vs %d", len(texts), len(metadata))
	}
	if len(texts) == 0 {
		return nil
	}

	vectors, err := e.embedAll(ctx, texts)
	if err != nil {
		return err
	}
	if err := e.index.Add(vectors); err != nil {
		return err
	}

	e.texts = append(e.texts, texts...)
	e.metadata = append(e.metadata, metadata...)
	e.corpusHash = corpus.Hash(e.texts)
	return e.save()
}

func (e *Engine) embedAll(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i, t := range texts {
		emb, err := e.cache.GetOrCompute(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed passage %d: %w", i, err)
		}
		vectors = append(vectors, index.NormalizeL2(emb))
	}
	return vectors, nil
}

// Search embeds the query and returns up to k passages scoring at least
// minScore, ranked by quality then similarity. subjectFilter, when set,
// discards candidates from other subjects entirely rather than
// deprioritizing them. An absent or empty index yields empty results, not an
// error.
func (e *Engine) Search(ctx context.Context, query string, k int, minScore float64, subjectFilter string) ([]Result, error) {
	if e.index.Size() == 0 || len(e.texts) == 0 || k <= 0 {
		return nil, nil
	}

	emb, err := e.cache.GetOrCompute(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	qv := index.NormalizeL2(emb)

	topN := k * overFetch
	if topN > e.index.Size() {
		topN = e.index.Size()
	}
	hits, err := e.index.Search(qv, topN)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, h := range hits {
		score := float64(h.Score)
		if score < minScore {
			continue
		}
		md := e.metadata[h.Position]
		if subjectFilter != "" && md.Subject != subjectFilter {
			continue
		}
		text := e.texts[h.Position]
		results = append(results, Result{
			Text:      text,
			Metadata:  md,
			Score:     score,
			Relevance: relevanceLabel(score),
			Quality:   AssessQuality(text, query),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Quality.OverallScore != results[j].Quality.OverallScore {
			return results[i].Quality.OverallScore > results[j].Quality.OverallScore
		}
		return results[i].Score > results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// SearchWithKeywords is the fallback path for terse or out-of-distribution
// queries: when plain vector search under-delivers, up to three query
// keywords are searched individually and the merged results deduplicated by
// text content.
func (e *Engine) SearchWithKeywords(ctx context.Context, query string, k int, subjectFilter string) ([]Result, error) {
	results, err := e.Search(ctx, query, k, fallbackMinScore, subjectFilter)
	if err != nil {
		return nil, err
	}

	if len(results) < 2 {
		keywords := ExtractKeywords(query)
		if len(keywords) > 3 {
			keywords = keywords[:3]
		}
		for _, kw := range keywords {
			more, err := e.Search(ctx, kw, 3, fallbackMinScore, subjectFilter)
			if err != nil {
				return nil, err
			}
			results = append(results, more...)
		}
	}

	seen := make(map[string]struct{}, len(results))
	unique := make([]Result, 0, len(results))
	for _, r := range results {
		h := embeddings.TextHash(r.Text)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		unique = append(unique, r)
	}

	if len(unique) > k {
		unique = unique[:k]
	}
	return unique, nil
}

// Stats reports engine state counts.
func (e *Engine) Stats() Stats {
	return Stats{
		TotalTexts:  len(e.texts),
		IndexSize:   e.index.Size(),
		CacheSize:   e.cache.Len(),
		CacheExists: index.Exists(e.cacheDir),
	}
}

// ClearCache removes the on-disk snapshot. In-memory state is untouched; a
// fresh engine pointed at the same directory will cold-start.
func (e *Engine) ClearCache() error {
	return index.Remove(e.cacheDir)
}

func (e *Engine) save() error {
	snap := &index.Snapshot{
		Manifest: index.Manifest{
			IndexVersion: 1,
			ModelID:      e.provider.ModelID(),
			CorpusHash:   e.corpusHash,
		},
		Index:      e.index,
		Texts:      e.texts,
		Metadata:   e.metadata,
		Embeddings: e.cache.Entries(),
	}
	return index.Write(e.cacheDir, snap)
}
