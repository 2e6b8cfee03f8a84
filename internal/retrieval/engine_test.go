package retrieval

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/darisbot/daris-cli/internal/corpus"
	"github.com/darisbot/daris-cli/internal/retrieval/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProvider returns pre-assigned vectors per (normalized) text and
// counts invocations. Unknown texts are an error so tests notice unexpected
// embedding calls.
type scriptedProvider struct {
	vectors map[string][]float32
	calls   int
}

func (p *scriptedProvider) ModelID() string { return "fake:scripted" }
func (p *scriptedProvider) Dim() int        { return 3 }

func (p *scriptedProvider) Embed(_ context.Context, text string) ([]float32, error) {
	p.calls++
	v, ok := p.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no scripted vector for %q", text)
	}
	return v, nil
}

var (
	textMath    = "الرياضيات هي دراسة الأعداد والأشكال والبنى المجردة وتعد أساس العلوم الحديثة"
	textPhysics = "الفيزياء تدرس المادة والطاقة والحركة وتفسر الظواهر الطبيعية من حولنا"
	textHistory = "التاريخ الإسلامي يمتد عبر قرون من الحضارة والعلم والعمران في مناطق واسعة"
)

func testCorpus() ([]string, []corpus.Metadata, map[string][]float32) {
	texts := []string{textMath, textPhysics, textHistory}
	metadata := []corpus.Metadata{
		{Subject: "رياضيات", Chapter: "الفصل الأول", Page: 10},
		{Subject: "علوم", Chapter: "الفصل الثالث", Page: 42},
		{Subject: "تاريخ", Chapter: "الفصل الثاني", Page: 77},
	}
	vectors := map[string][]float32{
		textMath:    {1, 0, 0},
		textPhysics: {0.6, 0.8, 0},
		textHistory: {0, 0, 1},
	}
	return texts, metadata, vectors
}

func newTestEngine(t *testing.T, dir string, extra map[string][]float32) (*Engine, *scriptedProvider) {
	t.Helper()
	_, _, vectors := testCorpus()
	prov := &scriptedProvider{vectors: map[string][]float32{}}
	for k, v := range vectors {
		prov.vectors[k] = v
	}
	for k, v := range extra {
		prov.vectors[k] = v
	}
	return New(dir, prov), prov
}

func buildTestIndex(t *testing.T, e *Engine) {
	t.Helper()
	texts, metadata, _ := testCorpus()
	require.NoError(t, e.BuildIndex(context.Background(), texts, metadata))
}

func TestBuildIndex_ColdStart(t *testing.T) {
	dir := t.TempDir()
	e, prov := newTestEngine(t, dir, map[string][]float32{
		"ما هي الرياضيات": {0.9, 0.1, 0},
	})
	buildTestIndex(t, e)

	s := e.Stats()
	assert.Equal(t, 3, s.TotalTexts)
	assert.Equal(t, 3, s.IndexSize)
	assert.Equal(t, 3, s.CacheSize)
	assert.True(t, s.CacheExists)
	assert.Equal(t, 3, prov.calls)

	results, err := e.Search(context.Background(), "ما هي الرياضيات", 2, 0.0, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.0)
	}
}

func TestBuildIndex_ParallelArraysStayInLockstep(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), nil)
	buildTestIndex(t, e)

	s := e.Stats()
	assert.Equal(t, s.TotalTexts, s.IndexSize)

	// Mismatched inputs are rejected before any state changes.
	err := e.BuildIndex(context.Background(), []string{"نص"}, nil)
	assert.Error(t, err)
	assert.Equal(t, 3, e.Stats().TotalTexts)
}

func TestBuildIndex_SkipsWhenCorpusUnchanged(t *testing.T) {
	e, prov := newTestEngine(t, t.TempDir(), nil)
	buildTestIndex(t, e)
	callsAfterBuild := prov.calls

	buildTestIndex(t, e)
	assert.Equal(t, callsAfterBuild, prov.calls, "identical corpus must not re-embed")
}

func TestBuildIndex_RebuildsWhenContentChangesWithSameCount(t *testing.T) {
	dir := t.TempDir()
	e, prov := newTestEngine(t, dir, map[string][]float32{
		"نص بديل عن الفيزياء بمحتوى مختلف تماما": {0, 1, 0},
	})
	buildTestIndex(t, e)

	texts, metadata, _ := testCorpus()
	texts[1] = "نص بديل عن الفيزياء بمحتوى مختلف تماما"
	callsBefore := prov.calls
	require.NoError(t, e.BuildIndex(context.Background(), texts, metadata))
	assert.Greater(t, prov.calls, callsBefore, "changed content with equal count must rebuild")
	assert.Equal(t, texts[1], findResultText(t, e, "نص بديل عن الفيزياء بمحتوى مختلف تماما"))
}

func findResultText(t *testing.T, e *Engine, query string) string {
	t.Helper()
	results, err := e.Search(context.Background(), query, 1, 0.0, "")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	return results[0].Text
}

func TestSearch_EmptyIndexYieldsEmptyResults(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), nil)
	results, err := e.Search(context.Background(), "أي سؤال", 5, 0.0, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_UnitNormInvariant(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), nil)
	buildTestIndex(t, e)

	for i := 0; i < e.index.Size(); i++ {
		v := e.index.Vector(i)
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "vector %d", i)
	}
}

func TestSearch_SubjectFilterIsExclusive(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		"سؤال عام": {0.5, 0.5, 0.5},
	})
	buildTestIndex(t, e)

	results, err := e.Search(context.Background(), "سؤال عام", 5, 0.0, "تاريخ")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.Equal(t, "تاريخ", r.Metadata.Subject)
	}
}

func TestSearch_SubjectFilterCanExcludeEverything(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		"سؤال عام": {0.5, 0.5, 0.5},
	})
	buildTestIndex(t, e)

	results, err := e.Search(context.Background(), "سؤال عام", 5, 0.0, "كيمياء")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TopKBound(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		"سؤال عام": {0.5, 0.5, 0.5},
	})
	buildTestIndex(t, e)

	for _, k := range []int{1, 2, 3, 10} {
		results, err := e.Search(context.Background(), "سؤال عام", k, 0.0, "")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), k)
	}
}

func TestSearch_MinScoreFilters(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		"ما هي الرياضيات": {1, 0, 0},
	})
	buildTestIndex(t, e)

	results, err := e.Search(context.Background(), "ما هي الرياضيات", 5, 0.9, "")
	require.NoError(t, err)
	require.Len(t, results, 1, "only the exact-direction passage clears 0.9")
	assert.Equal(t, textMath, results[0].Text)
	assert.Equal(t, RelevanceVeryHigh, results[0].Relevance)
}

func TestSearch_SortsByQualityThenScore(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		"الرياضيات والتاريخ": {0.5, 0, 0.5},
	})
	buildTestIndex(t, e)

	results, err := e.Search(context.Background(), "الرياضيات والتاريخ", 3, 0.0, "")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)
	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if prev.Quality.OverallScore == cur.Quality.OverallScore {
			assert.GreaterOrEqual(t, prev.Score, cur.Score)
		} else {
			assert.Greater(t, prev.Quality.OverallScore, cur.Quality.OverallScore)
		}
	}
}

func TestWarmStart_NoReEmbedding(t *testing.T) {
	dir := t.TempDir()
	e1, _ := newTestEngine(t, dir, nil)
	buildTestIndex(t, e1)
	statsBefore := e1.Stats()

	// Fresh engine, fresh provider: everything must come from the snapshot.
	e2, prov2 := newTestEngine(t, dir, nil)
	status, err := e2.LoadStatus()
	require.NoError(t, err)
	assert.Equal(t, index.StatusLoaded, status)

	statsAfter := e2.Stats()
	assert.Equal(t, statsBefore.TotalTexts, statsAfter.TotalTexts)
	assert.Equal(t, statsBefore.IndexSize, statsAfter.IndexSize)
	assert.Equal(t, statsBefore.CacheSize, statsAfter.CacheSize)
	assert.Equal(t, 0, prov2.calls)

	// A rebuild over the same corpus is a no-op after warm start.
	buildTestIndex(t, e2)
	assert.Equal(t, 0, prov2.calls)

	// Searching with an already-cached text hits the cache, not the provider.
	results, err := e2.Search(context.Background(), textMath, 1, 0.0, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, prov2.calls)
}

func TestWarmStart_CorruptSnapshotFallsBackToCold(t *testing.T) {
	dir := t.TempDir()
	e1, _ := newTestEngine(t, dir, nil)
	buildTestIndex(t, e1)

	// Truncate the vectors artifact.
	corruptVectors(t, dir)

	e2, prov2 := newTestEngine(t, dir, nil)
	status, loadErr := e2.LoadStatus()
	assert.Equal(t, index.StatusCorrupt, status)
	assert.Error(t, loadErr)
	assert.Equal(t, 0, e2.Stats().IndexSize)

	// Rebuild works and re-embeds everything.
	buildTestIndex(t, e2)
	assert.Equal(t, 3, prov2.calls)
	assert.Equal(t, 3, e2.Stats().IndexSize)
}

func TestAddPassages_ExtendsInLockstep(t *testing.T) {
	newText := "الكيمياء تدرس تركيب المواد وتفاعلاتها وتحولات الطاقة المصاحبة لها"
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		newText: {0, 1, 1},
	})
	buildTestIndex(t, e)

	require.NoError(t, e.AddPassages(context.Background(),
		[]string{newText},
		[]corpus.Metadata{{Subject: "كيمياء", Chapter: "الفصل الأول", Page: 5}}))

	s := e.Stats()
	assert.Equal(t, 4, s.TotalTexts)
	assert.Equal(t, 4, s.IndexSize)

	results, err := e.Search(context.Background(), newText, 1, 0.0, "كيمياء")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, newText, results[0].Text)
}

func TestAddPassages_RequiresBuiltIndex(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), nil)
	err := e.AddPassages(context.Background(),
		[]string{textMath},
		[]corpus.Metadata{{Subject: "رياضيات"}})
	assert.ErrorIs(t, err, index.ErrNotBuilt)
}

func TestSearchWithKeywords_FallbackSurfacesLexicalMatch(t *testing.T) {
	// The query embedding is orthogonal to every passage, so plain search
	// finds nothing above the floor; the keyword "الرياضيات" still leads to
	// the math passage.
	query := "عرف الرياضيات باختصار"
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		query:       {0, 0, 0}, // zero vector: similarity 0 to everything
		"الرياضيات": {1, 0, 0},
		"باختصار":   {0, 0, 0},
	})
	buildTestIndex(t, e)

	plain, err := e.Search(context.Background(), query, 5, fallbackMinScore, "")
	require.NoError(t, err)
	assert.Empty(t, plain)

	results, err := e.SearchWithKeywords(context.Background(), query, 5, "")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, textMath, results[0].Text)
}

func TestSearchWithKeywords_Deduplicates(t *testing.T) {
	e, _ := newTestEngine(t, t.TempDir(), map[string][]float32{
		"عرف الرياضيات": {1, 0, 0},
		"الرياضيات":     {1, 0, 0},
	})
	buildTestIndex(t, e)

	// With the subject filter on, the base search finds only the math
	// passage, which triggers the fallback; the keyword search finds the
	// same passage again. The merged output must not contain it twice.
	results, err := e.SearchWithKeywords(context.Background(), "عرف الرياضيات", 5, "رياضيات")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	seen := map[string]int{}
	for _, r := range results {
		seen[r.Text]++
	}
	for text, n := range seen {
		assert.Equal(t, 1, n, "duplicate result for %q", text)
	}
	assert.Len(t, results, 1)
}

// corruptVectors truncates the vectors artifact in the snapshot directory.
func corruptVectors(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vectors.f32"), []byte{1, 2, 3, 4}, 0o644))
}

func TestClearCache_RemovesSnapshot(t *testing.T) {
	dir := t.TempDir()
	e, _ := newTestEngine(t, dir, nil)
	buildTestIndex(t, e)
	require.True(t, e.Stats().CacheExists)

	require.NoError(t, e.ClearCache())
	assert.False(t, e.Stats().CacheExists)

	e2, _ := newTestEngine(t, dir, nil)
	status, err := e2.LoadStatus()
	require.NoError(t, err)
	assert.Equal(t, index.StatusAbsent, status)
}
