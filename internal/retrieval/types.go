package retrieval

import "github.com/darisbot/daris-cli/internal/corpus"

// Relevance labels attached to results based on similarity score.
const (
	RelevanceVeryHigh = "very high"
	RelevanceHigh     = "high"
	RelevanceMedium   = "medium"
	RelevanceLow      = "low"
)

// Quality is the multi-factor quality assessment of one candidate against a
// query. All fields are in [0, 1].
type Quality struct {
	KeywordMatch   float64 `json:"keyword_match"`
	LengthScore    float64 `json:"length_score"`
	DiversityScore float64 `json:"diversity_score"`
	OverallScore   float64 `json:"overall_score"`
}

// Result is one ranked search hit. Ephemeral, produced per query.
type Result struct {
	Text      string
	Metadata  corpus.Metadata
	Score     float64
	Relevance string
	Quality   Quality
}

// Stats summarizes engine state for observability.
type Stats struct {
	TotalTexts  int
	IndexSize   int
	CacheSize   int
	CacheExists bool
}

func relevanceLabel(score float64) string {
	switch {
	case score >= 0.7:
		return RelevanceVeryHigh
	case score >= 0.5:
		return RelevanceHigh
	case score >= 0.35:
		return RelevanceMedium
	default:
		return RelevanceLow
	}
}
